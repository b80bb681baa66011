package dreams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	pkgdb "github.com/ecosdacama/dreams/pkg/db"
)

const (
	selectColumns = `id, COALESCE(titulo, ''), COALESCE(sonho, ''), COALESCE(data, ''), COALESCE(hora, ''), COALESCE(significado, '')`

	insertDreamStatement = `
	INSERT INTO sonhos (titulo, sonho, data, hora, significado)
	VALUES (?, ?, ?, ?, ?)
	`

	getDreamStatement = `
	SELECT ` + selectColumns + `
	FROM sonhos
	WHERE id = ?
	`

	listDreamsStatement = `
	SELECT ` + selectColumns + `
	FROM sonhos
	ORDER BY id ASC
	`

	updateDreamStatement = `
	UPDATE sonhos
	SET titulo = ?, sonho = ?, data = ?, hora = ?, significado = ?
	WHERE id = ?
	`

	deleteDreamStatement = `
	DELETE FROM sonhos
	WHERE id = ?
	`
)

// Options configures Open.
type Options struct {
	WAL  bool
	Sync string
	// SchemaVersion is the version to migrate to; zero means db.TargetSchemaVersion.
	SchemaVersion int64
	Logger        *slog.Logger
}

// Store owns the dream table of one SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens (creating if absent) the database at path and migrates it.
// Opening the same path again reuses the same file.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	target := opts.SchemaVersion
	if target == 0 {
		target = pkgdb.TargetSchemaVersion
	}

	conn, err := pkgdb.OpenDBConnection(ctx, path, pkgdb.Options{WAL: opts.WAL, Sync: opts.Sync})
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	report, err := pkgdb.Migrate(ctx, conn, target, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", path, err)
	}
	for _, failed := range report.Failed() {
		logger.Warn("schema step left unapplied", "path", path, "version", failed.Version, "error", failed.Err)
	}

	return &Store{db: conn, logger: logger, path: path}, nil
}

// New wraps an already migrated connection.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the location the store was opened from, empty for New.
func (s *Store) Path() string {
	return s.path
}

// Close flushes the WAL back into the main file and releases the connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		s.logger.Warn("WAL checkpoint failed during close", "error", err)
	}
	return s.db.Close()
}

func (s *Store) fail(op string, err error, attrs ...any) error {
	s.logger.Error("dream store operation failed", append([]any{"op", op, "error", err}, attrs...)...)
	return &StorageError{Op: op, Err: err}
}

// Insert appends d (its ID is ignored) and returns the assigned id.
func (s *Store) Insert(ctx context.Context, d Dream) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertDreamStatement, d.Title, d.Description, d.Date, d.Time, d.Interpretation)
	if err != nil {
		return 0, s.fail("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.fail("insert", err)
	}
	return id, nil
}

// Get returns the dream with the given id or ErrDreamNotFound.
func (s *Store) Get(ctx context.Context, id int64) (Dream, error) {
	d, err := scanDream(s.db.QueryRowContext(ctx, getDreamStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dream{}, ErrDreamNotFound
		}
		return Dream{}, s.fail("get", err, "id", id)
	}
	return d, nil
}

// List returns every dream ordered by id.
func (s *Store) List(ctx context.Context) ([]Dream, error) {
	return s.query(ctx, "list", listDreamsStatement)
}

// Update overwrites every field of the dream with d.ID and returns the number of rows
// affected. An unknown id affects zero rows and is not an error.
func (s *Store) Update(ctx context.Context, d Dream) (int64, error) {
	res, err := s.db.ExecContext(ctx, updateDreamStatement, d.Title, d.Description, d.Date, d.Time, d.Interpretation, d.ID)
	if err != nil {
		return 0, s.fail("update", err, "id", d.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("update", err, "id", d.ID)
	}
	return n, nil
}

// Delete removes the dream with the given id, returning the number of rows removed.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteDreamStatement, id)
	if err != nil {
		return 0, s.fail("delete", err, "id", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.fail("delete", err, "id", id)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDream(row rowScanner) (Dream, error) {
	var d Dream
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Date, &d.Time, &d.Interpretation)
	return d, err
}

// query runs a SELECT of selectColumns. On failure the result is an empty slice and a StorageError.
func (s *Store) query(ctx context.Context, op, statement string, args ...any) ([]Dream, error) {
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return []Dream{}, s.fail(op, err)
	}
	defer rows.Close()

	dreams := []Dream{}
	for rows.Next() {
		d, err := scanDream(rows)
		if err != nil {
			return []Dream{}, s.fail(op, err)
		}
		dreams = append(dreams, d)
	}

	if err = rows.Err(); err != nil {
		return []Dream{}, s.fail(op, err)
	}

	return dreams, nil
}
