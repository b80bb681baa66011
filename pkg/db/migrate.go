package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

// TargetSchemaVersion is the highest schema version this version of the code supports.
const TargetSchemaVersion int64 = 3

// SchemaMigrationError reports a migration step that could not be applied.
// The runner logs it and carries on with the remaining steps.
type SchemaMigrationError struct {
	Version int64
	Step    string
	Err     error
}

func (e *SchemaMigrationError) Error() string {
	return fmt.Sprintf("schema migration v%d (%s): %v", e.Version, e.Step, e.Err)
}

func (e *SchemaMigrationError) Unwrap() error { return e.Err }

// Step is one versioned schema change.
type Step struct {
	Version     int64
	Description string
	// Column is set for column additions; the step is skipped when the column already exists.
	Column string
	SQL    string
	// Required steps abort the migration on failure. All others are best effort.
	Required bool
}

// Steps is the ordered migration history of the dream table.
var Steps = []Step{
	{Version: 1, Description: "create sonhos table", SQL: schemaV1, Required: true},
	{Version: 2, Description: "add title column", Column: ColumnTitle, SQL: addTitleColumnV2},
	{Version: 3, Description: "add interpretation column", Column: ColumnInterpretation, SQL: addInterpretationColumnV3},
}

// StepOutcome describes what happened to a single step during a run.
type StepOutcome struct {
	Version int64
	Status  string // "applied", "skipped" or "failed"
	Err     error
}

// Report lists the outcome of every step executed by Migrate, in version order.
type Report struct {
	From     int64
	To       int64
	Outcomes []StepOutcome
}

// Failed returns the steps that could not be applied.
func (r *Report) Failed() []StepOutcome {
	var failed []StepOutcome
	for _, o := range r.Outcomes {
		if o.Status == "failed" {
			failed = append(failed, o)
		}
	}
	return failed
}

// Migrator runs Steps against a database through a goose provider.
type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
	steps  []Step
}

// NewMigrator returns a runner for the default Steps. A nil logger falls back to slog.Default().
func NewMigrator(db *sql.DB, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, logger: logger, steps: Steps}
}

// CurrentVersion returns the recorded schema version, 0 for a database that was never migrated.
func (m *Migrator) CurrentVersion(ctx context.Context) (int64, error) {
	p, err := m.provider(nil)
	if err != nil {
		return 0, err
	}
	v, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Migrate brings the schema up to target. Versions only move forward: a database
// already ahead of target is rejected, one at target is left untouched.
func (m *Migrator) Migrate(ctx context.Context, target int64) (*Report, error) {
	if target < 1 || target > TargetSchemaVersion {
		return nil, fmt.Errorf("unsupported target schema version %d (supported: 1..%d)", target, TargetSchemaVersion)
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{From: current, To: current}
	if current > target {
		return report, fmt.Errorf("database has schema version %d, which is newer than the target schema version %d. Please upgrade the application", current, target)
	}
	if current == target {
		m.logger.Debug("schema up to date", "version", current)
		return report, nil
	}

	m.logger.Info("migrating schema", "from", current, "to", target)

	p, err := m.provider(report)
	if err != nil {
		return report, err
	}
	if _, err := p.UpTo(ctx, target); err != nil {
		return report, fmt.Errorf("failed to migrate schema from %d to %d: %w", current, target, err)
	}
	report.To = target

	// Older releases tracked the version in user_version; keep it in step.
	if _, err := m.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", target)); err != nil {
		m.logger.Warn("failed to record user_version", "version", target, "error", err)
	}
	return report, nil
}

func (m *Migrator) provider(report *Report) (*goose.Provider, error) {
	migrations := make([]*goose.Migration, 0, len(m.steps))
	for _, step := range m.steps {
		step := step
		// Steps run on the provider's own connection: RunDB would need a second
		// connection, which never comes for a single-connection in-memory database.
		// A failed ALTER does not abort an SQLite transaction.
		up := &goose.GoFunc{
			Mode: goose.TransactionEnabled,
			RunTx: func(ctx context.Context, tx *sql.Tx) error {
				outcome := m.apply(ctx, tx, step)
				if report != nil {
					report.Outcomes = append(report.Outcomes, outcome)
				}
				if outcome.Status == "failed" && step.Required {
					return outcome.Err
				}
				return nil
			},
		}
		migrations = append(migrations, goose.NewGoMigration(step.Version, up, nil))
	}

	p, err := goose.NewProvider(goose.DialectSQLite3, m.db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(migrations...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build migration provider: %w", err)
	}
	return p, nil
}

// execQueryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (m *Migrator) apply(ctx context.Context, db execQueryer, step Step) StepOutcome {
	outcome := StepOutcome{Version: step.Version}

	if step.Column != "" {
		exists, err := HasColumn(ctx, db, TableDreams, step.Column)
		if err == nil && exists {
			m.logger.Info("migration step already applied", "version", step.Version, "column", step.Column)
			outcome.Status = "skipped"
			return outcome
		}
	}

	if _, err := db.ExecContext(ctx, step.SQL); err != nil {
		if IsAlreadyExistsError(err) {
			m.logger.Info("migration step already applied", "version", step.Version, "error", err)
			outcome.Status = "skipped"
			return outcome
		}
		outcome.Status = "failed"
		outcome.Err = &SchemaMigrationError{Version: step.Version, Step: step.Description, Err: err}
		m.logger.Error("migration step failed", "version", step.Version, "step", step.Description, "error", err)
		return outcome
	}

	m.logger.Info("migration step applied", "version", step.Version, "step", step.Description)
	outcome.Status = "applied"
	return outcome
}

// Migrate is a shorthand for NewMigrator(db, logger).Migrate(ctx, target).
func Migrate(ctx context.Context, db *sql.DB, target int64, logger *slog.Logger) (*Report, error) {
	return NewMigrator(db, logger).Migrate(ctx, target)
}

// HasColumn reports whether table has a column with the given name.
func HasColumn(ctx context.Context, db execQueryer, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// IsAlreadyExistsError reports whether err means the DDL had been applied before.
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	var migErr *SchemaMigrationError
	if errors.As(err, &migErr) {
		err = migErr.Err
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}
