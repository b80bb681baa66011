package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecosdacama/dreams/pkg/dreams"
)

const (
	// BackupFormat identifies the JSON backup layout.
	BackupFormat = "ecosdacama.v1"
	// BackupTable names the exported table. Older backups spell it "Sonhos".
	BackupTable = "sonhos"
)

var ErrUnknownFormat = errors.New("unknown backup format")

// Backup is the JSON document written by WriteBackup.
type Backup struct {
	ID         uuid.UUID      `json:"id"`
	Format     string         `json:"format"`
	ExportedAt time.Time      `json:"exportedAt"`
	Table      string         `json:"table"`
	Rows       []dreams.Dream `json:"rows"`
}

// NewBackup wraps list in a Backup stamped with now.
func NewBackup(list []dreams.Dream, now time.Time) Backup {
	rows := make([]dreams.Dream, len(list))
	copy(rows, list)
	return Backup{
		ID:         uuid.New(),
		Format:     BackupFormat,
		ExportedAt: now.UTC(),
		Table:      BackupTable,
		Rows:       rows,
	}
}

// WriteBackup encodes b as indented JSON.
func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ReadBackup decodes a backup and rejects anything that is not a BackupFormat
// document of the dream table.
func ReadBackup(r io.Reader) (Backup, error) {
	var raw struct {
		Backup
		Rows json.RawMessage `json:"rows"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	b := raw.Backup
	if b.Format != BackupFormat {
		return Backup{}, fmt.Errorf("%w: %q", ErrUnknownFormat, b.Format)
	}
	if !strings.EqualFold(b.Table, BackupTable) {
		return Backup{}, fmt.Errorf("%w: table %q", ErrUnknownFormat, b.Table)
	}
	rows := bytes.TrimSpace(raw.Rows)
	if len(rows) == 0 || rows[0] != '[' {
		return Backup{}, fmt.Errorf("%w: rows is not an array", ErrUnknownFormat)
	}
	if err := json.Unmarshal(rows, &b.Rows); err != nil {
		return Backup{}, fmt.Errorf("decode backup rows: %w", err)
	}
	return b, nil
}

// Merger is the part of the store Restore needs.
type Merger interface {
	Merge(ctx context.Context, rows []dreams.Dream) (dreams.MergeResult, error)
}

// Restore merges the rows of b into store: rows whose id already exists are skipped,
// the rest are inserted with new ids. The import is all or nothing.
func Restore(ctx context.Context, store Merger, b Backup) (dreams.MergeResult, error) {
	res, err := store.Merge(ctx, b.Rows)
	if err != nil {
		return dreams.MergeResult{}, fmt.Errorf("restore backup %s: %w", b.ID, err)
	}
	return res, nil
}
