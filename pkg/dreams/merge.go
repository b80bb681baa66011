package dreams

import (
	"context"
	"fmt"
)

const dreamExistsStatement = `SELECT EXISTS(SELECT 1 FROM sonhos WHERE id = ?)`

// MergeResult counts the rows Merge inserted and the ones it left alone.
type MergeResult struct {
	Imported int
	Skipped  int
}

// Merge inserts rows in a single transaction. A row whose id is already present is
// skipped; any other row gets a new id. On error nothing is written.
func (s *Store) Merge(ctx context.Context, rows []Dream) (MergeResult, error) {
	var res MergeResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeResult{}, s.fail("merge", fmt.Errorf("start transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, d := range rows {
		if d.ID > 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, dreamExistsStatement, d.ID).Scan(&exists); err != nil {
				return MergeResult{}, s.fail("merge", fmt.Errorf("row %d: %w", i, err), "id", d.ID)
			}
			if exists {
				res.Skipped++
				continue
			}
		}
		if _, err := tx.ExecContext(ctx, insertDreamStatement, d.Title, d.Description, d.Date, d.Time, d.Interpretation); err != nil {
			return MergeResult{}, s.fail("merge", fmt.Errorf("row %d: %w", i, err))
		}
		res.Imported++
	}

	if err := tx.Commit(); err != nil {
		return MergeResult{}, s.fail("merge", fmt.Errorf("commit: %w", err))
	}
	return res, nil
}
