package dreams

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dreams.db")
	store, err := Open(context.Background(), path, Options{WAL: true, Sync: "NORMAL"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// Helper to insert a dream for test setup
func insertTestDream(t *testing.T, ctx context.Context, store *Store, title, description string) Dream {
	t.Helper()
	d := Dream{Title: title, Description: description, Date: "14/03/2024", Time: "06:45"}
	id, err := store.Insert(ctx, d)
	if err != nil {
		t.Fatalf("Insert failed in insertTestDream: %v", err)
	}
	d.ID = id
	return d
}

func TestInsertAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	existing := insertTestDream(t, ctx, store, "Fly", "I flew over hills")

	d := Dream{Title: "Ocean", Description: "swimming", Date: "15/03/2024", Time: "23:10"}
	id, err := store.Insert(ctx, d)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id <= 0 || id == existing.ID {
		t.Fatalf("expected a new positive id distinct from %d, got %d", existing.ID, id)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 dreams, got %d", len(all))
	}

	d.ID = id
	if all[1] != d {
		t.Errorf("listed dream = %+v, want %+v", all[1], d)
	}
	if all[0].ID >= all[1].ID {
		t.Errorf("expected ascending id order, got %d then %d", all[0].ID, all[1].ID)
	}
}

func TestInterpretationDefaultsToEmpty(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	d := insertTestDream(t, ctx, store, "", "")

	got, err := store.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Interpretation != "" {
		t.Errorf("expected empty interpretation, got %q", got.Interpretation)
	}

	// A NULL written by an older client still reads back as "".
	if _, err := store.DB().Exec(`UPDATE sonhos SET significado = NULL, titulo = NULL WHERE id = ?`, d.ID); err != nil {
		t.Fatalf("nulling columns failed: %v", err)
	}
	got, err = store.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get after NULL failed: %v", err)
	}
	if got.Interpretation != "" || got.Title != "" {
		t.Errorf("expected NULL columns to read as empty strings, got %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	d := insertTestDream(t, ctx, store, "Fly", "I flew over hills")
	d.Title = "Flying"
	d.Description = "I flew over the sea"
	d.Date = "16/03/2024"
	d.Time = "04:00"
	d.Interpretation = "freedom"

	n, err := store.Update(ctx, d)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row affected, got %d", n)
	}

	got, err := store.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != d {
		t.Errorf("updated dream = %+v, want %+v", got, d)
	}
}

func TestUpdateNonExistent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	before := insertTestDream(t, ctx, store, "Fly", "I flew over hills")

	n, err := store.Update(ctx, Dream{ID: before.ID + 100, Title: "ghost"})
	if err != nil {
		t.Fatalf("Update on a missing id should not fail: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows affected, got %d", n)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 || all[0] != before {
		t.Errorf("store changed after a no-op update: %+v", all)
	}
}

func TestDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := insertTestDream(t, ctx, store, "Fly", "I flew over hills")
	second := insertTestDream(t, ctx, store, "Ocean", "swimming")

	n, err := store.Delete(ctx, first.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row deleted, got %d", n)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, d := range all {
		if d.ID == first.ID {
			t.Errorf("deleted dream %d still listed", first.ID)
		}
	}

	if _, err := store.Get(ctx, first.ID); !errors.Is(err, ErrDreamNotFound) {
		t.Errorf("expected ErrDreamNotFound, got %v", err)
	}

	// Deleting again is a no-op.
	n, err = store.Delete(ctx, first.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows deleted, got %d", n)
	}

	// Ids are never reused.
	third := insertTestDream(t, ctx, store, "Forest", "trees")
	if third.ID <= second.ID {
		t.Errorf("expected id greater than %d, got %d", second.ID, third.ID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dreams.db")

	store, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	d := insertTestDream(t, ctx, store, "Fly", "I flew over hills")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(ctx, path, Options{})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if reopened.Path() != path {
		t.Errorf("Path() = %q, want %q", reopened.Path(), path)
	}
	got, err := reopened.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != d {
		t.Errorf("dream after reopen = %+v, want %+v", got, d)
	}
}

func TestStorageErrors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// A closed handle makes every operation fail at the driver level.
	store.DB().Close()

	var storageErr *StorageError

	_, err := store.Insert(ctx, Dream{Title: "x"})
	if !errors.As(err, &storageErr) || storageErr.Op != "insert" {
		t.Errorf("Insert: expected StorageError{Op: insert}, got %v", err)
	}

	all, err := store.List(ctx)
	if !errors.As(err, &storageErr) {
		t.Errorf("List: expected StorageError, got %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("List: expected an empty non-nil slice on failure, got %#v", all)
	}

	found, err := store.Search(ctx, "x")
	if !errors.As(err, &storageErr) {
		t.Errorf("Search: expected StorageError, got %v", err)
	}
	if found == nil || len(found) != 0 {
		t.Errorf("Search: expected an empty non-nil slice on failure, got %#v", found)
	}

	n, err := store.Update(ctx, Dream{ID: 1})
	if !errors.As(err, &storageErr) || n != 0 {
		t.Errorf("Update: expected StorageError and 0 rows, got %d, %v", n, err)
	}

	n, err = store.Delete(ctx, 1)
	if !errors.As(err, &storageErr) || n != 0 {
		t.Errorf("Delete: expected StorageError and 0 rows, got %d, %v", n, err)
	}
}

func TestNewDreamAndValidation(t *testing.T) {
	at := time.Date(2024, time.March, 5, 7, 9, 0, 0, time.UTC)
	d := NewDream("Fly", "I flew", at)
	if d.Date != "05/03/2024" || d.Time != "07:09" {
		t.Errorf("unexpected date/time: %q %q", d.Date, d.Time)
	}
	if d.Interpretation != "" || d.ID != 0 {
		t.Errorf("expected zero id and empty interpretation, got %+v", d)
	}

	if !ValidDate("31/12/2023") || ValidDate("2023-12-31") || ValidDate("32/01/2024") {
		t.Error("ValidDate mismatch")
	}
	if !ValidTime("23:59") || ValidTime("24:00") || ValidTime("7pm") {
		t.Error("ValidTime mismatch")
	}
}
