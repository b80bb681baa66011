package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosdacama/dreams/pkg/dreams"
)

var sample = []dreams.Dream{
	{ID: 1, Title: "Fly", Description: "I flew over hills", Date: "14/03/2024", Time: "06:45", Interpretation: "freedom"},
	{ID: 2, Title: "Ocean", Description: "swimming", Date: "15/03/2024", Time: "23:10"},
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sample))

	want := "Título: Fly\nSonho: I flew over hills\nData: 14/03/2024\nHora: 06:45\n\n------------------\n\n" +
		"Título: Ocean\nSonho: swimming\nData: 15/03/2024\nHora: 23:10\n\n------------------\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextNormalizes(t *testing.T) {
	var buf bytes.Buffer
	// "a" followed by a combining tilde comes out as a single "\u00e3".
	require.NoError(t, WriteText(&buf, []dreams.Dream{{Title: "Ma\u0303e"}}))
	assert.True(t, strings.HasPrefix(buf.String(), "T\u00edtulo: M\u00e3e\n"))
}

func TestTextFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "nested")

	path, err := TextFile(dir, sample)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TextFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "------------------"))
}

func TestBackupRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)
	b := NewBackup(sample, now)

	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, b))
	assert.Contains(t, buf.String(), `"format": "ecosdacama.v1"`)
	assert.Contains(t, buf.String(), `"titulo": "Fly"`)

	got, err := ReadBackup(&buf)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.True(t, now.Equal(got.ExportedAt))
	assert.Equal(t, sample, got.Rows)
}

func TestReadBackupRejectsUnknownFormat(t *testing.T) {
	_, err := ReadBackup(strings.NewReader(`{"format":"other.v9","table":"sonhos","rows":[]}`))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ReadBackup(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestReadBackupChecksTableAndRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lower case table", `{"format":"ecosdacama.v1","table":"sonhos","rows":[]}`, false},
		{"app spelling", `{"format":"ecosdacama.v1","table":"Sonhos","rows":[{"id":3,"titulo":"Fly"}]}`, false},
		{"other table", `{"format":"ecosdacama.v1","table":"notes","rows":[]}`, true},
		{"missing table", `{"format":"ecosdacama.v1","rows":[]}`, true},
		{"rows object", `{"format":"ecosdacama.v1","table":"sonhos","rows":{}}`, true},
		{"rows null", `{"format":"ecosdacama.v1","table":"sonhos","rows":null}`, true},
		{"rows missing", `{"format":"ecosdacama.v1","table":"sonhos"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ReadBackup(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, b.Rows)
		})
	}
}

type fakeMerger struct {
	got []dreams.Dream
	err error
}

func (f *fakeMerger) Merge(_ context.Context, rows []dreams.Dream) (dreams.MergeResult, error) {
	if f.err != nil {
		return dreams.MergeResult{}, f.err
	}
	f.got = append(f.got, rows...)
	return dreams.MergeResult{Imported: len(rows)}, nil
}

func TestRestore(t *testing.T) {
	f := &fakeMerger{}
	res, err := Restore(context.Background(), f, NewBackup(sample, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, dreams.MergeResult{Imported: 2}, res)
	assert.Equal(t, sample, f.got)

	failing := &fakeMerger{err: errors.New("disk full")}
	res, err = Restore(context.Background(), failing, NewBackup(sample, time.Now()))
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, res)
}

func TestRestoreIntoStore(t *testing.T) {
	ctx := context.Background()
	store, err := dreams.Open(ctx, filepath.Join(t.TempDir(), "dreams.db"), dreams.Options{})
	require.NoError(t, err)
	defer store.Close()

	res, err := Restore(ctx, store, NewBackup(sample, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, dreams.MergeResult{Imported: 2}, res)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Fly", all[0].Title)
	assert.Equal(t, "freedom", all[0].Interpretation)
}

func TestRestoreTwiceSkipsExisting(t *testing.T) {
	ctx := context.Background()
	store, err := dreams.Open(ctx, filepath.Join(t.TempDir(), "dreams.db"), dreams.Options{})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Insert(ctx, dreams.Dream{Title: "Fly", Description: "I flew over hills"})
	require.NoError(t, err)
	own, err := store.List(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBackup(&buf, NewBackup(own, time.Now())))
	b, err := ReadBackup(&buf)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := Restore(ctx, store, b)
		require.NoError(t, err)
		assert.Equal(t, dreams.MergeResult{Skipped: 1}, res)
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
