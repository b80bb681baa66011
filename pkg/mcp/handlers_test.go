package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosdacama/dreams/pkg/dreams"
	"github.com/ecosdacama/dreams/pkg/interpret"
)

func setupTestStore(t *testing.T) *dreams.Store {
	t.Helper()
	store, err := dreams.Open(context.Background(), filepath.Join(t.TempDir(), "dreams.db"), dreams.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func decodeDream(t *testing.T, res *mcp.CallToolResult) dreams.Dream {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var d dreams.Dream
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &d))
	return d
}

func fixedNow() dreams.Dream {
	return dreams.Dream{Date: "01/01/2024", Time: "00:00"}
}

func TestAddAndGetDream(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res, err := addDreamHandler(store, fixedNow)(ctx, callRequest(map[string]interface{}{
		"title":       "Fly",
		"description": "I flew over hills",
		"time":        "06:45",
	}))
	require.NoError(t, err)
	added := decodeDream(t, res)
	assert.Positive(t, added.ID)
	assert.Equal(t, "01/01/2024", added.Date)
	assert.Equal(t, "06:45", added.Time)
	assert.Equal(t, "", added.Interpretation)

	res, err = getDreamHandler(store)(ctx, callRequest(map[string]interface{}{"id": float64(added.ID)}))
	require.NoError(t, err)
	assert.Equal(t, added, decodeDream(t, res))
}

func TestAddDreamValidation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	res, err := addDreamHandler(store, fixedNow)(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = addDreamHandler(store, fixedNow)(ctx, callRequest(map[string]interface{}{
		"description": "x",
		"date":        "2024-01-01",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestGetDreamErrors(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, args := range []map[string]interface{}{
		{},
		{"id": "1"},
		{"id": float64(1.5)},
		{"id": float64(0)},
		{"id": float64(42)},
	} {
		res, err := getDreamHandler(store)(ctx, callRequest(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}
}

func TestUpdateDream(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, dreams.Dream{Title: "Fly", Description: "I flew", Date: "01/01/2024", Time: "01:00"})
	require.NoError(t, err)

	res, err := updateDreamHandler(store)(ctx, callRequest(map[string]interface{}{
		"id":             float64(id),
		"interpretation": "freedom",
	}))
	require.NoError(t, err)
	updated := decodeDream(t, res)
	assert.Equal(t, "Fly", updated.Title)
	assert.Equal(t, "freedom", updated.Interpretation)

	res, err = updateDreamHandler(store)(ctx, callRequest(map[string]interface{}{"id": float64(id)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = updateDreamHandler(store)(ctx, callRequest(map[string]interface{}{"id": float64(id + 10), "title": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestUpdateDreamValidatesDateAndTime(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, dreams.Dream{Title: "Fly", Date: "01/01/2024", Time: "01:00"})
	require.NoError(t, err)

	for _, args := range []map[string]interface{}{
		{"id": float64(id), "date": "2024-01-02"},
		{"id": float64(id), "time": "25:00"},
		{"id": float64(id), "title": "Soaring", "date": ""},
	} {
		res, err := updateDreamHandler(store)(ctx, callRequest(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dreams.Dream{ID: id, Title: "Fly", Date: "01/01/2024", Time: "01:00"}, got)

	res, err := updateDreamHandler(store)(ctx, callRequest(map[string]interface{}{
		"id": float64(id), "date": "02/01/2024", "time": "07:30",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	updated := decodeDream(t, res)
	assert.Equal(t, "02/01/2024", updated.Date)
	assert.Equal(t, "07:30", updated.Time)
}

func TestDeleteAndSearchDreams(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fly, err := store.Insert(ctx, dreams.Dream{Title: "Fly", Description: "I flew over hills"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, dreams.Dream{Title: "Ocean", Description: "swimming"})
	require.NoError(t, err)

	res, err := searchDreamsHandler(store)(ctx, callRequest(map[string]interface{}{"query": "fly"}))
	require.NoError(t, err)
	var found []dreams.Dream
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &found))
	require.Len(t, found, 1)
	assert.Equal(t, fly, found[0].ID)

	res, err = deleteDreamHandler(store)(ctx, callRequest(map[string]interface{}{"id": float64(fly)}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"deleted":1}`, resultText(t, res))

	res, err = searchDreamsHandler(store)(ctx, callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Ocean", found[0].Title)
}

func TestInterpretDream(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"significado":"liberdade"}`))
	}))
	defer ts.Close()

	id, err := store.Insert(ctx, dreams.Dream{Title: "Fly", Description: "I flew"})
	require.NoError(t, err)

	res, err := interpretDreamHandler(store, interpret.New(ts.URL))(ctx, callRequest(map[string]interface{}{"id": float64(id)}))
	require.NoError(t, err)
	assert.Equal(t, "liberdade", decodeDream(t, res).Interpretation)

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "liberdade", stored.Interpretation)
}

func TestInterpretDreamFailureLeavesStoreUntouched(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`garbage`))
	}))
	defer ts.Close()

	id, err := store.Insert(ctx, dreams.Dream{Description: "I flew"})
	require.NoError(t, err)

	res, err := interpretDreamHandler(store, interpret.New(ts.URL))(ctx, callRequest(map[string]interface{}{"id": float64(id)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Could not process the response.", resultText(t, res))

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", stored.Interpretation)
}

func TestPing(t *testing.T) {
	res, err := pingHandler(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "pong_dreams", resultText(t, res))
}
