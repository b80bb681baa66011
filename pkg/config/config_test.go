package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DBPath)
	assert.False(t, cfg.WAL)
	assert.Equal(t, "FULL", cfg.Sync)
	assert.Equal(t, "http://localhost:3000/api/interpretar-sonho", cfg.InterpretURL)
	assert.Equal(t, 45*time.Second, cfg.InterpretTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DREAMS_DB_PATH":           "/tmp/d.db",
		"DREAMS_WAL":               "true",
		"DREAMS_SYNC":              "NORMAL",
		"DREAMS_INTERPRET_URL":     "https://example.test/api",
		"DREAMS_INTERPRET_TIMEOUT": "5s",
		"DREAMS_LOG_LEVEL":         "debug",
		"DREAMS_LOG_FORMAT":        "json",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/d.db", cfg.DBPath)
	assert.True(t, cfg.WAL)
	assert.Equal(t, "NORMAL", cfg.Sync)
	assert.Equal(t, "https://example.test/api", cfg.InterpretURL)
	assert.Equal(t, 5*time.Second, cfg.InterpretTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Debug("hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestLoadFromInvalid(t *testing.T) {
	_, err := LoadFrom(map[string]string{"DREAMS_WAL": "maybe"})
	require.Error(t, err)
}
