package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DriverName is the database/sql driver every connection in this module uses.
const DriverName = "sqlite3"

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Options controls how the SQLite file is opened.
type Options struct {
	// WAL sets journal_mode=WAL.
	WAL bool
	// Sync is the synchronous pragma (OFF, NORMAL, FULL, EXTRA). Empty keeps the SQLite default.
	Sync string
}

// BuildDSN appends the pragma parameters from opts to baseDSN.
func BuildDSN(baseDSN string, opts Options) (string, error) {
	params := url.Values{}

	if opts.WAL {
		params.Add("_journal_mode", "WAL")
	}

	if opts.Sync != "" {
		ucSync := strings.ToUpper(opts.Sync)
		if !validSyncModes[ucSync] {
			return "", fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", opts.Sync)
		}
		params.Add("_synchronous", ucSync)
	}

	if len(params) == 0 {
		return baseDSN, nil
	}
	if strings.Contains(baseDSN, "?") {
		return baseDSN + "&" + params.Encode(), nil
	}
	return baseDSN + "?" + params.Encode(), nil
}

// OpenDBConnection opens the SQLite database at baseDSN (creating the file if absent)
// and verifies the connection with a ping.
func OpenDBConnection(ctx context.Context, baseDSN string, opts Options) (*sql.DB, error) {
	dsn, err := BuildDSN(baseDSN, opts)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", dsn, err)
	}

	// An in-memory database lives only as long as its connection.
	if strings.HasPrefix(baseDSN, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", dsn, err)
	}

	return conn, nil
}
