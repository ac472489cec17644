package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteDSNOptions enables WAL, waits on locks instead of failing, and opens
// every transaction with BEGIN IMMEDIATE so concurrent writers queue up.
const sqliteDSNOptions = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Clean(dbPath)+sqliteDSNOptions)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store, err := newStore(db, dialect{
		name:       "sqlite",
		migrations: sqliteMigrations,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
