package db

import (
	"database/sql"
	"fmt"
)

// localSchema holds uploaded media, settings and revoked tokens.
const localSchema = `
CREATE TABLE IF NOT EXISTS media (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    size       INTEGER NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// localMigrations run in order after the schema. Each must be idempotent.
var localMigrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_revoked_tokens_expires ON revoked_tokens(expires_at)`,
}

// EnsureLocalSchema creates the local tables and applies migrations.
func EnsureLocalSchema(db *sql.DB) error {
	if _, err := db.Exec(localSchema); err != nil {
		return fmt.Errorf("creating local schema: %w", err)
	}
	for i, m := range localMigrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running local migration %d: %w", i+1, err)
		}
	}
	return nil
}
