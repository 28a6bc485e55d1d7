package sqlite

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            display_name TEXT,
            is_admin BOOLEAN NOT NULL DEFAULT 0,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS collections (
            collection_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            kind TEXT NOT NULL CHECK (kind IN ('watches','sneakers','purses')),
            created_by TEXT NOT NULL REFERENCES users(user_id),
            creation_time TIMESTAMP NOT NULL,
            update_time TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS access_grants (
            user_id TEXT NOT NULL REFERENCES users(user_id),
            collection_id TEXT NOT NULL REFERENCES collections(collection_id),
            role TEXT NOT NULL CHECK (role IN ('owner','editor','viewer')),
            creation_time TIMESTAMP NOT NULL,
            PRIMARY KEY(user_id, collection_id)
        );`,
		`CREATE INDEX IF NOT EXISTS access_grants_collection_idx ON access_grants(collection_id);`,
		`CREATE TABLE IF NOT EXISTS selection_preferences (
            user_id TEXT PRIMARY KEY REFERENCES users(user_id),
            default_collection_id TEXT,
            last_selected_collection_id TEXT,
            update_time TIMESTAMP NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
