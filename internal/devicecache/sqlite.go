package devicecache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vitrine-app/vitrine/internal/localstate"
	sqlitestore "github.com/vitrine-app/vitrine/internal/store/sqlite"
)

// SQLite persists cache entries in a file so they survive process restarts.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the cache file at path; an empty path uses localstate.DBPath().
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		p, err := localstate.DBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	db, err := sqlitestore.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS device_cache (
            cache_key TEXT PRIMARY KEY,
            cache_value TEXT NOT NULL,
            update_time TIMESTAMP NOT NULL
        )`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT cache_value FROM device_cache WHERE cache_key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO device_cache (cache_key, cache_value, update_time) VALUES (?,?,?)
        ON CONFLICT(cache_key) DO UPDATE SET cache_value=excluded.cache_value, update_time=excluded.update_time
    `, key, value, time.Now().UTC())
	return err
}

func (s *SQLite) Clear(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_cache WHERE cache_key=?`, key)
	return err
}

// HealthPing implements health.HealthPinger.
func (s *SQLite) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() error { return s.db.Close() }
