package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vitrine-app/vitrine/internal/config"
	storepkg "github.com/vitrine-app/vitrine/internal/store"
	storepg "github.com/vitrine-app/vitrine/internal/store/postgres"
	storesqlite "github.com/vitrine-app/vitrine/internal/store/sqlite"
)

// NewStore returns the store.Store selected by cfg.DBDriver and the
// underlying *sql.DB, which the caller closes on shutdown.
//
// SQLite is opened and migrated synchronously. Postgres opens synchronously
// since health checks need it immediately, then bootstraps the schema in the
// background bounded by the bootstrap timeout.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, *sql.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		st, db, err := storesqlite.OpenStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store ready")
		return st, db, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("VITRINE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		go func() {
			bootstrapCtx, cancel := context.WithTimeout(ctx, cfg.BootstrapTimeout())
			defer cancel()
			if err := storepg.Bootstrap(bootstrapCtx, db); err != nil {
				log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap failed")
			} else {
				log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap completed")
			}
		}()
		return storepg.NewWithDB(db), db, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
