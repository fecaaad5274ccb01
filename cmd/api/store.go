package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/invoicehub/internal/config"
	"github.com/geocoder89/invoicehub/internal/db"
	"github.com/geocoder89/invoicehub/internal/domain/user"
	"github.com/geocoder89/invoicehub/internal/observability"
	"github.com/geocoder89/invoicehub/internal/repo/memory"
	mongorepo "github.com/geocoder89/invoicehub/internal/repo/mongo"
	"github.com/geocoder89/invoicehub/internal/repo/postgres"
)

// storeHandle is the credential store plus whatever owns its connections.
type storeHandle struct {
	users user.Store
	close func()
}

func openStore(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (storeHandle, error) {
	cctx, cancel := config.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(cctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return storeHandle{}, err
		}

		if err := db.Migrate(cctx, pool); err != nil {
			pool.Close()
			return storeHandle{}, fmt.Errorf("migrate: %w", err)
		}

		log.Info("credential store ready", "driver", cfg.StoreDriver)
		return storeHandle{users: postgres.NewUsersRepo(pool, prom), close: pool.Close}, nil

	case config.StoreMongo:
		client, err := mongorepo.Connect(cctx, cfg.MongoURI)
		if err != nil {
			return storeHandle{}, err
		}

		closeClient := func() {
			dctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}

		repo := mongorepo.NewUsersRepo(client, cfg.MongoDatabase, prom)
		if err := repo.EnsureIndexes(cctx); err != nil {
			closeClient()
			return storeHandle{}, fmt.Errorf("ensure indexes: %w", err)
		}

		log.Info("credential store ready", "driver", cfg.StoreDriver, "database", cfg.MongoDatabase)
		return storeHandle{users: repo, close: closeClient}, nil

	case config.StoreMemory:
		log.Warn("using in-memory credential store, accounts are lost on restart")
		return storeHandle{users: memory.NewUsersRepo(), close: func() {}}, nil

	default:
		return storeHandle{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
