// Package repository picks the node store backend from configuration.
package repository

import (
	"context"
	"log/slog"

	"sanctum/internal/config"
	"sanctum/internal/domain/repositories"
	libraryRepo "sanctum/internal/domain/repositories/library"
	"sanctum/internal/repository/postgres"
	postgresLibrary "sanctum/internal/repository/postgres/library"
	"sanctum/internal/repository/sqlite"
)

// Handle is an open node store
type Handle struct {
	Nodes  libraryRepo.NodeRepository
	Tx     repositories.TransactionManager
	Driver string

	close func() error
}

// Close releases the connection pool or database file
func (h *Handle) Close() error {
	return h.close()
}

// Open connects to postgres when DATABASE_URL is a postgres URL and opens a
// SQLite file otherwise. The schema is created if missing.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Handle, error) {
	var h *Handle

	if cfg.IsPostgres() {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, 10, 2)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "driver", "postgres", "table_prefix", cfg.TablePrefix)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		h = &Handle{
			Nodes:  postgresLibrary.NewNodeRepository(repoConfig),
			Tx:     postgres.NewTransactionManager(pool, logger),
			Driver: "postgres",
			close: func() error {
				pool.Close()
				return nil
			},
		}
	} else {
		store, err := sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "driver", "sqlite", "path", store.Path())

		h = &Handle{
			Nodes:  sqlite.NewNodeRepository(store),
			Tx:     sqlite.NewTransactionManager(store),
			Driver: "sqlite",
			close:  store.Close,
		}
	}

	if err := h.Nodes.EnsureSchema(ctx); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}
