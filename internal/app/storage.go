// Package app wires configuration into storage, services and HTTP routes
// for the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rpattn/engtrack/internal/config"
	"github.com/rpattn/engtrack/internal/db"
	"github.com/rpattn/engtrack/internal/repository"
	"github.com/rpattn/engtrack/pkg/logger"
)

// Storage bundles the record collections and the ingestion log for one driver.
type Storage struct {
	Collections repository.Collections
	Logs        repository.IngestionLogRepository
	close       func()
}

// Close releases the database pool, if any.
func (s Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage builds the configured store. The postgres driver applies
// pending migrations before returning.
func OpenStorage(ctx context.Context, cfg config.Config, log logger.Logger) (Storage, error) {
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Info(ctx, "using in-memory storage")
		return Storage{
			Collections: repository.NewCollections(repository.NewMemoryBlobStore()),
			Logs:        repository.NewMemoryIngestionLogRepository(),
		}, nil

	case config.StorageFile:
		store, err := repository.NewFileBlobStore(cfg.Storage.Dir)
		if err != nil {
			return Storage{}, err
		}
		log.Info(ctx, "using file storage", logger.String("dir", cfg.Storage.Dir))
		return Storage{
			Collections: repository.NewCollections(store),
			Logs:        repository.NewMemoryIngestionLogRepository(),
		}, nil

	case config.StoragePostgres:
		version, err := db.RunMigrations(cfg.Database)
		if err != nil {
			return Storage{}, err
		}
		log.Info(ctx, "database migrated", logger.Int("version", int(version)))

		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return Storage{}, err
		}
		return Storage{
			Collections: repository.NewCollections(repository.NewPostgresBlobStore(conn.Pool)),
			Logs:        repository.NewIngestionLogRepository(conn.Pool),
			close:       conn.Close,
		}, nil

	default:
		return Storage{}, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
