package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/apexdefense/agd/internal/config"
	"github.com/apexdefense/agd/internal/util"
	"github.com/apexdefense/agd/storage"
	bboltstorage "github.com/apexdefense/agd/storage/bbolt"
)

// Open builds an App from cfg backed by the bbolt file in the data dir.
// When a storage key is configured every durable value is sealed with it.
// Close releases the database.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bboltstorage.NewRepositoryFromFile(cfg.StoragePath(), &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open client storage: %w", err)
	}

	var (
		repo   storage.Repository = db
		sealed *storage.SealedRepository
	)
	if cfg.StorageKey != "" {
		sealed, err = storage.NewSealedRepository(db, cfg.StorageKey, util.DefaultArgon2idParams())
		if err != nil {
			db.Close()
			return nil, err
		}
		repo = sealed
	}

	a, err := New(cfg.APIURL, repo,
		WithNamespace(cfg.Profile),
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		WithMapToken(cfg.MapToken),
	)
	if err != nil {
		if sealed != nil {
			sealed.Wipe()
		}
		db.Close()
		return nil, err
	}
	a.OnClose(func() error {
		if sealed != nil {
			sealed.Wipe()
		}
		return db.Close()
	})
	return a, nil
}
