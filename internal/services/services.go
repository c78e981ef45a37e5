// Package services builds the game's collaborators from a Config.
package services

import (
	"fmt"
	"log/slog"

	"github.com/tatianab/ripple-realms/internal/accounts"
	"github.com/tatianab/ripple-realms/internal/config"
	"github.com/tatianab/ripple-realms/internal/engine"
	"github.com/tatianab/ripple-realms/internal/minigames"
	"github.com/tatianab/ripple-realms/internal/quests"
	"github.com/tatianab/ripple-realms/internal/store"
	"github.com/tatianab/ripple-realms/internal/store/cachestore"
	"github.com/tatianab/ripple-realms/internal/store/filestore"
	"github.com/tatianab/ripple-realms/internal/store/logstore"
	"github.com/tatianab/ripple-realms/internal/store/memstore"
	"github.com/tatianab/ripple-realms/internal/store/reststore"
	"github.com/tatianab/ripple-realms/internal/store/sqlitestore"
)

type Services struct {
	Store    store.Store
	Catalog  *quests.Catalog
	Engine   *engine.Engine
	Accounts *accounts.Service
}

// New wires the store, quest catalog, minigame runner, engine and
// accounts described by cfg.
func New(cfg *config.Config, log *slog.Logger) (*Services, error) {
	catalog := quests.Default()
	if cfg.Game.Catalog != "" {
		c, err := quests.LoadFile(cfg.Game.Catalog)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	st, err := OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	games := minigames.NewRunner(minigames.WithReflexLimit(cfg.Game.ReflexLimit.Duration))
	return &Services{
		Store:    st,
		Catalog:  catalog,
		Engine:   engine.New(st, catalog, games, engine.WithLogger(log)),
		Accounts: accounts.New(st, log),
	}, nil
}

// OpenStore opens the configured backend, logs its calls and puts a realm
// cache in front of it when CacheSize is positive.
func OpenStore(cfg config.StoreConfig) (store.Store, error) {
	var backend store.Store
	switch cfg.Kind {
	case config.StoreMemory:
		backend = memstore.New()
	case config.StoreFile:
		s, err := filestore.Open(cfg.File)
		if err != nil {
			return nil, err
		}
		backend = s
	case config.StoreSQLite:
		s, err := sqlitestore.Open(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		backend = s
	case config.StoreREST:
		backend = reststore.New(cfg.RESTURL, cfg.RESTKey)
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}

	st := store.Store(logstore.New(backend))
	if cfg.CacheSize > 0 {
		cached, err := cachestore.New(st, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		st = cached
	}
	return st, nil
}

// Close releases the store.
func (s *Services) Close() error {
	if c, ok := s.Store.(store.Closer); ok {
		return c.Close()
	}
	return nil
}
