package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/yair/eventfinder/pkg/collectors"
	"github.com/yair/eventfinder/pkg/config"
	"github.com/yair/eventfinder/pkg/domain"
	"github.com/yair/eventfinder/pkg/integrations"
	"github.com/yair/eventfinder/pkg/interfaces"
	"github.com/yair/eventfinder/pkg/logging"
	"github.com/yair/eventfinder/pkg/saved"
	"go.uber.org/zap"
)

type app struct {
	out    io.Writer
	cfg    *config.Config
	logger *zap.Logger
}

func newApp(out io.Writer) *cli.App {
	a := &app{out: out, logger: zap.NewNop()}

	return &cli.App{
		Name:  "eventfinder",
		Usage: "Search Ticketmaster events and keep a list of saved ones",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
				Value:   "config.json",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the configuration",
				Value: ".env",
			},
		},
		Before: a.setup,
		After:  a.teardown,
		Commands: []*cli.Command{
			a.serveCmd(),
			a.searchCmd(),
			a.popularCmd(),
			a.eventCmd(),
			a.savedCmd(),
		},
	}
}

func (a *app) setup(c *cli.Context) error {
	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) teardown(c *cli.Context) error {
	// Sync on stderr fails on some platforms; there is nothing to recover.
	_ = a.logger.Sync()
	return nil
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// catalog builds the Ticketmaster client, behind the response cache when
// cached is set and the cache is enabled.
func (a *app) catalog(cached bool) (domain.EventCatalog, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	tm := a.cfg.APIs.Ticketmaster
	client, err := integrations.NewTicketmasterClient(integrations.TicketmasterConfig{
		APIKey:  tm.APIKey,
		BaseURL: tm.BaseURL,
		Timeout: tm.Timeout,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, err
	}

	if !cached || !a.cfg.Cache.Enabled {
		return client, nil
	}

	return integrations.NewCachedCatalog(client, integrations.CacheConfig{
		Size:     a.cfg.Cache.Size,
		FreshFor: a.cfg.Cache.FreshFor,
		StaleFor: a.cfg.Cache.StaleFor,
		Logger:   a.logger,
	})
}

// openStore opens the configured slot storage and hydrates the saved store
// from it. The returned func releases the storage.
func (a *app) openStore(ctx context.Context) (*saved.Store, func(), error) {
	if err := a.cfg.ValidateStorage(); err != nil {
		return nil, nil, err
	}

	storage, closeStorage, err := openSlotStorage(ctx, a.cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	logger := a.logger.Named("saved")
	store, err := saved.NewStore(ctx, storage, saved.Options{
		MaxCapacity:    a.cfg.Saved.MaxEvents,
		Slot:           a.cfg.Saved.Slot,
		PersistTimeout: a.cfg.Saved.PersistTimeout,
		Logger:         logger,
		OnPersist: func(r saved.PersistReport) {
			logger.Debug("saved events persistence",
				zap.String("op", r.Op),
				zap.Int("count", r.Count),
				zap.Bool("ok", r.Err == nil))
		},
	})
	if err != nil {
		closeStorage()
		return nil, nil, err
	}

	return store, closeStorage, nil
}

func openSlotStorage(ctx context.Context, cfg config.StorageConfig) (domain.SlotStorage, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := collectors.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo, err := collectors.NewSlotRepository(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case config.DriverRedis:
		store, err := collectors.NewRedisSlotStore(ctx, collectors.RedisSlotConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case config.DriverMemory:
		return collectors.NewMemorySlotStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (a *app) eventService() (*interfaces.EventService, error) {
	catalog, err := a.catalog(false)
	if err != nil {
		return nil, err
	}
	return interfaces.NewEventService(catalog), nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
