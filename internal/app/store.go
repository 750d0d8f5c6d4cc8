package app

import (
	"context"
	"time"

	"github.com/drstein77/ordercalc/internal/config"
	"github.com/drstein77/ordercalc/internal/dbkeeper"
	"github.com/drstein77/ordercalc/internal/filekeeper"
	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/rediskeeper"
	"github.com/drstein77/ordercalc/internal/storage"
)

// StoreConfig selects the keeper backing the store. Postgres wins over
// redis, and the JSON file is used when neither is set.
type StoreConfig struct {
	DatabaseDSN     string
	MigrationsDir   string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DataFile        string
	Location        *time.Location
	FrequencyWindow int
}

func StoreConfigFromOptions(o *config.Options) StoreConfig {
	return StoreConfig{
		DatabaseDSN:     o.DataBaseDSN(),
		MigrationsDir:   o.MigrationsDir(),
		RedisAddr:       o.RedisAddr(),
		RedisPassword:   o.RedisPassword(),
		RedisDB:         o.RedisDB(),
		DataFile:        o.DataFile(),
		Location:        o.Location(),
		FrequencyWindow: o.FrequencyWindow(),
	}
}

// OpenKeeper connects the configured backend.
func OpenKeeper(ctx context.Context, cfg StoreConfig, log *logger.Logger) (storage.Keeper, error) {
	switch {
	case cfg.DatabaseDSN != "":
		return dbkeeper.NewDBKeeper(ctx, func() string { return cfg.DatabaseDSN }, cfg.MigrationsDir, log.Named("postgres"))
	case cfg.RedisAddr != "":
		return rediskeeper.NewRedisKeeper(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log.Named("redis"))
	default:
		return filekeeper.NewFileKeeper(cfg.DataFile, log.Named("file"))
	}
}

// OpenStore loads the configured backend into a MemoryStorage.
func OpenStore(ctx context.Context, cfg StoreConfig, log *logger.Logger) (*storage.MemoryStorage, error) {
	keeper, err := OpenKeeper(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewMemoryStorage(ctx, keeper, log.Named("store"), storage.Options{
		Location:        cfg.Location,
		FrequencyWindow: cfg.FrequencyWindow,
	})
	if err != nil {
		keeper.Close()
		return nil, err
	}
	return store, nil
}
