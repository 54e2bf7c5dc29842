package store

import (
	"fmt"

	"github.com/rgehrsitz/aishcalc/internal/config"
	"github.com/rgehrsitz/aishcalc/internal/store/redisstore"
	"github.com/rgehrsitz/aishcalc/internal/store/sqlite"
	"go.uber.org/zap"
)

// OpenBackend creates the backend selected by the settings
func OpenBackend(settings *config.Settings) (Backend, error) {
	switch settings.Store.Backend {
	case config.BackendFile:
		return NewFileBackend(settings.Store.Path), nil
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendSQLite:
		return sqlite.New(settings.Store.Path)
	case config.BackendRedis:
		return redisstore.New(redisstore.Config{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
			Key:      settings.Redis.Key,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", settings.Store.Backend)
	}
}

// Open creates a repository on the backend selected by the settings
func Open(settings *config.Settings, logger *zap.Logger) (*Repository, error) {
	backend, err := OpenBackend(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", settings.Store.Backend, err)
	}
	if logger != nil {
		logger.Debug("opened store", zap.String("backend", settings.Store.Backend))
	}
	return NewRepository(backend, logger), nil
}
