package application

import (
	"context"
	"fmt"
	"strings"

	"gift_autobuy/internal/config"
	"gift_autobuy/internal/infrastructure/persistence"
	"gift_autobuy/pkg/application/connectors"
)

// Storage хранилище конфигураций поверх выбранного бэкенда вместе с его
// подключениями.
type Storage struct {
	Store   *persistence.ConfigStore
	closers []func(context.Context)
}

// OpenStorage подключается к бэкенду из STORAGE_BACKEND.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	s := &Storage{}

	backend, err := s.backend(ctx, cfg)
	if err != nil {
		s.Close(ctx)

		return nil, err
	}

	s.Store = persistence.NewConfigStore(backend).WithMaxProfiles(cfg.Storage.MaxProfiles)

	return s, nil
}

func (s *Storage) backend(ctx context.Context, cfg config.StorageConfig) (persistence.Backend, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case config.BackendMemory:
		return persistence.NewMemoryBackend(), nil
	case config.BackendFile:
		backend, err := persistence.NewFileBackend(cfg.Storage.FileDir)
		if err != nil {
			return nil, fmt.Errorf("persistence.NewFileBackend: %w", err)
		}

		return backend, nil
	case config.BackendPostgres:
		pg := &connectors.Postgres{
			DSN:             cfg.Postgres.DSN,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		}
		s.closers = append(s.closers, pg.Close)

		backend := persistence.NewPostgresBackend(pg.Client(ctx))
		if err := backend.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("backend.EnsureSchema: %w", err)
		}

		return backend, nil
	case config.BackendRedis:
		rd := &connectors.Redis{
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			Address:            cfg.Redis.Address,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConnections,
			MaxIdleConnections: cfg.Redis.MaxIdleConnections,
		}
		s.closers = append(s.closers, rd.Close)

		return persistence.NewRedisBackend(rd.Client(ctx), cfg.Redis.KeyPrefix), nil
	case config.BackendMongo:
		mg := &connectors.Mongo{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			MaxPoolSize:    cfg.Mongo.MaxPoolSize,
			MinPoolSize:    cfg.Mongo.MinPoolSize,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		}
		s.closers = append(s.closers, mg.Close)

		return persistence.NewMongoBackend(mg.DB(ctx), cfg.Mongo.Collection), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (s *Storage) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i](ctx)
	}
}

// PrepareOwners переводит старые документы владельцев в текущий формат
// и создаёт отсутствующие конфигурации.
func PrepareOwners(ctx context.Context, store *persistence.ConfigStore, ownerIDs ...int64) error {
	for _, id := range ownerIDs {
		if _, err := store.Migrate(ctx, id); err != nil {
			return fmt.Errorf("store.Migrate(%d): %w", id, err)
		}

		if _, err := store.LoadValid(ctx, id); err != nil {
			return fmt.Errorf("store.LoadValid(%d): %w", id, err)
		}
	}

	return nil
}
