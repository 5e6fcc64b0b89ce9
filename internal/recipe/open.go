package recipe

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/redis"
)

const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Open connects the backend selected in cfg.Store. It returns a nil Store
// for the "none" backend, in which case enrichment is unavailable.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case BackendNone, "":
		return nil, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.Store.SQLitePath, cfg.Store.Table)
	case BackendPostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s, err := NewPostgresStore(ctx, client, cfg.Store.Table)
		if err != nil {
			client.Close()
			return nil, err
		}
		return s, nil
	case BackendRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Store.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
