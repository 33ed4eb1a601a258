package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cabiir/FianlFitnessGym/internal/clientstore"
	"github.com/cabiir/FianlFitnessGym/internal/config"
)

// OpenClientStore builds the backend selected by CLIENT_STORE. The returned
// close function releases it.
func OpenClientStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (clientstore.Store, func() error, error) {
	switch cfg.ClientStore {
	case config.ClientStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		log.Info().Str("addr", opts.Addr).Msg("client store: redis")
		return clientstore.NewRedisStore(client), client.Close, nil

	case config.ClientStoreStoolap:
		store, err := clientstore.OpenSQLStore(ctx, cfg.StoolapDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dsn", cfg.StoolapDSN).Msg("client store: stoolap")
		return store, store.Close, nil

	default:
		log.Info().Msg("client store: memory")
		return clientstore.NewMemoryStore(), func() error { return nil }, nil
	}
}
