package mainconfig

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/bellasalon/booking-platform/internal/config"
	"github.com/bellasalon/booking-platform/internal/store"
	"github.com/bellasalon/booking-platform/internal/store/filekv"
	"github.com/bellasalon/booking-platform/internal/store/pgkv"
	"github.com/bellasalon/booking-platform/internal/store/redikv"
	"github.com/bellasalon/booking-platform/pkg/logging"
)

// BuildBackend centralizes storage initialization so every binary shares the
// same wiring. The returned cleanup func closes whatever the backend opened.
func BuildBackend(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (store.Backend, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case "memory":
		return store.NewMemory(), noop, nil

	case "file":
		return filekv.New(cfg.DataFile, logger), noop, nil

	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("mainconfig: redis ping: %w", err)
		}
		return redikv.New(client, logger), func() { _ = client.Close() }, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("mainconfig: DATABASE_URL is required for postgres storage")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("mainconfig: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("mainconfig: postgres ping: %w", err)
		}
		return pgkv.New(pool, logger), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("mainconfig: unknown storage backend %q", cfg.StorageBackend)
	}
}
