package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/vista-ui/config"
	"github.com/target/vista-ui/internal/adapters/memory"
	"github.com/target/vista-ui/internal/adapters/postgres"
	redisstore "github.com/target/vista-ui/internal/adapters/redis"
	"github.com/target/vista-ui/internal/ports"
)

// StorageBackend is a client storage driver that also supports admin inspection.
type StorageBackend interface {
	ports.StorageProvider
	ports.StorageAdmin
}

// Infrastructure holds the shared connections required by the storage driver.
// Fields are nil when the driver does not use them.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// ConnectInfrastructure opens the connections the configured storage driver needs
// and applies migrations when enabled.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.NeedsPostgres() {
		db, err := ConnectDB(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db

		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.NeedsRedis() {
		client, err := ConnectRedis(dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.Redis = client
	}

	return infra, nil
}

// Close releases every open connection.
func (i *Infrastructure) Close() error {
	var errs []error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HealthCheck pings whichever backends are connected.
func (i *Infrastructure) HealthCheck(ctx context.Context) error {
	if i.DB != nil {
		if err := i.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
	}
	return nil
}

// NewStorageBackend selects the client storage driver named by cfg.
//
//nolint:ireturn // the driver is chosen at runtime.
func NewStorageBackend(cfg config.StorageConfig, infra *Infrastructure) (StorageBackend, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory:
		return memory.NewStorageProvider(), nil
	case config.StorageDriverPostgres:
		if infra == nil || infra.DB == nil {
			return nil, errors.New("postgres storage requires a database connection")
		}
		return postgres.NewStorageProvider(infra.DB), nil
	case config.StorageDriverRedis, "":
		if infra == nil || infra.Redis == nil {
			return nil, errors.New("redis storage requires a redis connection")
		}
		return redisstore.NewStorageProvider(infra.Redis, redisstore.StorageOptions{
			Prefix: cfg.KeyPrefix,
			TTL:    cfg.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
