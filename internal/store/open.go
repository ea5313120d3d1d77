// Package store picks the backing database from configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/http/health"
	"github.com/MrKriegler/go-warranty/internal/middleware"
	"github.com/MrKriegler/go-warranty/internal/platform/config"
	"github.com/MrKriegler/go-warranty/internal/store/dynamo"
	"github.com/MrKriegler/go-warranty/internal/store/memory"
	"github.com/MrKriegler/go-warranty/internal/store/mongo"
	redisstore "github.com/MrKriegler/go-warranty/internal/store/redis"
	"github.com/MrKriegler/go-warranty/internal/store/sqldb"
)

// Stores holds the repositories for the configured backend.
type Stores struct {
	Discounts core.DiscountRepo
	Policies  core.PolicyRepo
	Drafts    core.DraftStore
	Limiter   middleware.Limiter

	// Checks feeds /readyz.
	Checks map[string]health.Pinger

	closers []func(context.Context) error
}

// Close releases every connection that was opened.
func (s *Stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			slog.Warn("store close failed", "err", err)
		}
	}
}

// Open connects to the database selected by cfg.DBType, prepares its schema
// and, when REDIS_URL is set, connects Redis for drafts and rate limiting.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Stores, error) {
	s := &Stores{Checks: map[string]health.Pinger{}}
	opTimeout := time.Duration(cfg.OpTimeoutMs) * time.Millisecond

	if err := s.openDatabase(ctx, cfg, log, opTimeout); err != nil {
		s.Close(ctx)
		return nil, err
	}

	if err := s.openCache(ctx, cfg, log); err != nil {
		s.Close(ctx)
		return nil, err
	}

	return s, nil
}

func (s *Stores) openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger, opTimeout time.Duration) error {
	switch cfg.DBType {
	case "postgres", "sqlite":
		sqlCfg := sqldb.Config{Dialect: sqldb.DialectPostgres, DSN: cfg.DatabaseURL}
		if cfg.DBType == "sqlite" {
			sqlCfg = sqldb.Config{Dialect: sqldb.DialectSQLite, DSN: cfg.SQLitePath}
		}
		log.Info("connecting to sql database", "dialect", sqlCfg.Dialect)
		db, err := sqldb.Open(ctx, sqlCfg)
		if err != nil {
			return fmt.Errorf("connect %s: %w", cfg.DBType, err)
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })

		if err := sqldb.Migrate(db); err != nil {
			return err
		}
		s.Discounts = sqldb.NewDiscountRepo(db, opTimeout)
		s.Policies = sqldb.NewPolicyRepo(db, opTimeout)
		s.Checks[cfg.DBType] = db

	case "mongo":
		log.Info("connecting to mongodb", "db", cfg.MongoDB)
		client, err := mongo.NewClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		s.closers = append(s.closers, client.Close)

		if err := mongo.EnsureIndexes(ctx, client.DB); err != nil {
			return fmt.Errorf("ensure mongo indexes: %w", err)
		}
		s.Discounts = mongo.NewDiscountRepo(client.DB, client.OpTimeout)
		s.Policies = mongo.NewPolicyRepo(client.DB, client.OpTimeout)
		s.Checks["mongo"] = client

	case "dynamodb":
		log.Info("connecting to dynamodb", "region", cfg.AWSRegion, "endpoint", cfg.DynamoDBEndpoint)
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("connect dynamodb: %w", err)
		}

		if err := client.EnsureTables(ctx); err != nil {
			return fmt.Errorf("ensure dynamodb tables: %w", err)
		}
		s.Discounts = dynamo.NewDiscountRepo(client.DB)
		s.Policies = dynamo.NewPolicyRepo(client.DB)
		s.Checks["dynamodb"] = client

	default:
		return fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
	return nil
}

func (s *Stores) openCache(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.RedisURL == "" {
		log.Info("no redis configured, drafts and rate limits kept in memory")
		s.Drafts = memory.NewDraftStore()
		if cfg.RateLimitRPM > 0 {
			s.Limiter = middleware.NewMemoryLimiter(cfg.RateLimitRPM, time.Minute)
		}
		return nil
	}

	client, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	s.closers = append(s.closers, func(context.Context) error { return client.Close() })

	s.Drafts = redisstore.NewDraftStore(client)
	if cfg.RateLimitRPM > 0 {
		s.Limiter = middleware.NewRedisLimiter(client, cfg.RateLimitRPM, time.Minute)
	}
	s.Checks["redis"] = health.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return nil
}
