package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jnfpayroll/auth-api/internal/core/ports"
	"github.com/jnfpayroll/auth-api/internal/infrastructure/db/memory"
	mongostore "github.com/jnfpayroll/auth-api/internal/infrastructure/db/mongo"
	redisstore "github.com/jnfpayroll/auth-api/internal/infrastructure/db/redis"
	"github.com/jnfpayroll/auth-api/internal/infrastructure/db/sqlstore"
	"github.com/jnfpayroll/auth-api/internal/pkg/config"
)

type closeFunc func(context.Context) error

func noopClose(context.Context) error { return nil }

// openRepository selects the user repository for the configured backend.
func openRepository(ctx context.Context, cfg config.StoreConfig, log zerolog.Logger) (ports.UserRepository, closeFunc, error) {
	log = log.With().Str("store", cfg.Backend).Logger()

	switch cfg.Backend {
	case config.BackendMemory, "":
		log.Warn().Msg("using in-memory user store; accounts are lost on restart")
		return memory.NewUserRepository(), noopClose, nil

	case config.BackendSQLite:
		db, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite user store ready")
		return sqlstore.NewUserRepository(db, sqlstore.DialectSQLite), func(context.Context) error { return db.Close() }, nil

	case config.BackendPostgres:
		db, err := sqlstore.Open(ctx, sqlstore.DialectPostgres, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("postgres user store ready")
		return sqlstore.NewUserRepository(db, sqlstore.DialectPostgres), func(context.Context) error { return db.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo user store ready")
		return repo, client.Disconnect, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis user store ready")
		return redisstore.NewUserRepository(client), func(context.Context) error { return client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
