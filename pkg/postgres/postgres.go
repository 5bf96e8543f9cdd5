package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgreDB struct {
	Pool     *pgxpool.Pool
	DBConfig *pgxpool.Config
}

type Config interface {
	GetDSN() string
	PoolSettings() PoolSettings
}

// PoolSettings tunes the pgx connection pool.
// Zero values keep the pgxpool defaults.
type PoolSettings struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func New(ctx context.Context, config Config) (*PostgreDB, error) {
	dbConfig, err := pgxpool.ParseConfig(config.GetDSN())
	if err != nil {
		return nil, err
	}

	settings := config.PoolSettings()
	if settings.MaxConns > 0 {
		dbConfig.MaxConns = settings.MaxConns
	}
	if settings.MinConns > 0 {
		dbConfig.MinConns = settings.MinConns
	}
	if settings.MaxConnLifetime > 0 {
		dbConfig.MaxConnLifetime = settings.MaxConnLifetime
	}
	if settings.MaxConnIdleTime > 0 {
		dbConfig.MaxConnIdleTime = settings.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	// Ping the database
	if err = pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgreDB{
		Pool:     pool,
		DBConfig: dbConfig,
	}, nil
}
