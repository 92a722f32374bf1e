package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/scorekeeper/go/internal/config"
	"github.com/mcdev12/scorekeeper/go/internal/store"
)

func setupDatabase(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, *store.PostgresStore, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	snapshots := store.NewPostgresStore(pool)
	if err := snapshots.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info().
		Str("user", cfg.User).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")
	return pool, snapshots, nil
}
