package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workbooster/internal/config"
	"workbooster/internal/logger"
)

func dsn(user, password, host, port, database string) string {
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		url.UserPassword(user, password).String(),
		host,
		port,
		url.PathEscape(database),
	)
}

func requireSettings(cfg *config.Config, user, password string) error {
	switch {
	case cfg.DBHost == "":
		return fmt.Errorf("DB_HOST environment variable is required")
	case cfg.DBPort == "":
		return fmt.Errorf("DB_PORT environment variable is required")
	case user == "":
		return fmt.Errorf("DB_USERNAME environment variable is required")
	case password == "":
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	case cfg.DBName == "":
		return fmt.Errorf("DB_DATABASE environment variable is required")
	}
	return nil
}

// EnsureDatabaseExists connects to the postgres maintenance database with the admin
// credentials and creates the configured database if it is missing.
func EnsureDatabaseExists(ctx context.Context, cfg *config.Config) error {
	if err := requireSettings(cfg, cfg.DBAdminUser, cfg.DBAdminPassword); err != nil {
		return err
	}
	log := logger.Default()

	conn, err := pgx.Connect(ctx, dsn(cfg.DBAdminUser, cfg.DBAdminPassword, cfg.DBHost, cfg.DBPort, "postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Info("database already exists", "database", cfg.DBName)
		return nil
	}

	// CREATE DATABASE cannot run inside a transaction
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.DBName}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Info("database created", "database", cfg.DBName)
	return nil
}

func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := requireSettings(cfg, cfg.DBUser, cfg.DBPassword); err != nil {
		return nil, err
	}

	logger.Default().Info("connecting to database",
		"dsn", fmt.Sprintf("postgres://%s:***@%s:%s/%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName))

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	maxConns := int32(cfg.DBMaxConns)
	if maxConns <= 0 {
		maxConns = 25
	}
	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = min(5, maxConns)
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	return Open(ctx, poolConfig)
}

// Open creates the pool and pings it.
func Open(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Default().Info("database connection pool established")
	return pool, nil
}
