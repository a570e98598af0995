// Package dbtest starts a throwaway PostgreSQL container for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/padraicbc/usersapi/config"
	"github.com/padraicbc/usersapi/db"
)

// Database is a running container together with the pool connected to it.
type Database struct {
	DB        *bun.DB
	container *postgres.PostgresContainer
}

// Start runs a PostgreSQL container, opens a pool of maxSize connections
// against it and creates the schema.
func Start(ctx context.Context, maxSize int) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("getting connection string: %w", err)
	}

	cfg := &config.Config{PG: config.PGConfig{URL: dsn, MaxSize: maxSize}}
	bdb, err := db.Setup(ctx, cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	if err := db.CreateTables(ctx, bdb); err != nil {
		_ = bdb.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Database{DB: bdb, container: container}, nil
}

// Truncate removes every row from the users table.
func (d *Database) Truncate(ctx context.Context) error {
	_, err := d.DB.ExecContext(ctx, "TRUNCATE users")
	return err
}

// Close closes the pool and terminates the container.
func (d *Database) Close(ctx context.Context) error {
	_ = d.DB.Close()
	return d.container.Terminate(ctx)
}
