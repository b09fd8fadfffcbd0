// Package postgresql implements the workflow store on PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nexuslab/vigil/pkg/persistence/sqlbase"

	_ "github.com/lib/pq"
)

// Store implements persistence.Store using a PostgreSQL database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens the database, pings it and runs schema migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run workflow store migrations: %w", err)
	}

	store := &Store{
		db:     database,
		logger: logger.With("component", "postgres_store"),
	}

	logger.InfoContext(ctx, "PostgreSQL workflow store initialized")

	return store, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
