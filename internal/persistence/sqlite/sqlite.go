package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/event-manager/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite backed repositories behind a single handle.
type Storage struct {
	*CategoryRepository
	*EventRepository
	*ParticipantRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the database file at dsn using the server defaults.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(dsn), nil)
}

// OpenWithConfig connects using an explicit configuration.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		CategoryRepository:    NewCategoryRepository(pool),
		EventRepository:       NewEventRepository(pool),
		ParticipantRepository: NewParticipantRepository(pool),
		pool:                  pool,
		logger:                logger,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	if err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
