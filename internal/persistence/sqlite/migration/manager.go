package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager applies pending migrations in version order.
type Manager struct {
	source  Source
	applier Applier
	logger  *slog.Logger
}

// NewManager creates a Manager. A nil logger falls back to slog.Default.
func NewManager(source Source, applier Applier, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{source: source, applier: applier, logger: logger.With("component", "migration")}
}

// Run initialises version tracking and applies every pending migration.
// It stops at the first failing migration; earlier migrations stay applied.
func (m *Manager) Run(ctx context.Context) error {
	started := time.Now()

	if err := m.applier.InitializeVersionTable(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to initialize schema_migrations table", "error", err)
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "current schema version",
		"version", displayVersion(status.CurrentVersion),
		"applied_count", len(status.Applied),
		"pending_count", len(status.Pending),
	)

	if len(status.Pending) == 0 {
		m.logger.InfoContext(ctx, "database schema is up to date")
		return nil
	}

	for i, migration := range status.Pending {
		logger := m.logger.With(
			"version", migration.Version,
			"description", migration.Description,
			"position", fmt.Sprintf("%d/%d", i+1, len(status.Pending)),
		)
		logger.InfoContext(ctx, "applying migration")

		migrationStart := time.Now()
		if err := m.applier.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return fmt.Errorf("migration %s failed: %w", migration.Version, err)
		}
		logger.InfoContext(ctx, "migration applied", "duration", time.Since(migrationStart))
	}

	m.logger.InfoContext(ctx, "database migrations completed",
		"applied_count", len(status.Pending),
		"duration", time.Since(started),
	)
	return nil
}

// Status compares the known migrations with the applied versions. An applied
// migration whose file content changed is reported as ErrChecksumMismatch.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	migrations, err := m.source.ScanMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}

	applied, err := m.applier.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	appliedByVersion := make(map[string]AppliedMigration, len(applied))
	for _, record := range applied {
		appliedByVersion[record.Version] = record
	}

	status := &Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}

	for _, migration := range migrations {
		record, ok := appliedByVersion[migration.Version]
		if !ok {
			status.Pending = append(status.Pending, migration)
			continue
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return nil, NewMigrationError(migration.Version, migration.FilePath, "verify checksum", ErrChecksumMismatch)
		}
	}

	return status, nil
}

func displayVersion(version string) string {
	if version == "" {
		return "none"
	}
	return version
}
