package migration

import (
	"context"
	"time"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version     string // numeric version, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string // hex encoded SHA-256 of SQL
}

// AppliedMigration is a row of the schema_migrations table.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the migration state of a database.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// Source lists the migrations known to the application.
type Source interface {
	ScanMigrations() ([]Migration, error)
}

// Applier executes migrations and tracks which versions have been applied.
type Applier interface {
	InitializeVersionTable(ctx context.Context) error
	// ExecuteMigration runs the migration and records it in one transaction.
	ExecuteMigration(ctx context.Context, migration Migration) error
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}
