// Package migration applies versioned schema changes to SQLite databases.
//
// Migrations are plain SQL files named {version}_{description}.sql (for
// example "001_initial_schema.sql") read from an fs.FS, usually one embedded
// into the binary. Each file runs inside its own transaction and successful
// versions are recorded in the schema_migrations table so they are never
// applied twice.
//
// Example usage:
//
//	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
