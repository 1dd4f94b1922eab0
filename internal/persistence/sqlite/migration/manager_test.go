package migration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *ConnectionManager {
	t.Helper()
	return NewConnectionManager(TempFileTestSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db")))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScannerOrdersByNumericVersion(t *testing.T) {
	files := fstest.MapFS{
		"migrations/10_add_index.sql":       {Data: []byte("CREATE INDEX idx ON things (name);")},
		"migrations/2_create_things.sql":    {Data: []byte("-- Description: things table\nCREATE TABLE things (name TEXT);")},
		"migrations/README.md":              {Data: []byte("ignored")},
		"migrations/001_initial_schema.sql": {Data: []byte("CREATE TABLE base (id INTEGER);")},
	}

	migrations, err := NewScanner(files, "migrations").ScanMigrations()
	if err != nil {
		t.Fatalf("ScanMigrations failed: %v", err)
	}

	want := []string{"001", "2", "10"}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(migrations))
	}
	for i, version := range want {
		if migrations[i].Version != version {
			t.Errorf("position %d: expected version %s, got %s", i, version, migrations[i].Version)
		}
	}
	if migrations[1].Description != "things table" {
		t.Errorf("expected description from comment, got %q", migrations[1].Description)
	}
	if migrations[2].Description != "add index" {
		t.Errorf("expected description from filename, got %q", migrations[2].Description)
	}
}

func TestScannerRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  error
	}{
		{
			name: "bad filename",
			files: fstest.MapFS{
				"migrations/initial.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
			},
			want: ErrInvalidMigrationFile,
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"migrations/1_a.sql":  {Data: []byte("CREATE TABLE a (id INTEGER);")},
				"migrations/01_b.sql": {Data: []byte("CREATE TABLE b (id INTEGER);")},
			},
			want: ErrDuplicateVersion,
		},
		{
			name: "comments only",
			files: fstest.MapFS{
				"migrations/1_empty.sql": {Data: []byte("-- nothing here\n")},
			},
			want: ErrInvalidMigrationFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.files, "migrations").ScanMigrations()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestManagerRunAppliesPendingOnce(t *testing.T) {
	ctx := context.Background()
	db, err := openTestDB(t).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	files := fstest.MapFS{
		"migrations/001_things.sql": {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT);")},
	}
	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), discardLogger())

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}

	files["migrations/002_more.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE things ADD COLUMN note TEXT;\nCREATE INDEX idx_things_name ON things (name);")}
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run with new migration failed: %v", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || len(status.Applied) != 2 || len(status.Pending) != 0 {
		t.Fatalf("unexpected status: %#v", status)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO things (name, note) VALUES ('a', 'b')`); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}
}

func TestManagerRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db, err := openTestDB(t).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	files := fstest.MapFS{
		"migrations/001_broken.sql": {Data: []byte("CREATE TABLE partial (id INTEGER);\nINSERT INTO missing_table VALUES (1);")},
	}
	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), discardLogger())

	err = manager.Run(ctx)
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'partial'`).Scan(&name)
	if err == nil {
		t.Fatal("expected partial table to be rolled back")
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(status.Applied) != 0 || len(status.Pending) != 1 {
		t.Fatalf("unexpected status after failure: %#v", status)
	}
}

func TestManagerDetectsChangedMigration(t *testing.T) {
	ctx := context.Background()
	db, err := openTestDB(t).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	files := fstest.MapFS{
		"migrations/001_things.sql": {Data: []byte("CREATE TABLE things (id INTEGER);")},
	}
	manager := NewManager(NewScanner(files, "migrations"), NewSQLiteExecutor(db), discardLogger())
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	files["migrations/001_things.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE things (id INTEGER, name TEXT);")}
	if err := manager.Run(ctx); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestDataSourceNameIncludesPragmas(t *testing.T) {
	cm := NewConnectionManager(DefaultSQLiteConfig("data/app.db"))
	dsn := cm.DataSourceName()

	for _, fragment := range []string{"data/app.db?", "foreign_keys%281%29", "journal_mode%28WAL%29", "busy_timeout%285000%29"} {
		if !strings.Contains(dsn, fragment) {
			t.Errorf("expected DSN %q to contain %q", dsn, fragment)
		}
	}

	invalid := NewConnectionManager(SQLiteConfig{DSN: "x.db", JournalMode: "BOGUS"})
	if err := invalid.ValidateConfig(); err == nil {
		t.Fatal("expected invalid journal mode to be rejected")
	}
}
