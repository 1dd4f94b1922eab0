package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/event-manager/internal/persistence"
	"github.com/example/event-manager/internal/persistence/sqlite"
	"github.com/example/event-manager/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style tests.
type SQLiteHarness struct {
	Storage      *sqlite.Storage
	Categories   persistence.CategoryRepository
	Events       persistence.EventRepository
	Participants persistence.ParticipantRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "eventmanager.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:      storage,
		Categories:   storage,
		Events:       storage,
		Participants: storage,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedCategory stores the fixture and returns its id.
func (h *SQLiteHarness) SeedCategory(tb testing.TB, fixture CategoryFixture) int64 {
	tb.Helper()
	id, err := h.Categories.CreateCategory(context.Background(), fixture.Persistence())
	if err != nil {
		tb.Fatalf("failed to seed category %q: %v", fixture.Name, err)
	}
	return id
}

// SeedEvent stores the fixture and returns its id.
func (h *SQLiteHarness) SeedEvent(tb testing.TB, fixture EventFixture) int64 {
	tb.Helper()
	id, err := h.Events.CreateEvent(context.Background(), fixture.Persistence())
	if err != nil {
		tb.Fatalf("failed to seed event %q: %v", fixture.Name, err)
	}
	return id
}

// SeedParticipant stores the fixture and returns its id.
func (h *SQLiteHarness) SeedParticipant(tb testing.TB, fixture ParticipantFixture) int64 {
	tb.Helper()
	id, err := h.Participants.CreateParticipant(context.Background(), fixture.Persistence())
	if err != nil {
		tb.Fatalf("failed to seed participant %q: %v", fixture.Name, err)
	}
	return id
}
