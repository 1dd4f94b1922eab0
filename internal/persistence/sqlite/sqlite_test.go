package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "eventmanager.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return storage
}

var testNow = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

func mustCreateCategory(t *testing.T, storage *Storage, name string) int64 {
	t.Helper()
	id, err := storage.CreateCategory(context.Background(), persistence.Category{
		Name:      name,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("CreateCategory(%q) failed: %v", name, err)
	}
	return id
}

func mustCreateEvent(t *testing.T, storage *Storage, event persistence.Event) int64 {
	t.Helper()
	if event.Description == "" {
		event.Description = "details"
	}
	if event.Location == "" {
		event.Location = "HQ"
	}
	if event.Time == "" {
		event.Time = "09:00"
	}
	event.CreatedAt = testNow
	event.UpdatedAt = testNow
	id, err := storage.CreateEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("CreateEvent(%q) failed: %v", event.Name, err)
	}
	return id
}

func mustCreateParticipant(t *testing.T, storage *Storage, name string, eventIDs ...int64) int64 {
	t.Helper()
	id, err := storage.CreateParticipant(context.Background(), persistence.Participant{
		Name:      name,
		Email:     name + "@example.com",
		EventIDs:  eventIDs,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("CreateParticipant(%q) failed: %v", name, err)
	}
	return id
}

func eventNames(events []persistence.Event) []string {
	names := make([]string, len(events))
	for i, event := range events {
		names[i] = event.Name
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStorageMigrateIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	id := mustCreateCategory(t, storage, "Workshop")

	fetched, err := storage.GetCategory(ctx, id)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if fetched.Name != "Workshop" || fetched.EventCount != 0 {
		t.Fatalf("unexpected category retrieved: %#v", fetched)
	}
	if !fetched.CreatedAt.Equal(testNow) {
		t.Fatalf("expected created_at %v, got %v", testNow, fetched.CreatedAt)
	}

	fetched.Name = "Workshops"
	fetched.Description = "Hands-on sessions"
	fetched.UpdatedAt = testNow.Add(time.Hour)
	if err := storage.UpdateCategory(ctx, fetched); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}

	mustCreateEvent(t, storage, persistence.Event{Name: "Go 101", Date: "2025-01-10", CategoryID: &id})
	mustCreateCategory(t, storage, "Conference")

	categories, err := storage.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Conference" || categories[1].Name != "Workshops" {
		t.Fatalf("expected categories ordered by name, got %#v", categories)
	}
	if categories[1].EventCount != 1 || categories[1].Description != "Hands-on sessions" {
		t.Fatalf("unexpected updated category: %#v", categories[1])
	}

	if err := storage.UpdateCategory(ctx, persistence.Category{ID: 999, Name: "Ghost", UpdatedAt: testNow}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing category, got %v", err)
	}
	if _, err := storage.GetCategory(ctx, 999); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := storage.CreateCategory(ctx, persistence.Category{Name: "  ", CreatedAt: testNow, UpdatedAt: testNow}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation for blank name, got %v", err)
	}
}

func TestCategoryDeleteKeepsEvents(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	categoryID := mustCreateCategory(t, storage, "Meetup")
	eventID := mustCreateEvent(t, storage, persistence.Event{Name: "Kickoff", Date: "2025-01-10", CategoryID: &categoryID})

	if err := storage.DeleteCategory(ctx, categoryID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	event, err := storage.GetEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("event should survive category deletion: %v", err)
	}
	if event.CategoryID != nil || event.CategoryName != "" {
		t.Fatalf("expected category to be cleared, got %#v", event)
	}

	if err := storage.DeleteCategory(ctx, categoryID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	categoryID := mustCreateCategory(t, storage, "Meetup")
	id := mustCreateEvent(t, storage, persistence.Event{
		Name:        "Kickoff",
		Description: "Project start",
		Date:        "2025-01-10",
		Time:        "09:00",
		Location:    "HQ",
		CategoryID:  &categoryID,
	})

	event, err := storage.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if event.Name != "Kickoff" || event.Date != "2025-01-10" || event.Time != "09:00" || event.Location != "HQ" {
		t.Fatalf("unexpected event retrieved: %#v", event)
	}
	if event.CategoryID == nil || *event.CategoryID != categoryID || event.CategoryName != "Meetup" {
		t.Fatalf("expected category to be resolved, got %#v", event)
	}

	event.Name = "Kickoff (moved)"
	event.Time = "10:30"
	event.CategoryID = nil
	event.UpdatedAt = testNow.Add(time.Hour)
	if err := storage.UpdateEvent(ctx, event); err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}

	updated, err := storage.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent after update failed: %v", err)
	}
	if updated.Name != "Kickoff (moved)" || updated.Time != "10:30" || updated.CategoryID != nil {
		t.Fatalf("unexpected updated event: %#v", updated)
	}

	if _, err := storage.GetEvent(ctx, 99999); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	missing := persistence.Event{ID: 99999, Name: "x", Date: "2025-01-01", Time: "09:00", Location: "x", UpdatedAt: testNow}
	if err := storage.UpdateEvent(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing event, got %v", err)
	}
}

func TestEventRepositoryRejectsUnknownCategory(t *testing.T) {
	storage := newTestStorage(t)

	unknown := int64(42)
	_, err := storage.CreateEvent(context.Background(), persistence.Event{
		Name:       "Orphan",
		Date:       "2025-01-10",
		Time:       "09:00",
		Location:   "HQ",
		CategoryID: &unknown,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	})
	if !errors.Is(err, persistence.ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestEventRepositoryListEvents(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	meetup := mustCreateCategory(t, storage, "Meetup")
	mustCreateEvent(t, storage, persistence.Event{Name: "New Year Party", Date: "2024-12-31", Time: "20:00", Location: "Rooftop"})
	mustCreateEvent(t, storage, persistence.Event{Name: "Kickoff", Date: "2025-01-10", Time: "09:00", Location: "HQ", CategoryID: &meetup})
	mustCreateEvent(t, storage, persistence.Event{Name: "Standup", Date: "2025-01-10", Time: "08:30", Location: "Zoom"})
	mustCreateEvent(t, storage, persistence.Event{Name: "Retro", Date: "2025-01-31", Time: "16:00", Location: "hq annex", CategoryID: &meetup})
	mustCreateEvent(t, storage, persistence.Event{Name: "Planning", Date: "2025-02-01", Time: "09:00", Location: "HQ"})
	mustCreateEvent(t, storage, persistence.Event{Name: "Événement", Date: "2025-03-01", Time: "10:00", Location: "Zürich"})

	tests := []struct {
		name   string
		filter persistence.EventFilter
		want   []string
	}{
		{
			name: "all chronological",
			want: []string{"New Year Party", "Standup", "Kickoff", "Retro", "Planning", "Événement"},
		},
		{
			name:   "reverse chronological",
			filter: persistence.EventFilter{Order: persistence.OrderReverseChronological},
			want:   []string{"Événement", "Planning", "Retro", "Kickoff", "Standup", "New Year Party"},
		},
		{
			name:   "inclusive date range",
			filter: persistence.EventFilter{OnOrAfter: "2025-01-01", OnOrBefore: "2025-01-31"},
			want:   []string{"Standup", "Kickoff", "Retro"},
		},
		{
			name:   "search matches name or location case-insensitively",
			filter: persistence.EventFilter{Search: "HQ"},
			want:   []string{"Kickoff", "Retro", "Planning"},
		},
		{
			name:   "search matches stored non-ASCII name exactly",
			filter: persistence.EventFilter{Search: "Événement"},
			want:   []string{"Événement"},
		},
		{
			name:   "search folds non-ASCII case",
			filter: persistence.EventFilter{Search: "ÉVÉNEMENT"},
			want:   []string{"Événement"},
		},
		{
			name:   "search folds non-ASCII location",
			filter: persistence.EventFilter{Search: "ZÜRICH"},
			want:   []string{"Événement"},
		},
		{
			name:   "search treats wildcards literally",
			filter: persistence.EventFilter{Search: "%"},
			want:   []string{},
		},
		{
			name:   "category and search combined",
			filter: persistence.EventFilter{CategoryID: &meetup, Search: "retro"},
			want:   []string{"Retro"},
		},
		{
			name:   "single day",
			filter: persistence.EventFilter{On: "2025-01-10"},
			want:   []string{"Standup", "Kickoff"},
		},
		{
			name:   "before is exclusive",
			filter: persistence.EventFilter{Before: "2025-01-10"},
			want:   []string{"New Year Party"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := storage.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			if got := eventNames(events); !equalStrings(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}

			count, err := storage.CountEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountEvents failed: %v", err)
			}
			if count != len(tt.want) {
				t.Fatalf("expected count %d, got %d", len(tt.want), count)
			}
		})
	}
}

func TestParticipantCountsMatchMemberships(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	kickoff := mustCreateEvent(t, storage, persistence.Event{Name: "Kickoff", Date: "2025-01-10"})
	retro := mustCreateEvent(t, storage, persistence.Event{Name: "Retro", Date: "2025-01-31"})

	alice := mustCreateParticipant(t, storage, "alice", kickoff, retro)
	mustCreateParticipant(t, storage, "bob", kickoff)

	event, err := storage.GetEvent(ctx, kickoff)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if event.ParticipantCount != 2 {
		t.Fatalf("expected 2 participants, got %d", event.ParticipantCount)
	}

	attendees, err := storage.ListEventParticipants(ctx, kickoff)
	if err != nil {
		t.Fatalf("ListEventParticipants failed: %v", err)
	}
	if len(attendees) != 2 || attendees[0].Name != "alice" || attendees[1].Name != "bob" {
		t.Fatalf("unexpected attendees: %#v", attendees)
	}

	participant, err := storage.GetParticipant(ctx, alice)
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if participant.EventCount != 2 || len(participant.EventIDs) != 2 || participant.EventIDs[0] != kickoff {
		t.Fatalf("unexpected participant: %#v", participant)
	}

	participant.EventIDs = []int64{retro}
	participant.UpdatedAt = testNow.Add(time.Minute)
	if err := storage.UpdateParticipant(ctx, participant); err != nil {
		t.Fatalf("UpdateParticipant failed: %v", err)
	}

	events, err := storage.ListEvents(ctx, persistence.EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	counts := map[string]int{}
	for _, e := range events {
		counts[e.Name] = e.ParticipantCount
	}
	if counts["Kickoff"] != 1 || counts["Retro"] != 1 {
		t.Fatalf("unexpected participant counts after update: %v", counts)
	}

	total, err := storage.CountParticipants(ctx)
	if err != nil {
		t.Fatalf("CountParticipants failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 participants, got %d", total)
	}
}

func TestDeletesCleanMemberships(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	kickoff := mustCreateEvent(t, storage, persistence.Event{Name: "Kickoff", Date: "2025-01-10"})
	retro := mustCreateEvent(t, storage, persistence.Event{Name: "Retro", Date: "2025-01-31"})
	alice := mustCreateParticipant(t, storage, "alice", kickoff, retro)
	bob := mustCreateParticipant(t, storage, "bob", kickoff)

	if err := storage.DeleteEvent(ctx, kickoff); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	participant, err := storage.GetParticipant(ctx, bob)
	if err != nil {
		t.Fatalf("participant should survive event deletion: %v", err)
	}
	if participant.EventCount != 0 || len(participant.EventIDs) != 0 {
		t.Fatalf("expected no memberships, got %#v", participant)
	}

	if err := storage.DeleteParticipant(ctx, alice); err != nil {
		t.Fatalf("DeleteParticipant failed: %v", err)
	}
	event, err := storage.GetEvent(ctx, retro)
	if err != nil {
		t.Fatalf("event should survive participant deletion: %v", err)
	}
	if event.ParticipantCount != 0 {
		t.Fatalf("expected no participants, got %d", event.ParticipantCount)
	}

	if err := storage.DeleteEvent(ctx, kickoff); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := storage.DeleteParticipant(ctx, alice); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantRejectsUnknownEvent(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	_, err := storage.CreateParticipant(ctx, persistence.Participant{
		Name:      "carol",
		Email:     "carol@example.com",
		EventIDs:  []int64{777},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	})
	if !errors.Is(err, persistence.ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}

	total, err := storage.CountParticipants(ctx)
	if err != nil {
		t.Fatalf("CountParticipants failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected rollback to leave no participants, got %d", total)
	}
}

func TestMissingEventIDs(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	kickoff := mustCreateEvent(t, storage, persistence.Event{Name: "Kickoff", Date: "2025-01-10"})

	missing, err := storage.MissingEventIDs(ctx, []int64{kickoff, 5, 5, 6})
	if err != nil {
		t.Fatalf("MissingEventIDs failed: %v", err)
	}
	if len(missing) != 2 || missing[0] != 5 || missing[1] != 6 {
		t.Fatalf("expected [5 6], got %v", missing)
	}

	missing, err = storage.MissingEventIDs(ctx, nil)
	if err != nil || missing != nil {
		t.Fatalf("expected nil result for no ids, got %v, %v", missing, err)
	}
}
