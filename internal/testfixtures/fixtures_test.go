package testfixtures

import (
	"context"
	"testing"
)

func TestFixtureForms(t *testing.T) {
	event := NewEventFixture(WithEventName("Kickoff"), WithEventSchedule("2024-05-11", "09:30"), WithEventCategory(3))
	form := event.Form()
	if form.Get("name") != "Kickoff" || form.Get("date") != "2024-05-11" || form.Get("time") != "09:30" || form.Get("category") != "3" {
		t.Fatalf("unexpected event form: %v", form)
	}

	participant := NewParticipantFixture(WithParticipantEvents(1, 2))
	if got := participant.Form()["events"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("unexpected participant events: %v", got)
	}

	a, b := NewCategoryFixture(), NewCategoryFixture()
	if a.Name == b.Name {
		t.Fatalf("expected distinct fixture names, got %q twice", a.Name)
	}
}

func TestSQLiteHarnessSeeds(t *testing.T) {
	harness := NewSQLiteHarness(t)

	categoryID := harness.SeedCategory(t, NewCategoryFixture())
	eventID := harness.SeedEvent(t, NewEventFixture(WithEventCategory(categoryID)))
	harness.SeedParticipant(t, NewParticipantFixture(WithParticipantEvents(eventID)))

	count, err := harness.Participants.CountParticipants(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("expected one participant, got %d (%v)", count, err)
	}
}
