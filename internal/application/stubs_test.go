package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

// memoryStore is a stub backing every repository interface of the package.
type memoryStore struct {
	nextID       int64
	categories   map[int64]Category
	events       map[int64]Event
	participants map[int64]Participant

	err error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		categories:   map[int64]Category{},
		events:       map[int64]Event{},
		participants: map[int64]Participant{},
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) CreateCategory(ctx context.Context, category Category) (Category, error) {
	if m.err != nil {
		return Category{}, m.err
	}
	category.ID = m.id()
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	if m.err != nil {
		return Category{}, m.err
	}
	category, ok := m.categories[id]
	if !ok {
		return Category{}, persistence.ErrNotFound
	}
	for _, event := range m.events {
		if event.CategoryID != nil && *event.CategoryID == id {
			category.EventCount++
		}
	}
	return category, nil
}

func (m *memoryStore) UpdateCategory(ctx context.Context, category Category) (Category, error) {
	if m.err != nil {
		return Category{}, m.err
	}
	if _, ok := m.categories[category.ID]; !ok {
		return Category{}, persistence.ErrNotFound
	}
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryStore) DeleteCategory(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.categories[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.categories, id)
	for eventID, event := range m.events {
		if event.CategoryID != nil && *event.CategoryID == id {
			event.CategoryID = nil
			m.events[eventID] = event
		}
	}
	return nil
}

func (m *memoryStore) ListCategories(ctx context.Context) ([]Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Category{}
	for id := range m.categories {
		category, _ := m.GetCategory(ctx, id)
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) CategoryExists(ctx context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.categories[id]
	return ok, nil
}

func (m *memoryStore) participantCount(eventID int64) int {
	count := 0
	for _, participant := range m.participants {
		for _, id := range participant.EventIDs {
			if id == eventID {
				count++
			}
		}
	}
	return count
}

func (m *memoryStore) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	event.ID = m.id()
	m.events[event.ID] = event
	return event, nil
}

func (m *memoryStore) GetEvent(ctx context.Context, id int64) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	event, ok := m.events[id]
	if !ok {
		return Event{}, persistence.ErrNotFound
	}
	event.ParticipantCount = m.participantCount(id)
	if event.CategoryID != nil {
		event.CategoryName = m.categories[*event.CategoryID].Name
	}
	return event, nil
}

func (m *memoryStore) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	if m.err != nil {
		return Event{}, m.err
	}
	if _, ok := m.events[event.ID]; !ok {
		return Event{}, persistence.ErrNotFound
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *memoryStore) DeleteEvent(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.events, id)
	for pid, participant := range m.participants {
		kept := participant.EventIDs[:0:0]
		for _, eventID := range participant.EventIDs {
			if eventID != id {
				kept = append(kept, eventID)
			}
		}
		participant.EventIDs = kept
		m.participants[pid] = participant
	}
	return nil
}

func (m *memoryStore) matches(event Event, filter EventFilter) bool {
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(event.Name), needle) && !strings.Contains(strings.ToLower(event.Location), needle) {
			return false
		}
	}
	if filter.CategoryID != nil && (event.CategoryID == nil || *event.CategoryID != *filter.CategoryID) {
		return false
	}
	if filter.On != nil && !event.Date.Equal(*filter.On) {
		return false
	}
	if filter.OnOrAfter != nil && event.Date.Before(*filter.OnOrAfter) {
		return false
	}
	if filter.OnOrBefore != nil && event.Date.After(*filter.OnOrBefore) {
		return false
	}
	if filter.Before != nil && !event.Date.Before(*filter.Before) {
		return false
	}
	return true
}

func (m *memoryStore) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Event{}
	for id, event := range m.events {
		if !m.matches(event, filter) {
			continue
		}
		event, _ = m.GetEvent(ctx, id)
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		less := a.Date.Before(b.Date) ||
			(a.Date.Equal(b.Date) && a.Time.Before(b.Time)) ||
			(a.Date.Equal(b.Date) && a.Time.Equal(b.Time) && a.ID < b.ID)
		if filter.Descending {
			return !less && a.ID != b.ID
		}
		return less
	})
	return out, nil
}

func (m *memoryStore) CountEvents(ctx context.Context, filter EventFilter) (int, error) {
	events, err := m.ListEvents(ctx, filter)
	return len(events), err
}

func (m *memoryStore) ListEventParticipants(ctx context.Context, eventID int64) ([]Participant, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Participant{}
	for _, participant := range m.participants {
		for _, id := range participant.EventIDs {
			if id == eventID {
				out = append(out, participant)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) MissingEventIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := m.events[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (m *memoryStore) CreateParticipant(ctx context.Context, participant Participant) (Participant, error) {
	if m.err != nil {
		return Participant{}, m.err
	}
	participant.ID = m.id()
	participant.EventCount = len(participant.EventIDs)
	m.participants[participant.ID] = participant
	return participant, nil
}

func (m *memoryStore) GetParticipant(ctx context.Context, id int64) (Participant, error) {
	if m.err != nil {
		return Participant{}, m.err
	}
	participant, ok := m.participants[id]
	if !ok {
		return Participant{}, persistence.ErrNotFound
	}
	participant.EventCount = len(participant.EventIDs)
	return participant, nil
}

func (m *memoryStore) UpdateParticipant(ctx context.Context, participant Participant) (Participant, error) {
	if m.err != nil {
		return Participant{}, m.err
	}
	if _, ok := m.participants[participant.ID]; !ok {
		return Participant{}, persistence.ErrNotFound
	}
	participant.EventCount = len(participant.EventIDs)
	m.participants[participant.ID] = participant
	return participant, nil
}

func (m *memoryStore) DeleteParticipant(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.participants[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.participants, id)
	return nil
}

func (m *memoryStore) ListParticipants(ctx context.Context) ([]Participant, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []Participant{}
	for id := range m.participants {
		participant, _ := m.GetParticipant(ctx, id)
		out = append(out, participant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) CountParticipants(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.participants), nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustDate(value string) time.Time {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}

func mustClock(value string) time.Time {
	t, ok := parseTimeOfDay(value)
	if !ok {
		panic("invalid time " + value)
	}
	return t
}

func (m *memoryStore) seedEvent(name, date, clock string) int64 {
	event, _ := m.CreateEvent(context.Background(), Event{
		Name:     name,
		Date:     mustDate(date),
		Time:     mustClock(clock),
		Location: "HQ",
	})
	return event.ID
}
