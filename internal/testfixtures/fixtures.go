package testfixtures

import (
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

var (
	categoryCounter    uint64
	eventCounter       uint64
	participantCounter uint64
)

var referenceTime = time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Category fixtures ---------------------------

// CategoryFixture represents a deterministic category record.
type CategoryFixture struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// CategoryOption configures the generated category fixture.
type CategoryOption func(*CategoryFixture)

// NewCategoryFixture returns a deterministic category fixture with optional overrides.
func NewCategoryFixture(opts ...CategoryOption) CategoryFixture {
	idx := atomic.AddUint64(&categoryCounter, 1)
	fixture := CategoryFixture{
		Name:        fmt.Sprintf("Category %03d", idx),
		Description: fmt.Sprintf("Fixture category %03d", idx),
		CreatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithCategoryName(name string) CategoryOption {
	return func(f *CategoryFixture) { f.Name = name }
}

func WithCategoryDescription(description string) CategoryOption {
	return func(f *CategoryFixture) { f.Description = description }
}

// Persistence converts the fixture into a storable category.
func (f CategoryFixture) Persistence() persistence.Category {
	return persistence.Category{
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
	}
}

// Form renders the fixture as a submitted category form.
func (f CategoryFixture) Form() url.Values {
	return url.Values{"name": {f.Name}, "description": {f.Description}}
}

// ---------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event record. Date and Time use the
// storage layouts.
type EventFixture struct {
	Name        string
	Description string
	Date        string
	Time        string
	Location    string
	CategoryID  *int64
	CreatedAt   time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns an event on the reference date with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	fixture := EventFixture{
		Name:        fmt.Sprintf("Event %03d", idx),
		Description: fmt.Sprintf("Fixture event %03d", idx),
		Date:        referenceTime.Format("2006-01-02"),
		Time:        "10:00",
		Location:    "HQ",
		CreatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithEventName(name string) EventOption {
	return func(f *EventFixture) { f.Name = name }
}

func WithEventSchedule(date, clock string) EventOption {
	return func(f *EventFixture) {
		f.Date = date
		f.Time = clock
	}
}

func WithEventLocation(location string) EventOption {
	return func(f *EventFixture) { f.Location = location }
}

func WithEventCategory(id int64) EventOption {
	return func(f *EventFixture) { f.CategoryID = &id }
}

// Persistence converts the fixture into a storable event.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		Name:        f.Name,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Location:    f.Location,
		CategoryID:  f.CategoryID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
	}
}

// Form renders the fixture as a submitted event form.
func (f EventFixture) Form() url.Values {
	form := url.Values{
		"name":        {f.Name},
		"description": {f.Description},
		"date":        {f.Date},
		"time":        {f.Time},
		"location":    {f.Location},
		"category":    {""},
	}
	if f.CategoryID != nil {
		form.Set("category", strconv.FormatInt(*f.CategoryID, 10))
	}
	return form
}

// ------------------------- Participant fixtures --------------------------

// ParticipantFixture represents a deterministic participant record.
type ParticipantFixture struct {
	Name      string
	Email     string
	EventIDs  []int64
	CreatedAt time.Time
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a deterministic participant with optional overrides.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	fixture := ParticipantFixture{
		Name:      fmt.Sprintf("Participant %03d", idx),
		Email:     fmt.Sprintf("participant-%03d@example.com", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithParticipantName(name string) ParticipantOption {
	return func(f *ParticipantFixture) { f.Name = name }
}

func WithParticipantEmail(email string) ParticipantOption {
	return func(f *ParticipantFixture) { f.Email = email }
}

func WithParticipantEvents(ids ...int64) ParticipantOption {
	return func(f *ParticipantFixture) { f.EventIDs = append([]int64(nil), ids...) }
}

// Persistence converts the fixture into a storable participant.
func (f ParticipantFixture) Persistence() persistence.Participant {
	return persistence.Participant{
		Name:      f.Name,
		Email:     f.Email,
		EventIDs:  append([]int64(nil), f.EventIDs...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.CreatedAt,
	}
}

// Form renders the fixture as a submitted participant form.
func (f ParticipantFixture) Form() url.Values {
	form := url.Values{"name": {f.Name}, "email": {f.Email}}
	for _, id := range f.EventIDs {
		form.Add("events", strconv.FormatInt(id, 10))
	}
	return form
}
