package persistence

import "context"

// CategoryRepository exposes CRUD operations for categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) (int64, error)
	UpdateCategory(ctx context.Context, category Category) error
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// EventOrder selects the sort order of event listings.
type EventOrder int

const (
	// OrderChronological sorts by date, then time, then id, ascending.
	OrderChronological EventOrder = iota
	// OrderReverseChronological sorts by date, then time, then id, descending.
	OrderReverseChronological
)

// EventFilter narrows event queries. Zero values disable a condition and all
// set conditions are combined with AND. Date bounds use the YYYY-MM-DD layout.
type EventFilter struct {
	// Search matches case-insensitively against name or location.
	Search     string
	CategoryID *int64
	// On restricts results to a single date.
	On string
	// OnOrAfter is an inclusive lower bound.
	OnOrAfter string
	// OnOrBefore is an inclusive upper bound.
	OnOrBefore string
	// Before is an exclusive upper bound.
	Before string
	Order  EventOrder
}

// EventRepository stores events and their participant associations.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (int64, error)
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id int64) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	CountEvents(ctx context.Context, filter EventFilter) (int, error)
	ListEventParticipants(ctx context.Context, eventID int64) ([]Participant, error)
	MissingEventIDs(ctx context.Context, ids []int64) ([]int64, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// ParticipantRepository stores participants and their event memberships.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) (int64, error)
	UpdateParticipant(ctx context.Context, participant Participant) error
	GetParticipant(ctx context.Context, id int64) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	CountParticipants(ctx context.Context) (int, error)
	DeleteParticipant(ctx context.Context, id int64) error
}
