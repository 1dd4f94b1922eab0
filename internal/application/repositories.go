package application

import "context"

// CategoryRepository captures the persistence operations needed for categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	UpdateCategory(ctx context.Context, category Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
}

// CategoryCatalog resolves category references made by events.
type CategoryCatalog interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// EventReader lists and counts events.
type EventReader interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	CountEvents(ctx context.Context, filter EventFilter) (int, error)
}

// EventRepository captures the persistence operations needed for events.
type EventRepository interface {
	EventReader
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListEventParticipants(ctx context.Context, eventID int64) ([]Participant, error)
}

// EventDirectory resolves event references made by participants.
type EventDirectory interface {
	MissingEventIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// ParticipantCounter reports the number of stored participants.
type ParticipantCounter interface {
	CountParticipants(ctx context.Context) (int, error)
}

// ParticipantRepository captures the persistence operations needed for participants.
type ParticipantRepository interface {
	ParticipantCounter
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id int64) (Participant, error)
	UpdateParticipant(ctx context.Context, participant Participant) (Participant, error)
	DeleteParticipant(ctx context.Context, id int64) error
	ListParticipants(ctx context.Context) ([]Participant, error)
}
