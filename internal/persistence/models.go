package persistence

import "time"

// Category groups events under a shared label.
type Category struct {
	ID          int64
	Name        string
	Description string
	// EventCount is aggregated at query time and never stored.
	EventCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Event is a scheduled happening stored with a calendar date and a time of day.
//
// Date is stored as YYYY-MM-DD and Time as HH:MM so that lexical ordering
// matches chronological ordering.
type Event struct {
	ID          int64
	Name        string
	Description string
	Date        string
	Time        string
	Location    string
	CategoryID  *int64
	// CategoryName is resolved by joins on read and ignored on write.
	CategoryName string
	// ParticipantCount is aggregated at query time and never stored.
	ParticipantCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Participant is a person who can attend any number of events.
type Participant struct {
	ID       int64
	Name     string
	Email    string
	EventIDs []int64
	// EventCount is aggregated at query time and never stored.
	EventCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
