package application

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar date format used by forms, filters and storage.
	DateLayout = "2006-01-02"
	// TimeLayout is the time of day format used by forms and storage.
	TimeLayout = "15:04"
)

// Category groups events under a shared label.
type Category struct {
	ID          int64
	Name        string
	Description string
	EventCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is a scheduled happening. Date carries the calendar day at midnight
// UTC and Time carries the time of day on the zero date.
type Event struct {
	ID               int64
	Name             string
	Description      string
	Date             time.Time
	Time             time.Time
	Location         string
	CategoryID       *int64
	CategoryName     string
	ParticipantCount int
	// Participants is only populated by EventService.GetEvent.
	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DateString formats the event date as YYYY-MM-DD.
func (e Event) DateString() string {
	return e.Date.Format(DateLayout)
}

// TimeString formats the event time as HH:MM.
func (e Event) TimeString() string {
	return e.Time.Format(TimeLayout)
}

// Participant is a person attending zero or more events.
type Participant struct {
	ID         int64
	Name       string
	Email      string
	EventIDs   []int64
	EventCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CategoryInput carries the submitted category form.
type CategoryInput struct {
	Name        string
	Description string
}

// EventInput carries the submitted event form as raw strings so that invalid
// values can be echoed back to the user.
type EventInput struct {
	Name        string
	Description string
	Date        string
	Time        string
	Location    string
	CategoryID  string
}

// ParticipantInput carries the submitted participant form.
type ParticipantInput struct {
	Name     string
	Email    string
	EventIDs []string
}

// EventFilter narrows event queries issued by the services. Nil bounds and
// an empty Search disable a condition.
type EventFilter struct {
	Search     string
	CategoryID *int64
	On         *time.Time
	OnOrAfter  *time.Time
	OnOrBefore *time.Time
	Before     *time.Time
	Descending bool
}

// DashboardFilter selects which events the dashboard lists.
type DashboardFilter string

const (
	DashboardToday    DashboardFilter = "today"
	DashboardUpcoming DashboardFilter = "upcoming"
	DashboardPast     DashboardFilter = "past"
	DashboardAll      DashboardFilter = "all"
)

// ParseDashboardFilter maps the raw filter parameter onto a DashboardFilter.
// Unrecognised values, including the empty string, select today's events.
func ParseDashboardFilter(raw string) DashboardFilter {
	switch DashboardFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case DashboardUpcoming:
		return DashboardUpcoming
	case DashboardPast:
		return DashboardPast
	case DashboardAll:
		return DashboardAll
	default:
		return DashboardToday
	}
}

// Dashboard is the aggregated home page view.
type Dashboard struct {
	Filter            DashboardFilter
	Today             time.Time
	TotalParticipants int
	TotalEvents       int
	UpcomingCount     int
	PastCount         int
	TodayEvents       []Event
	Events            []Event
}

// EventQuery is the validated event list search. Raw holds the submitted
// values so the search form can be re-rendered as typed.
type EventQuery struct {
	Text       string
	CategoryID *int64
	StartDate  *time.Time
	EndDate    *time.Time
	Raw        EventQueryRaw
}

// EventQueryRaw holds the unparsed event list parameters.
type EventQueryRaw struct {
	Q         string
	Category  string
	StartDate string
	EndDate   string
}

// ParseEventQuery builds an EventQuery from URL parameters q, category,
// start_date and end_date. Malformed values are ignored.
func ParseEventQuery(values url.Values) EventQuery {
	raw := EventQueryRaw{
		Q:         values.Get("q"),
		Category:  values.Get("category"),
		StartDate: values.Get("start_date"),
		EndDate:   values.Get("end_date"),
	}

	query := EventQuery{Text: strings.TrimSpace(raw.Q), Raw: raw}
	if id, ok := parseID(raw.Category); ok {
		query.CategoryID = &id
	}
	if d, ok := parseDate(raw.StartDate); ok {
		query.StartDate = &d
	}
	if d, ok := parseDate(raw.EndDate); ok {
		query.EndDate = &d
	}
	return query
}

// Filter converts the query into the repository filter.
func (q EventQuery) Filter() EventFilter {
	return EventFilter{
		Search:     q.Text,
		CategoryID: q.CategoryID,
		OnOrAfter:  q.StartDate,
		OnOrBefore: q.EndDate,
	}
}

// EventList is the result of an event search.
type EventList struct {
	Events     []Event
	Categories []Category
	Query      EventQuery
}

// ParseID parses a positive decimal identifier.
func ParseID(raw string) (int64, bool) {
	return parseID(raw)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// parseTimeOfDay accepts HH:MM and HH:MM:SS; seconds are dropped.
func parseTimeOfDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(0, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DateOf truncates t to its calendar day in t's location and returns it at
// midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
