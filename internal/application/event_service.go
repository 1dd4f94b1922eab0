package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

// EventService orchestrates searching, validation and persistence for events.
type EventService struct {
	events  EventRepository
	catalog CategoryCatalog
	now     func() time.Time
	logger  *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(events EventRepository, catalog CategoryCatalog, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, catalog, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventRepository, catalog CategoryCatalog, now func() time.Time, logger *slog.Logger) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, catalog: catalog, now: now, logger: defaultLogger(logger)}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// ListEvents returns the events matching query, ordered by date, time and id,
// together with every category for the filter control.
func (s *EventService) ListEvents(ctx context.Context, query EventQuery) (list EventList, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ListEvents")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	list.Query = query
	list.Events, err = s.events.ListEvents(ctx, query.Filter())
	if err != nil {
		err = mapRepoError(err)
		return
	}

	list.Categories, err = s.Categories(ctx)
	return
}

// Categories returns every category for populating event forms and filters.
func (s *EventService) Categories(ctx context.Context) ([]Category, error) {
	if s == nil || s.catalog == nil {
		return []Category{}, nil
	}
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return categories, nil
}

// GetEvent returns an event with its category and participants resolved.
func (s *EventService) GetEvent(ctx context.Context, id int64) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	defer func() {
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetEvent", "event_id", id).ErrorContext(ctx, "failed to load event", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	event, err = s.events.GetEvent(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	event.Participants, err = s.events.ListEventParticipants(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// CreateEvent validates input and persists a new event.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	var candidate Event
	candidate, err = s.validate(ctx, input)
	if err != nil {
		return
	}

	candidate.CreatedAt = s.now()
	candidate.UpdatedAt = candidate.CreatedAt

	event, err = s.events.CreateEvent(ctx, candidate)
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

// UpdateEvent validates input and overwrites an existing event. Participant
// membership is unchanged.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, input EventInput) (event Event, err error) {
	if s == nil || s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	var existing Event
	existing, err = s.events.GetEvent(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var candidate Event
	candidate, err = s.validate(ctx, input)
	if err != nil {
		return
	}

	updated := existing
	updated.Name = candidate.Name
	updated.Description = candidate.Description
	updated.Date = candidate.Date
	updated.Time = candidate.Time
	updated.Location = candidate.Location
	updated.CategoryID = candidate.CategoryID
	updated.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
	}
	return
}

// DeleteEvent removes an event and its participant memberships.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("event repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", id)
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

func (s *EventService) validate(ctx context.Context, input EventInput) (Event, error) {
	event, vErr := validateEventInput(input)

	if event.CategoryID != nil && s.catalog != nil {
		exists, err := s.catalog.CategoryExists(ctx, *event.CategoryID)
		if err != nil {
			return Event{}, mapRepoError(err)
		}
		if !exists {
			vErr.add("category", "select a valid category")
		}
	}

	if vErr.HasErrors() {
		return Event{}, vErr
	}
	return event, nil
}

func mapEventRepoError(err error) error {
	if errors.Is(err, persistence.ErrForeignKey) {
		vErr := &ValidationError{}
		vErr.add("category", "select a valid category")
		return vErr
	}
	return mapRepoError(err)
}
