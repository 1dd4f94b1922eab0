package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DashboardService aggregates the counts and event lists shown on the home page.
type DashboardService struct {
	events       EventReader
	participants ParticipantCounter
	now          func() time.Time
	logger       *slog.Logger
}

// NewDashboardService constructs a dashboard service with the provided dependencies.
func NewDashboardService(events EventReader, participants ParticipantCounter, now func() time.Time) *DashboardService {
	return NewDashboardServiceWithLogger(events, participants, now, nil)
}

// NewDashboardServiceWithLogger constructs a dashboard service with a specified logger.
func NewDashboardServiceWithLogger(events EventReader, participants ParticipantCounter, now func() time.Time, logger *slog.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{events: events, participants: participants, now: now, logger: defaultLogger(logger)}
}

// Dashboard builds the dashboard for filter. Today's events are always
// included; Events depends on the filter:
//
//	upcoming  date >= today, ascending
//	past      date <  today, descending
//	all       every event, descending
//	today     date == today, ascending
func (s *DashboardService) Dashboard(ctx context.Context, filter DashboardFilter) (dashboard Dashboard, err error) {
	if s == nil || s.events == nil || s.participants == nil {
		err = fmt.Errorf("dashboard dependencies not configured")
		return
	}

	logger := serviceLogger(ctx, s.logger, "DashboardService", "Dashboard", "filter", string(filter))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build dashboard", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	today := DateOf(s.now())
	filter = ParseDashboardFilter(string(filter))
	dashboard = Dashboard{Filter: filter, Today: today}

	if dashboard.TotalParticipants, err = s.participants.CountParticipants(ctx); err != nil {
		return
	}
	if dashboard.TotalEvents, err = s.events.CountEvents(ctx, EventFilter{}); err != nil {
		return
	}
	if dashboard.UpcomingCount, err = s.events.CountEvents(ctx, EventFilter{OnOrAfter: &today}); err != nil {
		return
	}
	if dashboard.PastCount, err = s.events.CountEvents(ctx, EventFilter{Before: &today}); err != nil {
		return
	}
	if dashboard.TodayEvents, err = s.events.ListEvents(ctx, EventFilter{On: &today}); err != nil {
		return
	}

	switch filter {
	case DashboardUpcoming:
		dashboard.Events, err = s.events.ListEvents(ctx, EventFilter{OnOrAfter: &today})
	case DashboardPast:
		dashboard.Events, err = s.events.ListEvents(ctx, EventFilter{Before: &today, Descending: true})
	case DashboardAll:
		dashboard.Events, err = s.events.ListEvents(ctx, EventFilter{Descending: true})
	default:
		dashboard.Events = dashboard.TodayEvents
	}
	if err != nil {
		err = mapRepoError(err)
	}
	return
}
