package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/event-manager/internal/application"
	"github.com/example/event-manager/internal/persistence"
)

type categoryRepositoryAdapter struct {
	repo persistence.CategoryRepository
}

func newCategoryRepositoryAdapter(repo persistence.CategoryRepository) *categoryRepositoryAdapter {
	return &categoryRepositoryAdapter{repo: repo}
}

func (a *categoryRepositoryAdapter) CreateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	id, err := a.repo.CreateCategory(ctx, toPersistenceCategory(category))
	if err != nil {
		return application.Category{}, err
	}
	return a.GetCategory(ctx, id)
}

func (a *categoryRepositoryAdapter) GetCategory(ctx context.Context, id int64) (application.Category, error) {
	stored, err := a.repo.GetCategory(ctx, id)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) UpdateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	if err := a.repo.UpdateCategory(ctx, toPersistenceCategory(category)); err != nil {
		return application.Category{}, err
	}
	return a.GetCategory(ctx, category.ID)
}

func (a *categoryRepositoryAdapter) DeleteCategory(ctx context.Context, id int64) error {
	return a.repo.DeleteCategory(ctx, id)
}

func (a *categoryRepositoryAdapter) ListCategories(ctx context.Context) ([]application.Category, error) {
	models, err := a.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categories := make([]application.Category, 0, len(models))
	for _, model := range models {
		categories = append(categories, toApplicationCategory(model))
	}
	return categories, nil
}

type categoryCatalogAdapter struct {
	*categoryRepositoryAdapter
}

func newCategoryCatalogAdapter(repo persistence.CategoryRepository) *categoryCatalogAdapter {
	return &categoryCatalogAdapter{categoryRepositoryAdapter: newCategoryRepositoryAdapter(repo)}
}

func (a *categoryCatalogAdapter) CategoryExists(ctx context.Context, id int64) (bool, error) {
	if _, err := a.repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// eventRepositoryAdapter also serves as the event directory for participants
// and the event reader for the dashboard.
type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	id, err := a.repo.CreateEvent(ctx, toPersistenceEvent(event))
	if err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, id)
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id int64) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored)
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	return a.GetEvent(ctx, event.ID)
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id int64) error {
	return a.repo.DeleteEvent(ctx, id)
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, filter application.EventFilter) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, toPersistenceFilter(filter))
	if err != nil {
		return nil, err
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		event, err := toApplicationEvent(model)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (a *eventRepositoryAdapter) CountEvents(ctx context.Context, filter application.EventFilter) (int, error) {
	return a.repo.CountEvents(ctx, toPersistenceFilter(filter))
}

func (a *eventRepositoryAdapter) ListEventParticipants(ctx context.Context, eventID int64) ([]application.Participant, error) {
	models, err := a.repo.ListEventParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, toApplicationParticipant(model))
	}
	return participants, nil
}

func (a *eventRepositoryAdapter) MissingEventIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return a.repo.MissingEventIDs(ctx, ids)
}

type participantRepositoryAdapter struct {
	repo persistence.ParticipantRepository
}

func newParticipantRepositoryAdapter(repo persistence.ParticipantRepository) *participantRepositoryAdapter {
	return &participantRepositoryAdapter{repo: repo}
}

func (a *participantRepositoryAdapter) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	id, err := a.repo.CreateParticipant(ctx, toPersistenceParticipant(participant))
	if err != nil {
		return application.Participant{}, err
	}
	return a.GetParticipant(ctx, id)
}

func (a *participantRepositoryAdapter) GetParticipant(ctx context.Context, id int64) (application.Participant, error) {
	stored, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantRepositoryAdapter) UpdateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	if err := a.repo.UpdateParticipant(ctx, toPersistenceParticipant(participant)); err != nil {
		return application.Participant{}, err
	}
	return a.GetParticipant(ctx, participant.ID)
}

func (a *participantRepositoryAdapter) DeleteParticipant(ctx context.Context, id int64) error {
	return a.repo.DeleteParticipant(ctx, id)
}

func (a *participantRepositoryAdapter) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	models, err := a.repo.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, toApplicationParticipant(model))
	}
	return participants, nil
}

func (a *participantRepositoryAdapter) CountParticipants(ctx context.Context) (int, error) {
	return a.repo.CountParticipants(ctx)
}

func toApplicationCategory(model persistence.Category) application.Category {
	return application.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		EventCount:  model.EventCount,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceCategory(category application.Category) persistence.Category {
	return persistence.Category{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func toApplicationEvent(model persistence.Event) (application.Event, error) {
	date, err := time.Parse(application.DateLayout, model.Date)
	if err != nil {
		return application.Event{}, fmt.Errorf("event %d: invalid stored date %q: %w", model.ID, model.Date, err)
	}
	clock, err := time.Parse(application.TimeLayout, model.Time)
	if err != nil {
		return application.Event{}, fmt.Errorf("event %d: invalid stored time %q: %w", model.ID, model.Time, err)
	}
	return application.Event{
		ID:               model.ID,
		Name:             model.Name,
		Description:      model.Description,
		Date:             date,
		Time:             clock,
		Location:         model.Location,
		CategoryID:       cloneID(model.CategoryID),
		CategoryName:     model.CategoryName,
		ParticipantCount: model.ParticipantCount,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Date:        event.DateString(),
		Time:        event.TimeString(),
		Location:    event.Location,
		CategoryID:  cloneID(event.CategoryID),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toPersistenceFilter(filter application.EventFilter) persistence.EventFilter {
	order := persistence.OrderChronological
	if filter.Descending {
		order = persistence.OrderReverseChronological
	}
	return persistence.EventFilter{
		Search:     filter.Search,
		CategoryID: cloneID(filter.CategoryID),
		On:         formatBound(filter.On),
		OnOrAfter:  formatBound(filter.OnOrAfter),
		OnOrBefore: formatBound(filter.OnOrBefore),
		Before:     formatBound(filter.Before),
		Order:      order,
	}
}

func toApplicationParticipant(model persistence.Participant) application.Participant {
	return application.Participant{
		ID:         model.ID,
		Name:       model.Name,
		Email:      model.Email,
		EventIDs:   append([]int64(nil), model.EventIDs...),
		EventCount: model.EventCount,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceParticipant(participant application.Participant) persistence.Participant {
	return persistence.Participant{
		ID:        participant.ID,
		Name:      participant.Name,
		Email:     participant.Email,
		EventIDs:  append([]int64(nil), participant.EventIDs...),
		CreatedAt: participant.CreatedAt,
		UpdatedAt: participant.UpdatedAt,
	}
}

// formatBound renders an optional date bound. Nil leaves the bound unset.
func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(application.DateLayout)
}

func cloneID(value *int64) *int64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
