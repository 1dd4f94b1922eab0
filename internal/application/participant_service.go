package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

// ParticipantService orchestrates validation and persistence for participants.
type ParticipantService struct {
	participants ParticipantRepository
	directory    EventDirectory
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService constructs a participant service with the provided dependencies.
func NewParticipantService(participants ParticipantRepository, directory EventDirectory, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(participants, directory, now, nil)
}

// NewParticipantServiceWithLogger constructs a participant service with a specified logger.
func NewParticipantServiceWithLogger(participants ParticipantRepository, directory EventDirectory, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{participants: participants, directory: directory, now: now, logger: defaultLogger(logger)}
}

func (s *ParticipantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ParticipantService", operation, attrs...)
}

// CreateParticipant validates input and persists a new participant with its events.
func (s *ParticipantService) CreateParticipant(ctx context.Context, input ParticipantInput) (participant Participant, err error) {
	if s == nil || s.participants == nil {
		err = fmt.Errorf("participant repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateParticipant")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID, "event_count", len(participant.EventIDs)).InfoContext(ctx, "participant created")
	}()

	var candidate Participant
	candidate, err = s.validate(ctx, input)
	if err != nil {
		return
	}

	candidate.CreatedAt = s.now()
	candidate.UpdatedAt = candidate.CreatedAt

	participant, err = s.participants.CreateParticipant(ctx, candidate)
	if err != nil {
		err = mapParticipantRepoError(err)
	}
	return
}

// UpdateParticipant validates input and replaces a participant and its event memberships.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, id int64, input ParticipantInput) (participant Participant, err error) {
	if s == nil || s.participants == nil {
		err = fmt.Errorf("participant repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateParticipant", "participant_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "participant updated")
	}()

	var existing Participant
	existing, err = s.participants.GetParticipant(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var candidate Participant
	candidate, err = s.validate(ctx, input)
	if err != nil {
		return
	}

	updated := existing
	updated.Name = candidate.Name
	updated.Email = candidate.Email
	updated.EventIDs = candidate.EventIDs
	updated.UpdatedAt = s.now()

	participant, err = s.participants.UpdateParticipant(ctx, updated)
	if err != nil {
		err = mapParticipantRepoError(err)
	}
	return
}

// GetParticipant returns a participant with the ids of its events.
func (s *ParticipantService) GetParticipant(ctx context.Context, id int64) (Participant, error) {
	if s == nil || s.participants == nil {
		return Participant{}, fmt.Errorf("participant repository not configured")
	}
	participant, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetParticipant", "participant_id", id).ErrorContext(ctx, "failed to load participant", "error", err, "error_kind", ErrorKind(err))
		}
		return Participant{}, err
	}
	return participant, nil
}

// DeleteParticipant removes a participant and its memberships. Events are kept.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id int64) error {
	if s == nil || s.participants == nil {
		return fmt.Errorf("participant repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteParticipant", "participant_id", id)
	if err := s.participants.DeleteParticipant(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete participant", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "participant deleted")
	return nil
}

// ListParticipants returns every participant with its event count, ordered by name.
func (s *ParticipantService) ListParticipants(ctx context.Context) ([]Participant, error) {
	if s == nil || s.participants == nil {
		return nil, nil
	}
	participants, err := s.participants.ListParticipants(ctx)
	if err != nil {
		err = mapRepoError(err)
		s.loggerWith(ctx, "ListParticipants").ErrorContext(ctx, "failed to list participants", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return participants, nil
}

// EventChoices lists the events a participant can be assigned to.
func (s *ParticipantService) EventChoices(ctx context.Context) ([]Event, error) {
	if s == nil || s.directory == nil {
		return []Event{}, nil
	}
	events, err := s.directory.ListEvents(ctx, EventFilter{})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return events, nil
}

func (s *ParticipantService) validate(ctx context.Context, input ParticipantInput) (Participant, error) {
	participant, vErr := validateParticipantInput(input)

	if len(participant.EventIDs) > 0 && s.directory != nil {
		missing, err := s.directory.MissingEventIDs(ctx, participant.EventIDs)
		if err != nil {
			return Participant{}, mapRepoError(err)
		}
		if len(missing) > 0 {
			vErr.add("events", "unknown events: "+formatIDs(missing))
		}
	}

	if vErr.HasErrors() {
		return Participant{}, vErr
	}
	return participant, nil
}

func mapParticipantRepoError(err error) error {
	if errors.Is(err, persistence.ErrForeignKey) {
		vErr := &ValidationError{}
		vErr.add("events", "select valid events")
		return vErr
	}
	return mapRepoError(err)
}
