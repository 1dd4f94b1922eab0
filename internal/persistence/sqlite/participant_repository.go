package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/event-manager/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository using SQLite.
type ParticipantRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const participantSelect = `
	SELECT p.id, p.name, p.email, COUNT(ep.event_id), p.created_at, p.updated_at
	FROM participants p
	LEFT JOIN event_participants ep ON ep.participant_id = p.id
`

// CreateParticipant inserts a participant with its event memberships.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant persistence.Participant) (int64, error) {
	var id int64
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO participants (name, email, created_at, updated_at)
			VALUES (?, ?, ?, ?)
		`,
			participant.Name,
			participant.Email,
			formatTimestamp(participant.CreatedAt),
			formatTimestamp(participant.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
		return r.insertMemberships(ctx, tx, id, participant.EventIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateParticipant overwrites a participant and replaces its event memberships.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, participant persistence.Participant) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE participants SET name = ?, email = ?, updated_at = ?
			WHERE id = ?
		`,
			participant.Name,
			participant.Email,
			formatTimestamp(participant.UpdatedAt),
			participant.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_participants WHERE participant_id = ?`, participant.ID); err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertMemberships(ctx, tx, participant.ID, participant.EventIDs)
	})
}

// GetParticipant retrieves a participant with the ids of its events.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id int64) (persistence.Participant, error) {
	row := r.helper.QueryRow(ctx, participantSelect+` WHERE p.id = ? GROUP BY p.id`, id)
	participant, err := scanParticipant(row)
	if err != nil {
		return persistence.Participant{}, r.mapper.MapError(err)
	}

	rows, err := r.helper.Query(ctx, `
		SELECT ep.event_id
		FROM event_participants ep
		JOIN events e ON e.id = ep.event_id
		WHERE ep.participant_id = ?
		ORDER BY e.date, e.time, e.id
	`, id)
	if err != nil {
		return persistence.Participant{}, r.mapper.MapError(err)
	}
	defer rows.Close()

	participant.EventIDs = []int64{}
	for rows.Next() {
		var eventID int64
		if err := rows.Scan(&eventID); err != nil {
			return persistence.Participant{}, err
		}
		participant.EventIDs = append(participant.EventIDs, eventID)
	}
	if err := rows.Err(); err != nil {
		return persistence.Participant{}, fmt.Errorf("sqlite: iterate participant events: %w", err)
	}
	return participant, nil
}

// ListParticipants returns all participants with event counts ordered by name.
func (r *ParticipantRepository) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	rows, err := r.helper.Query(ctx, participantSelect+` GROUP BY p.id ORDER BY p.name COLLATE NOCASE, p.id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	participants := []persistence.Participant{}
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate participants: %w", err)
	}
	return participants, nil
}

// CountParticipants returns the total number of participants.
func (r *ParticipantRepository) CountParticipants(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// DeleteParticipant removes a participant and its memberships. Events are kept.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_participants WHERE participant_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireAffected(result)
	})
}

func (r *ParticipantRepository) insertMemberships(ctx context.Context, tx *sql.Tx, participantID int64, eventIDs []int64) error {
	for _, eventID := range eventIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO event_participants (event_id, participant_id) VALUES (?, ?)
		`, eventID, participantID); err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func scanParticipant(row rowScanner) (persistence.Participant, error) {
	var (
		participant          persistence.Participant
		createdAt, updatedAt string
	)
	if err := row.Scan(&participant.ID, &participant.Name, &participant.Email, &participant.EventCount, &createdAt, &updatedAt); err != nil {
		return persistence.Participant{}, err
	}
	var err error
	if participant.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Participant{}, err
	}
	if participant.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Participant{}, err
	}
	return participant, nil
}
