package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/event-manager/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const eventSelect = `
	SELECT e.id, e.name, e.description, e.date, e.time, e.location,
		e.category_id, COALESCE(c.name, ''), COUNT(ep.participant_id),
		e.created_at, e.updated_at
	FROM events e
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN event_participants ep ON ep.event_id = e.id
`

// CreateEvent inserts an event and returns its generated id.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) (int64, error) {
	var id int64
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO events (name, description, date, time, location, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			event.Name,
			event.Description,
			event.Date,
			event.Time,
			event.Location,
			nullableID(event.CategoryID),
			formatTimestamp(event.CreatedAt),
			formatTimestamp(event.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateEvent overwrites the mutable fields of an existing event.
// Participant membership is left untouched.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE events
			SET name = ?, description = ?, date = ?, time = ?, location = ?, category_id = ?, updated_at = ?
			WHERE id = ?
		`,
			event.Name,
			event.Description,
			event.Date,
			event.Time,
			event.Location,
			nullableID(event.CategoryID),
			formatTimestamp(event.UpdatedAt),
			event.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireAffected(result)
	})
}

// GetEvent retrieves an event with its category name and participant count.
func (r *EventRepository) GetEvent(ctx context.Context, id int64) (persistence.Event, error) {
	row := r.helper.QueryRow(ctx, eventSelect+` WHERE e.id = ? GROUP BY e.id`, id)
	event, err := scanEvent(row)
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return event, nil
}

// ListEvents returns the events matching filter in the requested order.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	where, args := buildEventWhere(filter)

	direction := "ASC"
	if filter.Order == persistence.OrderReverseChronological {
		direction = "DESC"
	}
	query := eventSelect + where + ` GROUP BY e.id ORDER BY e.date ` + direction +
		`, e.time ` + direction + `, e.id ` + direction

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	events := []persistence.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate events: %w", err)
	}
	return events, nil
}

// CountEvents returns how many events match filter.
func (r *EventRepository) CountEvents(ctx context.Context, filter persistence.EventFilter) (int, error) {
	where, args := buildEventWhere(filter)
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// ListEventParticipants returns the participants attending an event ordered by name.
func (r *EventRepository) ListEventParticipants(ctx context.Context, eventID int64) ([]persistence.Participant, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT p.id, p.name, p.email, p.created_at, p.updated_at
		FROM event_participants ep
		JOIN participants p ON p.id = ep.participant_id
		WHERE ep.event_id = ?
		ORDER BY p.name COLLATE NOCASE, p.id
	`, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	participants := []persistence.Participant{}
	for rows.Next() {
		var (
			participant          persistence.Participant
			createdAt, updatedAt string
		)
		if err := rows.Scan(&participant.ID, &participant.Name, &participant.Email, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if participant.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if participant.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate event participants: %w", err)
	}
	return participants, nil
}

// MissingEventIDs returns the ids from ids that do not name an existing
// event, in input order without duplicates.
func (r *EventRepository) MissingEventIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.helper.Query(ctx, `SELECT id FROM events WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate event ids: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; ok {
			continue
		}
		found[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing, nil
}

// DeleteEvent removes an event and its participant memberships. The
// participants themselves are kept.
func (r *EventRepository) DeleteEvent(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireAffected(result)
	})
}

func buildEventWhere(filter persistence.EventFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		conditions = append(conditions, `(`+foldFunction+`(e.name) LIKE ? ESCAPE '\' OR `+foldFunction+`(e.location) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, `e.category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	if filter.On != "" {
		conditions = append(conditions, `e.date = ?`)
		args = append(args, filter.On)
	}
	if filter.OnOrAfter != "" {
		conditions = append(conditions, `e.date >= ?`)
		args = append(args, filter.OnOrAfter)
	}
	if filter.OnOrBefore != "" {
		conditions = append(conditions, `e.date <= ?`)
		args = append(args, filter.OnOrBefore)
	}
	if filter.Before != "" {
		conditions = append(conditions, `e.date < ?`)
		args = append(args, filter.Before)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event                persistence.Event
		categoryID           sql.NullInt64
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&categoryID,
		&event.CategoryName,
		&event.ParticipantCount,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Event{}, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		event.CategoryID = &id
	}
	var err error
	if event.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
