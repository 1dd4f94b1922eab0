package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

// CategoryRepository implements persistence.CategoryRepository using SQLite.
type CategoryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(pool *ConnectionPool) *CategoryRepository {
	return &CategoryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const categorySelect = `
	SELECT c.id, c.name, c.description, COUNT(e.id), c.created_at, c.updated_at
	FROM categories c
	LEFT JOIN events e ON e.category_id = c.id
`

// CreateCategory inserts a category and returns its generated id.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category persistence.Category) (int64, error) {
	result, err := r.helper.Exec(ctx, `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`,
		category.Name,
		category.Description,
		formatTimestamp(category.CreatedAt),
		formatTimestamp(category.UpdatedAt),
	)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return result.LastInsertId()
}

// UpdateCategory overwrites the mutable fields of an existing category.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category persistence.Category) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE categories SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`,
		category.Name,
		category.Description,
		formatTimestamp(category.UpdatedAt),
		category.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetCategory retrieves a category with its event count.
func (r *CategoryRepository) GetCategory(ctx context.Context, id int64) (persistence.Category, error) {
	row := r.helper.QueryRow(ctx, categorySelect+` WHERE c.id = ? GROUP BY c.id`, id)
	category, err := scanCategory(row)
	if err != nil {
		return persistence.Category{}, r.mapper.MapError(err)
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (r *CategoryRepository) ListCategories(ctx context.Context) ([]persistence.Category, error) {
	rows, err := r.helper.Query(ctx, categorySelect+` GROUP BY c.id ORDER BY c.name COLLATE NOCASE, c.id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	categories := []persistence.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category. Events that referenced it keep existing
// with no category.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE events SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireAffected(result)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (persistence.Category, error) {
	var (
		category             persistence.Category
		createdAt, updatedAt string
	)
	if err := row.Scan(&category.ID, &category.Name, &category.Description, &category.EventCount, &createdAt, &updatedAt); err != nil {
		return persistence.Category{}, err
	}
	var err error
	if category.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Category{}, err
	}
	if category.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Category{}, err
	}
	return category, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return t, nil
}
