package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-manager/internal/persistence"
)

// CategoryService orchestrates validation and persistence for categories.
type CategoryService struct {
	categories CategoryRepository
	now        func() time.Time
	logger     *slog.Logger
}

// NewCategoryService constructs a category service with the provided dependencies.
func NewCategoryService(categories CategoryRepository, now func() time.Time) *CategoryService {
	return NewCategoryServiceWithLogger(categories, now, nil)
}

// NewCategoryServiceWithLogger constructs a category service with a specified logger.
func NewCategoryServiceWithLogger(categories CategoryRepository, now func() time.Time, logger *slog.Logger) *CategoryService {
	if now == nil {
		now = time.Now
	}
	return &CategoryService{categories: categories, now: now, logger: defaultLogger(logger)}
}

func (s *CategoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CategoryService", operation, attrs...)
}

// CreateCategory validates input and persists a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, input CategoryInput) (category Category, err error) {
	if s == nil || s.categories == nil {
		err = fmt.Errorf("category repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateCategory")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("category_id", category.ID).InfoContext(ctx, "category created")
	}()

	candidate, vErr := validateCategoryInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate.CreatedAt = s.now()
	candidate.UpdatedAt = candidate.CreatedAt

	category, err = s.categories.CreateCategory(ctx, candidate)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// UpdateCategory validates input and overwrites an existing category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (category Category, err error) {
	if s == nil || s.categories == nil {
		err = fmt.Errorf("category repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateCategory", "category_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "category updated")
	}()

	var existing Category
	existing, err = s.categories.GetCategory(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	candidate, vErr := validateCategoryInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = candidate.Name
	updated.Description = candidate.Description
	updated.UpdatedAt = s.now()

	category, err = s.categories.UpdateCategory(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetCategory returns a single category.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (Category, error) {
	if s == nil || s.categories == nil {
		return Category{}, fmt.Errorf("category repository not configured")
	}
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "GetCategory", "category_id", id).ErrorContext(ctx, "failed to load category", "error", err, "error_kind", ErrorKind(err))
		}
		return Category{}, err
	}
	return category, nil
}

// DeleteCategory removes a category. Events that used it are kept without a category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if s == nil || s.categories == nil {
		return fmt.Errorf("category repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteCategory", "category_id", id)
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete category", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "category deleted")
	return nil
}

// ListCategories returns every category with its event count, ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]Category, error) {
	if s == nil || s.categories == nil {
		return nil, nil
	}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		err = mapRepoError(err)
		s.loggerWith(ctx, "ListCategories").ErrorContext(ctx, "failed to list categories", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return categories, nil
}

// mapRepoError translates persistence sentinels into application errors.
// Anything unrecognised is a store failure and is returned unchanged.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("__all__", "the submitted values violate a data constraint")
		return vErr
	}
	return err
}
