package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// CategoryService manages the user's category tree (one level deep in
// practice: categories and their sub-categories).
type CategoryService struct {
	store *storage.Repository
	now   func() time.Time
}

func NewCategoryService(store *storage.Repository) *CategoryService {
	return &CategoryService{store: store, now: time.Now}
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    string
}

// Create creates a category, optionally as a child of ParentID. A parent
// owned by another user is rejected with ErrForeignParentCategory rather
// than silently linked.
func (s *CategoryService) Create(ctx context.Context, userID string, in CreateCategoryInput) (core.Category, error) {
	category := core.Category{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
		CreatedAt:   s.now(),
	}
	if err := category.Validate(); err != nil {
		return core.Category{}, err
	}

	if in.ParentID != "" {
		parent, err := s.store.GetCategory(ctx, in.ParentID)
		if err != nil {
			return core.Category{}, fmt.Errorf("load parent category: %w", err)
		}
		if parent.UserID != userID {
			return core.Category{}, core.ErrForeignParentCategory
		}
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", category.ID, "user_id", userID, "parent_id", in.ParentID)
	return category, nil
}

// List returns the user's top-level categories.
func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	categories, err := s.store.ListTopLevelCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Subcategories returns the direct children of one of the user's categories.
func (s *CategoryService) Subcategories(ctx context.Context, userID, categoryID string) ([]core.Category, error) {
	parent, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := assertOwned(parent, userID, "category"); err != nil {
		return nil, err
	}

	children, err := s.store.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return children, nil
}
