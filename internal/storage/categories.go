package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) error {
	parent := sql.NullString{String: c.ParentID, Valid: c.ParentID != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, description, parent_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Description, parent, c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	var parent sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, parent_id, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &parent, &c.CreatedAt)
	if err != nil {
		return core.Category{}, notFound(err, "category")
	}
	c.ParentID = parent.String
	return c, nil
}

// ListTopLevelCategories returns the user's categories without a parent,
// mirroring the category listing the API exposes.
func (r *Repository) ListTopLevelCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, created_at
		 FROM categories WHERE user_id = ? AND parent_id IS NULL ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListSubcategories returns the direct children of a category.
func (r *Repository) ListSubcategories(ctx context.Context, parentID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, description, parent_id, created_at
		 FROM categories WHERE parent_id = ? ORDER BY name`,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &parent, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		c.ParentID = parent.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
