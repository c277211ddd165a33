package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestCreateCategoryForeignParent(t *testing.T) {
	store, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.CreateUser(ctx, core.User{
		ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "h", CreatedAt: now,
	}))
	require.NoError(t, store.CreateUser(ctx, core.User{
		ID: "u2", Username: "bob", Email: "bob@example.com", PasswordHash: "h", CreatedAt: now,
	}))

	svc := NewCategoryService(store)

	parent, err := svc.Create(ctx, "u1", CreateCategoryInput{Name: "Food"})
	require.NoError(t, err)

	// Linking under another user's category is rejected, not silently allowed.
	_, err = svc.Create(ctx, "u2", CreateCategoryInput{Name: "Sneaky", ParentID: parent.ID})
	assert.ErrorIs(t, err, core.ErrForeignParentCategory)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	child, err := svc.Create(ctx, "u1", CreateCategoryInput{Name: "Groceries", ParentID: parent.ID})
	require.NoError(t, err)

	children, err := svc.Subcategories(ctx, "u1", parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	// Foreign parent lookups are indistinguishable from missing ones.
	_, err = svc.Subcategories(ctx, "u2", parent.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Create(ctx, "u1", CreateCategoryInput{Name: "Orphan", ParentID: "missing"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}
