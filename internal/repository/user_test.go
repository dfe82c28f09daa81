package repository

import (
	"context"
	"testing"

	"carmarket/internal/models"
	"carmarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())

	u := &models.User{Email: "kim@example.com", Name: "김철수", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.Password)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", byID.Email)
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &models.User{Email: "kim@example.com"}))

	_, err := repo.GetByEmail(ctx, "KIM@example.com")
	assert.True(t, models.IsNotFound(err))

	require.NoError(t, repo.Create(ctx, &models.User{Email: "KIM@example.com"}))
	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepository_DuplicateEmailLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &models.User{Email: "lee@example.com", Name: "이영희"}))

	err := repo.Create(ctx, &models.User{Email: "lee@example.com", Name: "someone else"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
	assert.Contains(t, err.Error(), "User already exists")

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "이영희", users[0].Name)
}
