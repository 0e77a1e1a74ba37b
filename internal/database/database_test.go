package database

import (
	"context"
	"testing"

	"nateiva/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := &models.User{
			ID:           "tutor-1",
			Name:         "Alice",
			Role:         models.RoleTutor,
			Bio:          "Maths tutor",
			Subjects:     []string{"maths", "physics"},
			Languages:    []string{"en"},
			PricePerHour: 25,
			Rating:       4.5,
		}
		require.NoError(t, db.CreateOrUpdateUser(ctx, user))

		got, err := db.GetUser(ctx, "tutor-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, models.RoleTutor, got.Role)
		assert.Equal(t, []string{"maths", "physics"}, got.Subjects)
		assert.Equal(t, 25.0, got.PricePerHour)
	})

	t.Run("UpsertOverwrites", func(t *testing.T) {
		user := &models.User{ID: "tutor-1", Name: "Alice B", Role: models.RoleCenterOwner}
		require.NoError(t, db.CreateOrUpdateUser(ctx, user))

		got, err := db.GetUser(ctx, "tutor-1")
		require.NoError(t, err)
		assert.Equal(t, "Alice B", got.Name)
		assert.Equal(t, models.RoleCenterOwner, got.Role)
		assert.Nil(t, got.Subjects)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := db.GetUser(ctx, "nobody")
		assert.Error(t, err)
	})

	t.Run("ListKeepsInsertionOrder", func(t *testing.T) {
		require.NoError(t, db.CreateOrUpdateUser(ctx, &models.User{ID: "learner-1", Name: "Bob", Role: models.RoleLearner}))

		users, err := db.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "tutor-1", users[0].ID)
		assert.Equal(t, "learner-1", users[1].ID)
	})
}
