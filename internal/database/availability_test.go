package database

import (
	"context"
	"testing"

	"nateiva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("ReplaceAndGet", func(t *testing.T) {
		slots := []models.AvailabilitySlot{
			{Day: 1, Start: 540, End: 720},
			{Day: 3, Start: 600, End: 660},
		}
		require.NoError(t, db.ReplaceAvailability(ctx, "t1", slots))

		got, err := db.GetAvailability(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, slots, got)
	})

	t.Run("ReplaceSwapsWholeWeek", func(t *testing.T) {
		replacement := []models.AvailabilitySlot{{Day: 5, Start: 480, End: 540}}
		require.NoError(t, db.ReplaceAvailability(ctx, "t1", replacement))

		got, err := db.GetAvailability(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, replacement, got)
	})

	t.Run("ReplaceWithEmptyClears", func(t *testing.T) {
		require.NoError(t, db.ReplaceAvailability(ctx, "t1", nil))

		got, err := db.GetAvailability(ctx, "t1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TutorsAreIsolated", func(t *testing.T) {
		require.NoError(t, db.ReplaceAvailability(ctx, "t2", []models.AvailabilitySlot{{Day: 0, Start: 0, End: 60}}))

		got, err := db.GetAvailability(ctx, "t1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("BlockedDates", func(t *testing.T) {
		require.NoError(t, db.AddBlockedDate(ctx, "t1", "2025-06-09"))
		require.NoError(t, db.AddBlockedDate(ctx, "t1", "2025-06-02"))
		// duplicate add is a no-op
		require.NoError(t, db.AddBlockedDate(ctx, "t1", "2025-06-02"))

		dates, err := db.GetBlockedDates(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-06-02", "2025-06-09"}, dates)

		require.NoError(t, db.RemoveBlockedDate(ctx, "t1", "2025-06-02"))
		dates, err = db.GetBlockedDates(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-06-09"}, dates)
	})
}
