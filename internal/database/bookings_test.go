package database

import (
	"context"
	"testing"
	"time"

	"nateiva/internal/domain"
	"nateiva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooking(t *testing.T, db *DB, id, learner, tutor, status string, start time.Time) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID:        id,
		LearnerID: learner,
		TutorID:   tutor,
		Subject:   "maths",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    status,
		Price:     25,
	}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	t.Run("CreateAndGet", func(t *testing.T) {
		seedBooking(t, db, "b1", "l1", "t1", models.StatusPending, monday)

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "l1", got.LearnerID)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, monday.Add(time.Hour), got.EndTime.UTC())
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := db.GetBooking(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, db.UpdateBookingStatus(ctx, "b1", models.StatusConfirmed))

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, got.Status)

		err = db.UpdateBookingStatus(ctx, "missing", models.StatusConfirmed)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("UpdateInterval", func(t *testing.T) {
		newStart := monday.Add(48 * time.Hour)
		require.NoError(t, db.UpdateBookingInterval(ctx, "b1", newStart, newStart.Add(time.Hour)))

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, newStart, got.StartTime.UTC())
	})

	t.Run("SetReviewGiven", func(t *testing.T) {
		require.NoError(t, db.SetBookingReviewGiven(ctx, "b1"))

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, got.ReviewGiven)
	})

	t.Run("ListByParty", func(t *testing.T) {
		seedBooking(t, db, "b2", "l1", "t2", models.StatusConfirmed, monday.Add(24*time.Hour))
		seedBooking(t, db, "b3", "l2", "t1", models.StatusCancelled, monday.Add(26*time.Hour))

		byLearner, err := db.ListBookingsByLearner(ctx, "l1")
		require.NoError(t, err)
		require.Len(t, byLearner, 2)
		assert.Equal(t, "b1", byLearner[0].ID)
		assert.Equal(t, "b2", byLearner[1].ID)

		byTutor, err := db.ListBookingsByTutor(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, byTutor, 2)
	})

	t.Run("ListActiveFiltersTerminal", func(t *testing.T) {
		active, err := db.ListActiveBookings(ctx, "l2")
		require.NoError(t, err)
		assert.Empty(t, active)

		active, err = db.ListActiveBookings(ctx, "t2")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "b2", active[0].ID)
	})

	t.Run("DailyBookingsGroupedByDate", func(t *testing.T) {
		daily, err := db.GetDailyBookings(ctx, monday.Add(-time.Hour), monday.Add(72*time.Hour))
		require.NoError(t, err)

		require.Len(t, daily["2025-06-03"], 2)
		require.Len(t, daily["2025-06-04"], 1)
	})
}
