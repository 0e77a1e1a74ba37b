package schedule

import (
	"testing"
	"time"

	"nateiva/internal/models"

	"github.com/stretchr/testify/assert"
)

func booking(id, status string, start, end time.Time) *models.Booking {
	return &models.Booking{ID: id, Status: status, StartTime: start, EndTime: end}
}

func TestFindConflict(t *testing.T) {
	base := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC) // Thursday 10:00
	checkNow := base.AddDate(0, 0, -2)
	confirmed := booking("b1", models.StatusConfirmed, base, base.Add(time.Hour))

	t.Run("OverlappingIntervalConflicts", func(t *testing.T) {
		// Existing confirmed Thursday 10:00-11:00, proposed 10:30-11:30.
		c := FindConflict([]*models.Booking{confirmed}, base.Add(30*time.Minute), base.Add(90*time.Minute), "", checkNow)
		assert.True(t, c.HasConflict)
		assert.Equal(t, "b1", c.Booking.ID)
	})

	t.Run("TouchingEndpointsDoNotConflict", func(t *testing.T) {
		c := FindConflict([]*models.Booking{confirmed}, base.Add(time.Hour), base.Add(2*time.Hour), "", checkNow)
		assert.False(t, c.HasConflict)

		c = FindConflict([]*models.Booking{confirmed}, base.Add(-time.Hour), base, "", checkNow)
		assert.False(t, c.HasConflict)
	})

	t.Run("ContainedIntervalConflicts", func(t *testing.T) {
		c := FindConflict([]*models.Booking{confirmed}, base.Add(-time.Hour), base.Add(2*time.Hour), "", checkNow)
		assert.True(t, c.HasConflict)
	})

	t.Run("CancelledBookingIgnored", func(t *testing.T) {
		cancelled := booking("b2", models.StatusCancelled, base, base.Add(time.Hour))
		c := FindConflict([]*models.Booking{cancelled}, base, base.Add(time.Hour), "", checkNow)
		assert.False(t, c.HasConflict)
	})

	t.Run("PastBookingIgnored", func(t *testing.T) {
		c := FindConflict([]*models.Booking{confirmed}, base, base.Add(time.Hour), "", base.Add(time.Minute))
		assert.False(t, c.HasConflict)
	})

	t.Run("ExcludedIDSkipped", func(t *testing.T) {
		c := FindConflict([]*models.Booking{confirmed}, base, base.Add(time.Hour), "b1", checkNow)
		assert.False(t, c.HasConflict)
	})

	t.Run("FirstMatchInRegistryOrderWins", func(t *testing.T) {
		other := booking("b0", models.StatusPending, base.Add(-30*time.Minute), base.Add(30*time.Minute))
		c := FindConflict([]*models.Booking{other, confirmed}, base, base.Add(time.Hour), "", checkNow)
		assert.True(t, c.HasConflict)
		assert.Equal(t, "b0", c.Booking.ID)
	})
}
