package schedule

import (
	"testing"
	"time"

	"nateiva/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-02 is a Monday.
var (
	monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
)

func TestGenerateSlots(t *testing.T) {
	weekly := []models.AvailabilitySlot{
		{Day: 1, Start: 9 * 60, End: 12 * 60},
	}

	t.Run("MondayMorningYieldsThreeSlots", func(t *testing.T) {
		slots := GenerateSlots(weekly, nil, monday, now)
		require.Len(t, slots, 3)
		assert.Equal(t, models.TimeSlot{Start: 540, End: 600, Label: "09:00"}, slots[0])
		assert.Equal(t, models.TimeSlot{Start: 600, End: 660, Label: "10:00"}, slots[1])
		assert.Equal(t, models.TimeSlot{Start: 660, End: 720, Label: "11:00"}, slots[2])
	})

	t.Run("TrailingPartialBucketDropped", func(t *testing.T) {
		partial := []models.AvailabilitySlot{{Day: 1, Start: 9 * 60, End: 10*60 + 30}}
		slots := GenerateSlots(partial, nil, monday, now)
		require.Len(t, slots, 1)
		assert.Equal(t, 540, slots[0].Start)
		assert.Equal(t, 600, slots[0].End)
	})

	t.Run("RangeShorterThanBucketYieldsNothing", func(t *testing.T) {
		short := []models.AvailabilitySlot{{Day: 1, Start: 9 * 60, End: 9*60 + 45}}
		assert.Empty(t, GenerateSlots(short, nil, monday, now))
	})

	t.Run("BlockedDateYieldsNothing", func(t *testing.T) {
		blocked := []string{monday.Format(models.DateLayout)}
		assert.Empty(t, GenerateSlots(weekly, blocked, monday, now))
	})

	t.Run("PastDateYieldsNothing", func(t *testing.T) {
		later := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
		assert.Empty(t, GenerateSlots(weekly, nil, monday, later))
	})

	t.Run("TodayIsBookable", func(t *testing.T) {
		sameDay := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
		slots := GenerateSlots(weekly, nil, monday, sameDay)
		assert.Len(t, slots, 3)
	})

	t.Run("OtherWeekdayYieldsNothing", func(t *testing.T) {
		tuesday := monday.AddDate(0, 0, 1)
		assert.Empty(t, GenerateSlots(weekly, nil, tuesday, now))
	})

	t.Run("MultipleRangesSortedAscending", func(t *testing.T) {
		multi := []models.AvailabilitySlot{
			{Day: 1, Start: 14 * 60, End: 16 * 60},
			{Day: 1, Start: 9 * 60, End: 11 * 60},
		}
		slots := GenerateSlots(multi, nil, monday, now)
		require.Len(t, slots, 4)
		for i := 1; i < len(slots); i++ {
			assert.LessOrEqual(t, slots[i-1].Start, slots[i].Start)
		}
	})

	t.Run("EverySlotContainedInARange", func(t *testing.T) {
		multi := []models.AvailabilitySlot{
			{Day: 1, Start: 8 * 60, End: 11*60 + 20},
			{Day: 1, Start: 13 * 60, End: 17 * 60},
		}
		slots := GenerateSlots(multi, nil, monday, now)
		require.NotEmpty(t, slots)
		for _, slot := range slots {
			contained := false
			for _, r := range multi {
				if slot.Start >= r.Start && slot.End <= r.End {
					contained = true
					break
				}
			}
			assert.True(t, contained, "slot [%d,%d) outside every range", slot.Start, slot.End)
		}
	})
}

func TestDayHasAvailability(t *testing.T) {
	weekly := []models.AvailabilitySlot{{Day: 3, Start: 600, End: 720}}
	assert.True(t, DayHasAvailability(weekly, time.Wednesday))
	assert.False(t, DayHasAvailability(weekly, time.Friday))
}

func TestSlotInterval(t *testing.T) {
	start, end := SlotInterval(monday, models.TimeSlot{Start: 540, End: 600})
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), end)
}
