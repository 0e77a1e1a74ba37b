// Package schedule holds the pure scheduling math: turning a tutor's weekly
// availability into concrete bookable slots and detecting interval overlap.
// Everything here is side-effect free and recomputed from its inputs.
package schedule

import (
	"sort"
	"time"

	"nateiva/internal/models"
)

// GenerateSlots partitions the availability ranges matching date's weekday
// into fixed 60-minute buckets, starting at each range's start minute. A
// trailing bucket shorter than the full duration is dropped. The result is
// empty when the date is blocked or lies before today (midnight of now), and
// is ordered ascending by start minute.
func GenerateSlots(slots []models.AvailabilitySlot, blockedDates []string, date, now time.Time) []models.TimeSlot {
	if isBlocked(blockedDates, date) {
		return nil
	}
	if beforeToday(date, now) {
		return nil
	}

	weekday := int(date.Weekday())
	var out []models.TimeSlot
	for _, s := range slots {
		if s.Day != weekday {
			continue
		}
		for m := s.Start; m+models.SlotDurationMinutes <= s.End; m += models.SlotDurationMinutes {
			out = append(out, models.TimeSlot{
				Start: m,
				End:   m + models.SlotDurationMinutes,
				Label: models.SlotLabel(m),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// DayHasAvailability reports whether any weekly range falls on the weekday.
func DayHasAvailability(slots []models.AvailabilitySlot, weekday time.Weekday) bool {
	for _, s := range slots {
		if s.Day == int(weekday) {
			return true
		}
	}
	return false
}

// SlotInterval resolves a generated slot on a calendar date into concrete
// start/end times in the date's location.
func SlotInterval(date time.Time, slot models.TimeSlot) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := midnight.Add(time.Duration(slot.Start) * time.Minute)
	end := midnight.Add(time.Duration(slot.End) * time.Minute)
	return start, end
}

func isBlocked(blockedDates []string, date time.Time) bool {
	key := date.Format(models.DateLayout)
	for _, d := range blockedDates {
		if d == key {
			return true
		}
	}
	return false
}

func beforeToday(date, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return date.Before(today)
}
