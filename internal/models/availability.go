package models

import "fmt"

// AvailabilitySlot is a recurring weekly range during which a tutor accepts
// bookings. Minutes are counted from midnight; Day follows time.Weekday
// numbering (0 = Sunday).
type AvailabilitySlot struct {
	Day   int `json:"day"   yaml:"day"`
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Validate checks day and minute bounds. Overlapping slots on the same day
// are allowed at this layer.
func (s AvailabilitySlot) Validate() error {
	if s.Day < 0 || s.Day > 6 {
		return fmt.Errorf("availability slot: day %d out of range 0-6", s.Day)
	}
	if s.Start < 0 || s.End > MinutesPerDay || s.Start >= s.End {
		return fmt.Errorf("availability slot: invalid range [%d,%d)", s.Start, s.End)
	}
	return nil
}

// TimeSlot is a generated bookable bucket within one calendar day. Start and
// End are minute offsets from midnight; never persisted.
type TimeSlot struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// SlotLabel renders a minute offset as HH:MM.
func SlotLabel(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
