package schedule

import (
	"time"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// Default operating window applied when a weekday has no configured
// hours and is not marked closed.
const (
	DefaultOpen  = "09:00"
	DefaultClose = "22:00"
)

// Slot is one bookable start time on a date. Unavailable slots are
// still emitted so callers can render them as disabled.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// DayWindow resolves the operating window for a date from the tenant's
// settings. ok is false when the weekday is marked closed; open and
// close are minutes since midnight with the 09:00–22:00 fallback
// applied for unset values.
func DayWindow(hours model.OperatingHours, date time.Time) (open, close int, ok bool) {
	day := hours.For(date.Weekday())
	if day.Closed {
		return 0, 0, false
	}
	openStr, closeStr := day.Open, day.Close
	if openStr == "" {
		openStr = DefaultOpen
	}
	if closeStr == "" {
		closeStr = DefaultClose
	}
	open, err := ParseClock(openStr)
	if err != nil {
		return 0, 0, false
	}
	close, err = ParseClock(closeStr)
	if err != nil {
		return 0, 0, false
	}
	return open, close, true
}

// BuildSlots walks a date's operating window in settings.TimeSlotInterval
// steps and emits every candidate start time, stopping once a booking of
// DefaultDuration would run past closing. existing must already be
// restricted to active reservations (PENDING/CONFIRMED/SEATED) on the
// date. A slot is unavailable when its absolute start is within
// MinAdvanceBooking minutes of now, or when MaxReservationsPerSlot is set
// and the number of existing reservations starting exactly at the slot
// has reached the cap. An inverted or empty window yields no slots.
func BuildSlots(s model.ReservationSettings, date time.Time, existing []model.Reservation, now time.Time) []Slot {
	if !s.IsEnabled {
		return []Slot{}
	}
	open, close, ok := DayWindow(s.OperatingHours, date)
	if !ok {
		return []Slot{}
	}
	interval := s.TimeSlotInterval
	if interval <= 0 {
		return []Slot{}
	}

	// Count existing bookings per start time once up front.
	perStart := make(map[string]int, len(existing))
	for _, r := range existing {
		perStart[r.StartTime]++
	}

	slots := []Slot{}
	for cur := open; cur+s.DefaultDuration <= close; cur += interval {
		t := FormatClock(cur)
		available := true

		slotStart := time.Date(date.Year(), date.Month(), date.Day(), cur/60, cur%60, 0, 0, date.Location())
		if slotStart.Sub(now) < time.Duration(s.MinAdvanceBooking)*time.Minute {
			available = false
		}
		if available && s.MaxReservationsPerSlot != nil && perStart[t] >= *s.MaxReservationsPerSlot {
			available = false
		}

		slots = append(slots, Slot{Time: t, Available: available})
	}
	return slots
}
