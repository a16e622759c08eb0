package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// monday is a fixed Monday used across the slot tests; farAway keeps the
// minimum-advance check out of the way unless a test wants it.
var (
	monday  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	farAway = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
)

func mondaySettings() model.ReservationSettings {
	s := model.DefaultReservationSettings(1)
	s.MinAdvanceBooking = 60
	s.TimeSlotInterval = 30
	s.DefaultDuration = 90
	return s
}

func activeRes(start string) model.Reservation {
	return model.Reservation{
		TenantID:  1,
		Date:      monday,
		StartTime: start,
		EndTime:   "23:59",
		Status:    model.StatusConfirmed,
	}
}

func TestBuildSlotsWalksOperatingWindow(t *testing.T) {
	slots := BuildSlots(mondaySettings(), monday, nil, farAway)
	require.NotEmpty(t, slots)

	assert.Equal(t, "09:00", slots[0].Time)
	// Every slot must fully fit before closing.
	closeMin, err := ParseClock("22:00")
	require.NoError(t, err)
	for _, sl := range slots {
		min, err := ParseClock(sl.Time)
		require.NoError(t, err)
		assert.LessOrEqual(t, min+90, closeMin, "slot %s extends past closing", sl.Time)
		assert.True(t, sl.Available)
	}
	// Last slot is the latest start that still fits a 90 minute booking.
	assert.Equal(t, "20:30", slots[len(slots)-1].Time)
}

func TestBuildSlotsDisabled(t *testing.T) {
	s := mondaySettings()
	s.IsEnabled = false
	assert.Empty(t, BuildSlots(s, monday, nil, farAway))
}

func TestBuildSlotsClosedDay(t *testing.T) {
	s := mondaySettings()
	s.OperatingHours.Monday = model.DayHours{Closed: true}
	assert.Empty(t, BuildSlots(s, monday, nil, farAway))
}

func TestBuildSlotsDefaultHoursWhenUnset(t *testing.T) {
	s := mondaySettings()
	s.OperatingHours.Monday = model.DayHours{} // no hours, not closed
	slots := BuildSlots(s, monday, nil, farAway)
	require.NotEmpty(t, slots)
	assert.Equal(t, DefaultOpen, slots[0].Time)
}

func TestBuildSlotsDegenerateWindows(t *testing.T) {
	s := mondaySettings()
	s.OperatingHours.Monday = model.DayHours{Open: "12:00", Close: "12:00"}
	assert.Empty(t, BuildSlots(s, monday, nil, farAway))

	s.OperatingHours.Monday = model.DayHours{Open: "18:00", Close: "12:00"}
	assert.Empty(t, BuildSlots(s, monday, nil, farAway))

	s = mondaySettings()
	s.TimeSlotInterval = 0
	assert.Empty(t, BuildSlots(s, monday, nil, farAway))
}

func TestBuildSlotsMinAdvanceCutoff(t *testing.T) {
	s := mondaySettings()
	// Same-day request at 18:10 with a 60 minute lead: everything up to
	// and including 19:00 is too soon, 19:30 onward is bookable.
	now := time.Date(2025, 6, 2, 18, 10, 0, 0, time.UTC)
	slots := BuildSlots(s, monday, nil, now)
	require.NotEmpty(t, slots)

	byTime := map[string]bool{}
	for _, sl := range slots {
		byTime[sl.Time] = sl.Available
	}
	assert.False(t, byTime["18:30"])
	assert.False(t, byTime["19:00"])
	assert.True(t, byTime["19:30"])
	assert.True(t, byTime["20:30"])
}

func TestBuildSlotsPerSlotCap(t *testing.T) {
	s := mondaySettings()
	cap := 1
	s.MaxReservationsPerSlot = &cap
	existing := []model.Reservation{activeRes("19:00")}

	slots := BuildSlots(s, monday, existing, farAway)
	require.NotEmpty(t, slots)

	var found bool
	for _, sl := range slots {
		if sl.Time == "19:00" {
			found = true
			// Full slots are returned, marked unavailable, not omitted.
			assert.False(t, sl.Available)
		} else {
			assert.True(t, sl.Available, "slot %s", sl.Time)
		}
	}
	assert.True(t, found, "full slot must still be emitted")
}

func TestBuildSlotsCapIgnoredWhenUnset(t *testing.T) {
	s := mondaySettings()
	existing := []model.Reservation{activeRes("19:00"), activeRes("19:00"), activeRes("19:00")}
	for _, sl := range BuildSlots(s, monday, existing, farAway) {
		assert.True(t, sl.Available, "slot %s", sl.Time)
	}
}
