package schedule

import "github.com/tablio/restaurant-reservation/internal/model"

// EligibleTables filters a tenant's tables down to those that can take a
// party of guestCount over the half-open window [startMin,endMin).
// reserved must hold the date's active reservations that have a table
// assigned; a table is rejected when any of its reservations overlaps
// the requested window or when guestCount exceeds its capacity. The
// input order (section, then number) is preserved. guestCount 0 skips
// the capacity check, mirroring an omitted guests parameter.
func EligibleTables(tables []model.Table, reserved []model.Reservation, startMin, endMin int, guestCount uint32) []model.Table {
	// Index reservation windows by table once.
	windows := make(map[uint64][][2]int, len(reserved))
	for _, r := range reserved {
		if r.TableID == nil {
			continue
		}
		rs, err := ParseClock(r.StartTime)
		if err != nil {
			continue
		}
		re, err := ParseClock(r.EndTime)
		if err != nil {
			continue
		}
		windows[*r.TableID] = append(windows[*r.TableID], [2]int{rs, re})
	}

	eligible := make([]model.Table, 0, len(tables))
	for _, t := range tables {
		if guestCount > 0 && t.Capacity < guestCount {
			continue
		}
		conflict := false
		for _, w := range windows[t.ID] {
			if Overlaps(startMin, endMin, w[0], w[1]) {
				conflict = true
				break
			}
		}
		if !conflict {
			eligible = append(eligible, t)
		}
	}
	return eligible
}
