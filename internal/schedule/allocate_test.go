package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablio/restaurant-reservation/internal/model"
)

func tbl(id uint64, capacity uint32, section string, number uint32) model.Table {
	return model.Table{ID: id, TenantID: 1, Number: number, Capacity: capacity, Section: section}
}

func tableRes(tableID uint64, start, end string) model.Reservation {
	return model.Reservation{
		TenantID:  1,
		TableID:   &tableID,
		StartTime: start,
		EndTime:   end,
		Status:    model.StatusConfirmed,
	}
}

func TestEligibleTablesCapacityFilter(t *testing.T) {
	tables := []model.Table{tbl(1, 2, "main", 1), tbl(2, 4, "main", 2), tbl(3, 8, "terrace", 1)}

	got := EligibleTables(tables, nil, 1140, 1230, 4)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
}

func TestEligibleTablesZeroGuestsSkipsCapacity(t *testing.T) {
	tables := []model.Table{tbl(1, 2, "main", 1), tbl(2, 4, "main", 2)}
	assert.Len(t, EligibleTables(tables, nil, 1140, 1230, 0), 2)
}

func TestEligibleTablesOverlapFilter(t *testing.T) {
	tables := []model.Table{tbl(1, 4, "main", 1), tbl(2, 4, "main", 2)}
	reserved := []model.Reservation{tableRes(1, "19:00", "20:30")}

	// 19:30–21:00 overlaps table 1's booking; only table 2 is free.
	got := EligibleTables(tables, reserved, 1170, 1260, 2)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].ID)

	// Back-to-back at 20:30 does not conflict.
	got = EligibleTables(tables, reserved, 1230, 1320, 2)
	assert.Len(t, got, 2)
}

func TestEligibleTablesMultipleWindowsPerTable(t *testing.T) {
	tables := []model.Table{tbl(1, 4, "main", 1)}
	reserved := []model.Reservation{
		tableRes(1, "12:00", "13:30"),
		tableRes(1, "19:00", "20:30"),
	}

	// The gap between the two bookings is open.
	assert.Len(t, EligibleTables(tables, reserved, 810, 900, 2), 1)  // 13:30–15:00
	assert.Empty(t, EligibleTables(tables, reserved, 750, 840, 2))   // 12:30–14:00
	assert.Empty(t, EligibleTables(tables, reserved, 1150, 1240, 2)) // 19:10–20:40
}

func TestEligibleTablesIgnoresUnassignedReservations(t *testing.T) {
	tables := []model.Table{tbl(1, 4, "main", 1)}
	reserved := []model.Reservation{{
		TenantID:  1,
		StartTime: "19:00",
		EndTime:   "20:30",
		Status:    model.StatusConfirmed,
		// no TableID: occupies no specific table
	}}
	assert.Len(t, EligibleTables(tables, reserved, 1140, 1230, 2), 1)
}

func TestEligibleTablesPreservesOrder(t *testing.T) {
	// Repository returns rows ordered by section then number; the filter
	// must not reorder them.
	tables := []model.Table{
		tbl(5, 4, "main", 1),
		tbl(9, 4, "main", 2),
		tbl(2, 4, "terrace", 1),
	}
	got := EligibleTables(tables, nil, 600, 690, 2)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{5, 9, 2}, []uint64{got[0].ID, got[1].ID, got[2].ID})
}
