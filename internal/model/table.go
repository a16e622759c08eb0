package model

import "time"

// Table statuses. The reservation engine writes these as side effects of
// lifecycle transitions (seat -> RESERVED, complete -> AVAILABLE); the
// dine-in/POS subsystem owns the value at all other times. Seating a
// reservation sets RESERVED rather than OCCUPIED to stay compatible with
// how the floor subsystem reads the column.
const (
	TableAvailable = "AVAILABLE"
	TableReserved  = "RESERVED"
	TableOccupied  = "OCCUPIED"
)

// Table is a physical table on the restaurant floor. Capacity gates
// which reservations the allocator may place on it.
//
// Fields:
//  ID        – primary key identifier.
//  TenantID  – owning restaurant.
//  Number    – table number shown to staff and guests.
//  Capacity  – maximum number of guests the table seats.
//  Section   – floor section (e.g. "terrace", "main").
//  Status    – AVAILABLE, RESERVED or OCCUPIED.
//  CreatedAt – creation timestamp.
type Table struct {
	ID        uint64    `json:"id"`         // tables.id
	TenantID  uint64    `json:"tenant_id"`  // tables.tenant_id
	Number    uint32    `json:"number"`     // tables.number
	Capacity  uint32    `json:"capacity"`   // tables.capacity
	Section   string    `json:"section"`    // tables.section
	Status    string    `json:"status"`     // tables.status
	CreatedAt time.Time `json:"created_at"` // tables.created_at
}
