package model

import "time"

// Reservation statuses. PENDING -> CONFIRMED -> SEATED -> COMPLETED is
// the happy path; REJECTED, CANCELLED and NO_SHOW are side exits. All of
// COMPLETED, CANCELLED, REJECTED and NO_SHOW are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusSeated    = "SEATED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
	StatusNoShow    = "NO_SHOW"
)

// CancelledByCustomer marks a cancellation initiated through the public
// lookup page rather than by a staff member.
const CancelledByCustomer = "CUSTOMER"

// ActiveStatuses are the statuses that occupy a table or a slot.
// Availability computation and table allocation both count exactly this
// set so the two notions of "booked" never diverge.
var ActiveStatuses = []string{StatusPending, StatusConfirmed, StatusSeated}

// IsTerminalStatus reports whether no further transition is permitted
// from the given status.
func IsTerminalStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected, StatusNoShow:
		return true
	}
	return false
}

// Reservation records a booking of a party at a restaurant for a given
// date and time window. StartTime and EndTime are HH:mm strings on the
// reservation's date; Date carries no time-of-day component. A
// reservation with a table assigned must never overlap another active
// reservation on the same table and date.
//
// Fields:
//  ID                – primary key identifier.
//  ReservationNumber – unique per tenant, format R-YYYYMMDD-NNN.
//  TenantID          – owning restaurant.
//  Date              – calendar day of the booking (UTC midnight).
//  StartTime         – start of the window, HH:mm.
//  EndTime           – end of the window, HH:mm, after StartTime.
//  GuestCount        – party size, at least 1.
//  CustomerName      – name given at booking time.
//  CustomerPhone     – phone used for duplicate detection and lookup.
//  CustomerEmail     – optional contact email.
//  TableID           – optional assigned table.
//  Status            – lifecycle state, see constants above.
//  ConfirmedAt/SeatedAt/CompletedAt/CancelledAt – transition timestamps.
//  ConfirmedByID     – staff user who approved the booking.
//  CancelledBy       – staff user id or CUSTOMER.
//  RejectionReason   – optional reason recorded on rejection.
//  Notes             – customer-supplied notes.
//  AdminNotes        – staff-only notes.
type Reservation struct {
	ID                uint64     `json:"id"`                         // reservations.id
	ReservationNumber string     `json:"reservation_number"`         // reservations.reservation_number
	TenantID          uint64     `json:"tenant_id"`                  // reservations.tenant_id
	Date              time.Time  `json:"date"`                       // reservations.date
	StartTime         string     `json:"start_time"`                 // reservations.start_time
	EndTime           string     `json:"end_time"`                   // reservations.end_time
	GuestCount        uint32     `json:"guest_count"`                // reservations.guest_count
	CustomerName      string     `json:"customer_name"`              // reservations.customer_name
	CustomerPhone     string     `json:"customer_phone"`             // reservations.customer_phone
	CustomerEmail     *string    `json:"customer_email,omitempty"`   // reservations.customer_email (nullable)
	TableID           *uint64    `json:"table_id,omitempty"`         // reservations.table_id (nullable)
	Status            string     `json:"status"`                     // reservations.status
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`     // reservations.confirmed_at (nullable)
	SeatedAt          *time.Time `json:"seated_at,omitempty"`        // reservations.seated_at (nullable)
	CompletedAt       *time.Time `json:"completed_at,omitempty"`     // reservations.completed_at (nullable)
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`     // reservations.cancelled_at (nullable)
	ConfirmedByID     *uint64    `json:"confirmed_by_id,omitempty"`  // reservations.confirmed_by_id (nullable)
	CancelledBy       *string    `json:"cancelled_by,omitempty"`     // reservations.cancelled_by (nullable)
	RejectionReason   *string    `json:"rejection_reason,omitempty"` // reservations.rejection_reason (nullable)
	Notes             *string    `json:"notes,omitempty"`            // reservations.notes (nullable)
	AdminNotes        *string    `json:"admin_notes,omitempty"`      // reservations.admin_notes (nullable)
	Table             *Table     `json:"table,omitempty"`            // joined table row when assigned
	CreatedAt         time.Time  `json:"created_at"`                 // reservations.created_at
	UpdatedAt         time.Time  `json:"updated_at"`                 // reservations.updated_at
}

// StartsAt combines Date and StartTime into a point in time, used for
// advance-window and cancellation-deadline checks. A malformed time
// resolves to the date's midnight.
func (r *Reservation) StartsAt() time.Time {
	h, m := splitClock(r.StartTime)
	d := r.Date
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, d.Location())
}

func splitClock(s string) (h, m int) {
	if len(s) >= 5 && s[2] == ':' {
		h = int(s[0]-'0')*10 + int(s[1]-'0')
		m = int(s[3]-'0')*10 + int(s[4]-'0')
	}
	return h, m
}

// ReservationStats aggregates per-status counts for one date.
type ReservationStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Seated    int `json:"seated"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"noShow"`
	Rejected  int `json:"rejected"`
}
