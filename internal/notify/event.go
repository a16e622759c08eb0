// Package notify carries reservation lifecycle events from the booking
// engine to tenant admins. The engine emits events to an in-process
// dispatcher; a background worker publishes them to RabbitMQ and a
// consumer hands them to the notification fan-out. Delivery is
// fire-and-forget: failures are logged and never reach the caller.
package notify

// Event types emitted by the booking engine.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationConfirmed = "reservation.confirmed"
	TypeReservationRejected  = "reservation.rejected"
	TypeReservationSeated    = "reservation.seated"
	TypeReservationCompleted = "reservation.completed"
	TypeReservationNoShow    = "reservation.no_show"
	TypeReservationCancelled = "reservation.cancelled"
)

// Event is an admin notification about a reservation. Title and Message
// are display-ready; Data carries identifiers for deep links in the
// admin UI.
type Event struct {
	Type       string                 `json:"type"`
	TenantID   uint64                 `json:"tenant_id"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt string                 `json:"occurred_at"`
}
