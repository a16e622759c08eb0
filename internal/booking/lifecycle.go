package booking

import "github.com/tablio/restaurant-reservation/internal/model"

// Action is a lifecycle operation requested by staff or a customer.
type Action string

// Lifecycle actions. ActionCancel is the staff cancellation; customer
// cancellation is a distinct action because it carries extra guards
// (cancellation policy and deadline).
const (
	ActionConfirm      Action = "confirm"
	ActionReject       Action = "reject"
	ActionSeat         Action = "seat"
	ActionComplete     Action = "complete"
	ActionNoShow       Action = "no_show"
	ActionCancel       Action = "cancel"
	ActionCancelPublic Action = "cancel_public"
)

// CheckTransition validates that an action is legal from the given
// status and returns a ValidationError otherwise. The legal map:
//
//	confirm        PENDING
//	reject         PENDING, CONFIRMED
//	seat           CONFIRMED
//	complete       SEATED
//	no_show        PENDING, CONFIRMED
//	cancel         anything except COMPLETED, CANCELLED, NO_SHOW
//	cancel_public  PENDING, CONFIRMED
//
// Staff cancel deliberately permits REJECTED as a source state; that
// matches how the reservation book has always behaved.
func CheckTransition(status string, action Action) error {
	switch action {
	case ActionConfirm:
		if status != model.StatusPending {
			return validationf("only pending reservations can be confirmed")
		}
	case ActionReject:
		if status != model.StatusPending && status != model.StatusConfirmed {
			return validationf("this reservation cannot be rejected")
		}
	case ActionSeat:
		if status != model.StatusConfirmed {
			return validationf("only confirmed reservations can be seated")
		}
	case ActionComplete:
		if status != model.StatusSeated {
			return validationf("only seated reservations can be completed")
		}
	case ActionNoShow:
		if status != model.StatusPending && status != model.StatusConfirmed {
			return validationf("this reservation cannot be marked as no-show")
		}
	case ActionCancel:
		switch status {
		case model.StatusCompleted, model.StatusCancelled, model.StatusNoShow:
			return validationf("this reservation cannot be cancelled")
		}
	case ActionCancelPublic:
		if status != model.StatusPending && status != model.StatusConfirmed {
			return validationf("this reservation cannot be cancelled")
		}
	default:
		return validationf("unknown action %q", string(action))
	}
	return nil
}
