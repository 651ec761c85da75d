package booking

import (
	"estadia/src/models"
	"estadia/src/types"
)

// Event names a requested status transition on a reserve.
type Event string

const (
	EventReschedule Event = "reschedule"
	EventPay        Event = "pay"
	EventCancel     Event = "cancel"
)

// Transition validates the event against the reserve's current status and
// mutates the in-memory status on success. Canceled is absorbing: nothing
// leaves it. Paid reserves may be canceled but not rescheduled.
//
//	confirmed --reschedule--> confirmed
//	confirmed --pay---------> paid
//	confirmed --cancel------> canceled
//	paid      --cancel------> canceled
//
// Temporal and availability guards are the orchestrator's job; this table
// only answers whether the move itself is legal.
func Transition(r *models.Reserve, ev Event) error {
	switch ev {
	case EventReschedule:
		if r.Status != types.RESERVE_CONFIRMED {
			return ErrInvalidTransition
		}
	case EventPay:
		if r.Status != types.RESERVE_CONFIRMED {
			return ErrInvalidTransition
		}
		r.Status = types.RESERVE_PAID
	case EventCancel:
		if r.Status != types.RESERVE_CONFIRMED && r.Status != types.RESERVE_PAID {
			return ErrInvalidTransition
		}
		r.Status = types.RESERVE_CANCELED
	default:
		return ErrInvalidTransition
	}
	return nil
}
