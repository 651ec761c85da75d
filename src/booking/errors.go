package booking

import "errors"

// Failure kinds surfaced by the engine. Handlers translate these to HTTP
// statuses; the engine itself never retries and never swallows one.
var (
	ErrInvalidInterval     = errors.New("invalid interval: dates must be in the future and end after start")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSelfBooking         = errors.New("owners cannot reserve their own property")
	ErrDateConflict        = errors.New("property is already reserved for these dates")
	ErrAlreadyStarted      = errors.New("reservation has already started")
	ErrUnauthorized        = errors.New("requester is not allowed to perform this action")
	ErrAlreadyPaid         = errors.New("reservation has already been paid")
	ErrInvalidTransition   = errors.New("illegal reservation status transition")
	ErrAlreadyValuated     = errors.New("reservation already has a valuation of this kind")
	ErrStayNotCompleted    = errors.New("stay has not been completed yet")

	// ErrStorageUnavailable wraps storage failures. It is the only failure
	// kind a caller may safely retry: every multi-step write runs inside a
	// single transaction, so no partial state survives it.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var domainErrors = []error{
	ErrInvalidInterval,
	ErrPropertyNotFound,
	ErrReservationNotFound,
	ErrSelfBooking,
	ErrDateConflict,
	ErrAlreadyStarted,
	ErrUnauthorized,
	ErrAlreadyPaid,
	ErrInvalidTransition,
	ErrAlreadyValuated,
	ErrStayNotCompleted,
}

func isDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
