package booking

import (
	"context"
	"fmt"
	"time"

	"estadia/src/models"
	"estadia/src/types"

	"github.com/jonboulle/clockwork"
)

// ValuationKind selects which side of the stay is being rated.
type ValuationKind string

const (
	ValuationOfProperty ValuationKind = "property"
	ValuationOfClient   ValuationKind = "client"
)

// Engine owns the reservation write path: it composes the availability check,
// the lifecycle transition table and the authorization rules into the public
// booking operations. Every operation runs inside a single storage
// transaction. Temporal guards compare against the injected clock, never
// against wall time directly.
type Engine struct {
	store Store
	clock clockwork.Clock
}

func NewEngine(store Store, clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{store: store, clock: clock}
}

// wrap turns non-domain failures into ErrStorageUnavailable so callers can
// tell retryable infrastructure trouble from terminal request errors.
func (e *Engine) wrap(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// CreateReserve books the property for the interval on behalf of guestID.
// The reserve comes back with its property attached for display.
func (e *Engine) CreateReserve(ctx context.Context, propertyID, guestID uint, iv Interval) (*models.Reserve, error) {
	if iv.Start.Before(e.clock.Now()) {
		return nil, ErrInvalidInterval
	}
	var out *models.Reserve
	err := e.store.Transact(ctx, func(tx Tx) error {
		property, err := tx.PropertyByID(propertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrPropertyNotFound
		}
		if property.OwnerID == guestID {
			return ErrSelfBooking
		}
		conflict, err := tx.OverlapExists(propertyID, iv, 0)
		if err != nil {
			return err
		}
		if conflict {
			return ErrDateConflict
		}
		r := &models.Reserve{
			PropertyID: propertyID,
			GuestID:    guestID,
			DateStart:  iv.Start,
			DateEnd:    iv.End,
			Status:     types.RESERVE_CONFIRMED,
		}
		if err := tx.CreateReserve(r); err != nil {
			return err
		}
		r.Property = property
		out = r
		return nil
	})
	return out, e.wrap(err)
}

// Reschedule moves a confirmed reserve to new dates. Nil date arguments keep
// the current value. Only the guest may reschedule, and only while the
// current stay has not begun.
func (e *Engine) Reschedule(ctx context.Context, reserveID, requesterID uint, newStart, newEnd *time.Time) (*models.Reserve, error) {
	now := e.clock.Now()
	var out *models.Reserve
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if r.GuestID != requesterID {
			return ErrUnauthorized
		}
		// Lock the property row before the availability read, as CreateReserve
		// does, so a concurrent booking on the same property serializes with
		// this reschedule instead of both passing the overlap check.
		property, err := tx.PropertyByID(r.PropertyID)
		if err != nil {
			return err
		}
		if property == nil {
			return ErrPropertyNotFound
		}
		// The guard is on the current interval: once the booked stay has
		// begun it can no longer be moved, whatever the new dates are.
		current := Interval{Start: r.DateStart, End: r.DateEnd}
		if current.Started(now) {
			return ErrAlreadyStarted
		}
		if err := Transition(r, EventReschedule); err != nil {
			return err
		}
		start, end := r.DateStart, r.DateEnd
		if newStart != nil {
			start = *newStart
		}
		if newEnd != nil {
			end = *newEnd
		}
		iv, err := NewInterval(start, end)
		if err != nil {
			return err
		}
		conflict, err := tx.OverlapExists(r.PropertyID, iv, r.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrDateConflict
		}
		if err := tx.SaveReserveDates(r.ID, iv); err != nil {
			return err
		}
		r.DateStart, r.DateEnd = iv.Start, iv.End
		out = r
		return nil
	})
	return out, e.wrap(err)
}

// Cancel soft-terminates a reserve. Either side of the stay may cancel before
// it begins; cancellation is irreversible and the reserve stops counting
// against availability.
func (e *Engine) Cancel(ctx context.Context, reserveID, requesterID uint) error {
	now := e.clock.Now()
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if !canCancel(r, requesterID) {
			return ErrUnauthorized
		}
		if (Interval{Start: r.DateStart, End: r.DateEnd}).Started(now) {
			return ErrAlreadyStarted
		}
		if err := Transition(r, EventCancel); err != nil {
			return err
		}
		return tx.SaveReserveStatus(r.ID, r.Status)
	})
	return e.wrap(err)
}

// Pay settles a confirmed reserve: one payment, amount = whole days (rounded
// up) times the property's daily rate, and the status flips to paid in the
// same transaction.
func (e *Engine) Pay(ctx context.Context, reserveID, requesterID uint, method types.PaymentMethod) (*models.Payment, error) {
	now := e.clock.Now()
	var out *models.Payment
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if r.GuestID != requesterID {
			return ErrUnauthorized
		}
		// The property may have been soft-deleted since booking; its daily
		// rate is gone with it.
		if r.Property == nil {
			return ErrPropertyNotFound
		}
		existing, err := tx.PaymentByReserve(r.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyPaid
		}
		if err := Transition(r, EventPay); err != nil {
			return err
		}
		iv := Interval{Start: r.DateStart, End: r.DateEnd}
		payment := &models.Payment{
			ReserveID: r.ID,
			Amount:    float64(iv.Days()) * r.Property.DailyRate,
			Method:    method,
			PaidAt:    now,
		}
		if err := tx.CreatePayment(payment); err != nil {
			return err
		}
		if err := tx.SaveReserveStatus(r.ID, r.Status); err != nil {
			return err
		}
		out = payment
		return nil
	})
	return out, e.wrap(err)
}

// CreatePropertyValuation records the guest's rating of the property. At most
// one per reserve, and only once the stay has ended.
func (e *Engine) CreatePropertyValuation(ctx context.Context, reserveID, requesterID uint, note uint8, comment string) (*models.PropertyValuation, error) {
	now := e.clock.Now()
	var out *models.PropertyValuation
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if r.GuestID != requesterID {
			return ErrUnauthorized
		}
		has, err := tx.HasPropertyValuation(r.ID)
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyValuated
		}
		if !(Interval{Start: r.DateStart, End: r.DateEnd}).Ended(now) {
			return ErrStayNotCompleted
		}
		v := &models.PropertyValuation{ReserveID: r.ID, Note: note, Comment: comment}
		if err := tx.CreatePropertyValuation(v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, e.wrap(err)
}

// CreateClientValuation records the owner's rating of the guest, under the
// same single-valuation and completed-stay rules.
func (e *Engine) CreateClientValuation(ctx context.Context, reserveID, requesterID uint, note uint8, comment string) (*models.ClientValuation, error) {
	now := e.clock.Now()
	var out *models.ClientValuation
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if r.Property == nil || r.Property.OwnerID != requesterID {
			return ErrUnauthorized
		}
		has, err := tx.HasClientValuation(r.ID)
		if err != nil {
			return err
		}
		if has {
			return ErrAlreadyValuated
		}
		if !(Interval{Start: r.DateStart, End: r.DateEnd}).Ended(now) {
			return ErrStayNotCompleted
		}
		v := &models.ClientValuation{ReserveID: r.ID, Note: note, Comment: comment}
		if err := tx.CreateClientValuation(v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, e.wrap(err)
}

// IsPayable reports whether the reserve is confirmed and still unpaid.
func (e *Engine) IsPayable(ctx context.Context, reserveID uint) (bool, error) {
	var payable bool
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		if r.Status != types.RESERVE_CONFIRMED {
			return nil
		}
		payment, err := tx.PaymentByReserve(r.ID)
		if err != nil {
			return err
		}
		payable = payment == nil
		return nil
	})
	return payable, e.wrap(err)
}

// IsValuatable reports whether a valuation of the given kind may still be
// created: the stay is settled (paid) or over, and no valuation of that kind
// exists yet.
func (e *Engine) IsValuatable(ctx context.Context, reserveID uint, kind ValuationKind) (bool, error) {
	now := e.clock.Now()
	var ok bool
	err := e.store.Transact(ctx, func(tx Tx) error {
		r, err := tx.ReserveByID(reserveID)
		if err != nil {
			return err
		}
		if r == nil {
			return ErrReservationNotFound
		}
		paid := r.Status == types.RESERVE_PAID
		ended := (Interval{Start: r.DateStart, End: r.DateEnd}).Ended(now)
		if !paid && !ended {
			return nil
		}
		var has bool
		switch kind {
		case ValuationOfProperty:
			has, err = tx.HasPropertyValuation(r.ID)
		case ValuationOfClient:
			has, err = tx.HasClientValuation(r.ID)
		default:
			return fmt.Errorf("unknown valuation kind %q", kind)
		}
		if err != nil {
			return err
		}
		ok = !has
		return nil
	})
	return ok, e.wrap(err)
}

// canCancel is the one two-sided authorization rule: the guest who booked or
// the owner of the booked property may cancel, nobody else.
func canCancel(r *models.Reserve, requesterID uint) bool {
	if requesterID == r.GuestID {
		return true
	}
	return r.Property != nil && requesterID == r.Property.OwnerID
}
