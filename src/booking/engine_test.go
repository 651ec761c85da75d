package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"estadia/src/models"
	"estadia/src/types"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// memStore is an in-memory Store for engine tests. Transact serializes
// callers on a mutex, which mirrors the per-property row lock the gorm store
// takes: two concurrent bookings for the same window observe each other. The
// engine only writes after all guards pass, so the fake does not need
// rollback.
type memStore struct {
	mu                 sync.Mutex
	properties         map[uint]*models.Property
	reserves           map[uint]*models.Reserve
	payments           map[uint]*models.Payment
	propertyValuations map[uint]*models.PropertyValuation
	clientValuations   map[uint]*models.ClientValuation
	nextID             uint
}

func newMemStore(props ...*models.Property) *memStore {
	s := &memStore{
		properties:         make(map[uint]*models.Property),
		reserves:           make(map[uint]*models.Reserve),
		payments:           make(map[uint]*models.Payment),
		propertyValuations: make(map[uint]*models.PropertyValuation),
		clientValuations:   make(map[uint]*models.ClientValuation),
	}
	for _, p := range props {
		s.properties[p.ID] = p
	}
	return s
}

func (s *memStore) Transact(ctx context.Context, fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

type memTx struct {
	s *memStore
}

func (t *memTx) PropertyByID(id uint) (*models.Property, error) {
	p, ok := t.s.properties[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) ReserveByID(id uint) (*models.Reserve, error) {
	r, ok := t.s.reserves[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Property = t.s.properties[r.PropertyID]
	return &cp, nil
}

func (t *memTx) OverlapExists(propertyID uint, iv Interval, excludeID uint) (bool, error) {
	for _, r := range t.s.reserves {
		if r.PropertyID != propertyID || r.ID == excludeID || r.Status == types.RESERVE_CANCELED {
			continue
		}
		if iv.Overlaps(Interval{Start: r.DateStart, End: r.DateEnd}) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateReserve(r *models.Reserve) error {
	t.s.nextID++
	r.ID = t.s.nextID
	cp := *r
	cp.Property = nil
	t.s.reserves[r.ID] = &cp
	return nil
}

func (t *memTx) SaveReserveDates(id uint, iv Interval) error {
	r, ok := t.s.reserves[id]
	if !ok {
		return errors.New("reserve vanished")
	}
	r.DateStart, r.DateEnd = iv.Start, iv.End
	return nil
}

func (t *memTx) SaveReserveStatus(id uint, status types.ReserveStatus) error {
	r, ok := t.s.reserves[id]
	if !ok {
		return errors.New("reserve vanished")
	}
	r.Status = status
	return nil
}

func (t *memTx) PaymentByReserve(reserveID uint) (*models.Payment, error) {
	p, ok := t.s.payments[reserveID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (t *memTx) CreatePayment(p *models.Payment) error {
	if _, ok := t.s.payments[p.ReserveID]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	t.s.nextID++
	p.ID = t.s.nextID
	t.s.payments[p.ReserveID] = p
	return nil
}

func (t *memTx) HasPropertyValuation(reserveID uint) (bool, error) {
	_, ok := t.s.propertyValuations[reserveID]
	return ok, nil
}

func (t *memTx) HasClientValuation(reserveID uint) (bool, error) {
	_, ok := t.s.clientValuations[reserveID]
	return ok, nil
}

func (t *memTx) CreatePropertyValuation(v *models.PropertyValuation) error {
	if _, ok := t.s.propertyValuations[v.ReserveID]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	t.s.nextID++
	v.ID = t.s.nextID
	t.s.propertyValuations[v.ReserveID] = v
	return nil
}

func (t *memTx) CreateClientValuation(v *models.ClientValuation) error {
	if _, ok := t.s.clientValuations[v.ReserveID]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	t.s.nextID++
	v.ID = t.s.nextID
	t.s.clientValuations[v.ReserveID] = v
	return nil
}

const (
	ownerID    = uint(10)
	guestID    = uint(20)
	strangerID = uint(30)
	propertyID = uint(1)
)

type EngineTestSuite struct {
	suite.Suite
	store  *memStore
	clock  *clockwork.FakeClock
	engine *Engine
	ctx    context.Context
}

func (s *EngineTestSuite) SetupTest() {
	s.store = newMemStore(&models.Property{ID: propertyID, OwnerID: ownerID, DailyRate: 100})
	s.clock = clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	s.engine = NewEngine(s.store, s.clock)
	s.ctx = context.Background()
}

func (s *EngineTestSuite) mustInterval(start, end time.Time) Interval {
	iv, err := NewInterval(start, end)
	s.Require().Nil(err)
	return iv
}

func (s *EngineTestSuite) create(start, end time.Time) *models.Reserve {
	r, err := s.engine.CreateReserve(s.ctx, propertyID, guestID, s.mustInterval(start, end))
	s.Require().Nil(err)
	s.Require().NotNil(r)
	return r
}

func (s *EngineTestSuite) assertNoOverlapInvariant() {
	var active []*models.Reserve
	for _, r := range s.store.reserves {
		if r.Status != types.RESERVE_CANCELED {
			active = append(active, r)
		}
	}
	for i, a := range active {
		for j, b := range active {
			if i == j || a.PropertyID != b.PropertyID {
				continue
			}
			ia := Interval{Start: a.DateStart, End: a.DateEnd}
			ib := Interval{Start: b.DateStart, End: b.DateEnd}
			s.Falsef(ia.Overlaps(ib), "reserves %d and %d overlap", a.ID, b.ID)
		}
	}
}

func (s *EngineTestSuite) TestCreateReserve() {
	r := s.create(day(10, 14), day(15, 11))
	s.Equal(types.RESERVE_CONFIRMED, r.Status)
	s.Equal(propertyID, r.PropertyID)
	s.Equal(guestID, r.GuestID)
	s.NotNil(r.Property)
	s.Equal(ownerID, r.Property.OwnerID)
}

func (s *EngineTestSuite) TestCreateReserveRejectsPastStart() {
	iv := s.mustInterval(time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), day(15, 0))
	_, err := s.engine.CreateReserve(s.ctx, propertyID, guestID, iv)
	s.ErrorIs(err, ErrInvalidInterval)
	s.Empty(s.store.reserves)
}

func (s *EngineTestSuite) TestCreateReserveUnknownProperty() {
	_, err := s.engine.CreateReserve(s.ctx, 999, guestID, s.mustInterval(day(10, 0), day(15, 0)))
	s.ErrorIs(err, ErrPropertyNotFound)
}

func (s *EngineTestSuite) TestCreateReserveSelfBooking() {
	_, err := s.engine.CreateReserve(s.ctx, propertyID, ownerID, s.mustInterval(day(10, 0), day(15, 0)))
	s.ErrorIs(err, ErrSelfBooking)
	s.Empty(s.store.reserves)
}

func (s *EngineTestSuite) TestCreateReserveDateConflict() {
	s.create(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	iv := s.mustInterval(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC))
	_, err := s.engine.CreateReserve(s.ctx, propertyID, strangerID, iv)
	s.ErrorIs(err, ErrDateConflict)
	s.assertNoOverlapInvariant()
}

func (s *EngineTestSuite) TestBackToBackReservesAllowed() {
	s.create(day(10, 0), day(15, 0))
	iv := s.mustInterval(day(15, 0), day(20, 0))
	r, err := s.engine.CreateReserve(s.ctx, propertyID, strangerID, iv)
	s.Nil(err)
	s.NotNil(r)
	s.assertNoOverlapInvariant()
}

func (s *EngineTestSuite) TestCancelFreesTheWindow() {
	r := s.create(day(10, 0), day(15, 0))
	s.Nil(s.engine.Cancel(s.ctx, r.ID, guestID))

	again, err := s.engine.CreateReserve(s.ctx, propertyID, strangerID, s.mustInterval(day(10, 0), day(15, 0)))
	s.Nil(err)
	s.NotNil(again)
	s.assertNoOverlapInvariant()
}

func (s *EngineTestSuite) TestConcurrentCreateExactlyOneWins() {
	iv := s.mustInterval(day(10, 0), day(15, 0))
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, g := range []uint{guestID, strangerID} {
		wg.Add(1)
		go func(g uint) {
			defer wg.Done()
			_, err := s.engine.CreateReserve(s.ctx, propertyID, g, iv)
			errs <- err
		}(g)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
		} else if errors.Is(err, ErrDateConflict) {
			lost++
		} else {
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, won)
	s.Equal(1, lost)
	s.Len(s.store.reserves, 1)
	s.assertNoOverlapInvariant()
}

func (s *EngineTestSuite) TestReschedule() {
	r := s.create(day(10, 0), day(15, 0))
	start := day(20, 0)
	end := day(25, 0)
	updated, err := s.engine.Reschedule(s.ctx, r.ID, guestID, &start, &end)
	s.Nil(err)
	s.Equal(start, updated.DateStart)
	s.Equal(end, updated.DateEnd)
	s.Equal(types.RESERVE_CONFIRMED, updated.Status)

	stored := s.store.reserves[r.ID]
	s.Equal(start, stored.DateStart)
	s.Equal(end, stored.DateEnd)
}

func (s *EngineTestSuite) TestRescheduleDefaultsToCurrentDates() {
	r := s.create(day(10, 0), day(15, 0))
	end := day(20, 0)
	updated, err := s.engine.Reschedule(s.ctx, r.ID, guestID, nil, &end)
	s.Nil(err)
	s.Equal(day(10, 0), updated.DateStart)
	s.Equal(end, updated.DateEnd)
}

func (s *EngineTestSuite) TestRescheduleUnauthorized() {
	r := s.create(day(10, 0), day(15, 0))
	start := day(20, 0)
	_, err := s.engine.Reschedule(s.ctx, r.ID, strangerID, &start, nil)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *EngineTestSuite) TestRescheduleNotFound() {
	start := day(20, 0)
	_, err := s.engine.Reschedule(s.ctx, 404, guestID, &start, nil)
	s.ErrorIs(err, ErrReservationNotFound)
}

func (s *EngineTestSuite) TestRescheduleAfterStayBegan() {
	r := s.create(day(10, 0), day(15, 0))
	s.clock.Advance(10 * 24 * time.Hour) // Jan 11, mid-stay
	start := day(20, 0)
	end := day(25, 0)
	_, err := s.engine.Reschedule(s.ctx, r.ID, guestID, &start, &end)
	s.ErrorIs(err, ErrAlreadyStarted)
}

func (s *EngineTestSuite) TestRescheduleConflictExcludesSelf() {
	s.create(day(1, 14), day(5, 0))
	r := s.create(day(10, 0), day(15, 0))

	// Into the sibling's window: conflict.
	start := day(3, 0)
	end := day(6, 0)
	_, err := s.engine.Reschedule(s.ctx, r.ID, guestID, &start, &end)
	s.ErrorIs(err, ErrDateConflict)

	// Shrinking within its own window only "conflicts" with itself.
	start2 := day(11, 0)
	end2 := day(14, 0)
	updated, err := s.engine.Reschedule(s.ctx, r.ID, guestID, &start2, &end2)
	s.Nil(err)
	s.Equal(start2, updated.DateStart)
	s.assertNoOverlapInvariant()
}

func (s *EngineTestSuite) TestReschedulePaidReserve() {
	r := s.create(day(10, 0), day(15, 0))
	_, err := s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.Require().Nil(err)

	start := day(20, 0)
	_, err = s.engine.Reschedule(s.ctx, r.ID, guestID, &start, nil)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *EngineTestSuite) TestCancelByOwner() {
	r := s.create(day(10, 0), day(15, 0))
	s.Nil(s.engine.Cancel(s.ctx, r.ID, ownerID))
	s.Equal(types.RESERVE_CANCELED, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestCancelByStranger() {
	r := s.create(day(10, 0), day(15, 0))
	err := s.engine.Cancel(s.ctx, r.ID, strangerID)
	s.ErrorIs(err, ErrUnauthorized)
	s.Equal(types.RESERVE_CONFIRMED, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestCancelAfterStayBegan() {
	r := s.create(day(10, 0), day(15, 0))
	s.clock.Advance(12 * 24 * time.Hour)
	err := s.engine.Cancel(s.ctx, r.ID, guestID)
	s.ErrorIs(err, ErrAlreadyStarted)
}

func (s *EngineTestSuite) TestCancelIsIrreversible() {
	r := s.create(day(10, 0), day(15, 0))
	s.Require().Nil(s.engine.Cancel(s.ctx, r.ID, guestID))

	err := s.engine.Cancel(s.ctx, r.ID, guestID)
	s.ErrorIs(err, ErrInvalidTransition)

	start := day(20, 0)
	_, err = s.engine.Reschedule(s.ctx, r.ID, guestID, &start, nil)
	s.ErrorIs(err, ErrInvalidTransition)

	_, err = s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.ErrorIs(err, ErrInvalidTransition)

	s.Equal(types.RESERVE_CANCELED, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestCancelPaidReserve() {
	r := s.create(day(10, 0), day(15, 0))
	_, err := s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_BOLETO)
	s.Require().Nil(err)

	s.Nil(s.engine.Cancel(s.ctx, r.ID, ownerID))
	s.Equal(types.RESERVE_CANCELED, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestPayComputesCeilDayAmount() {
	// 2026-01-10T14:00Z to 2026-01-15T11:00Z at 100/day: 5 billed days.
	r := s.create(day(10, 14), day(15, 11))
	payment, err := s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_CREDIT_CARD)
	s.Nil(err)
	s.Equal(float64(500), payment.Amount)
	s.Equal(types.PAYMENT_CREDIT_CARD, payment.Method)
	s.Equal(s.clock.Now(), payment.PaidAt)
	s.Equal(types.RESERVE_PAID, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestDoublePayRejected() {
	r := s.create(day(10, 14), day(15, 11))
	_, err := s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.Require().Nil(err)

	_, err = s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.ErrorIs(err, ErrAlreadyPaid)
	s.Len(s.store.payments, 1)
}

func (s *EngineTestSuite) TestPayAfterPropertyRemoved() {
	r := s.create(day(10, 14), day(15, 11))
	delete(s.store.properties, propertyID)

	_, err := s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.ErrorIs(err, ErrPropertyNotFound)
	s.Empty(s.store.payments)
	s.Equal(types.RESERVE_CONFIRMED, s.store.reserves[r.ID].Status)
}

func (s *EngineTestSuite) TestRescheduleAfterPropertyRemoved() {
	r := s.create(day(10, 0), day(15, 0))
	delete(s.store.properties, propertyID)

	start := day(20, 0)
	_, err := s.engine.Reschedule(s.ctx, r.ID, guestID, &start, nil)
	s.ErrorIs(err, ErrPropertyNotFound)
	s.Equal(day(10, 0), s.store.reserves[r.ID].DateStart)
}

func (s *EngineTestSuite) TestPayUnauthorized() {
	r := s.create(day(10, 0), day(15, 0))
	_, err := s.engine.Pay(s.ctx, r.ID, ownerID, types.PAYMENT_PIX)
	s.ErrorIs(err, ErrUnauthorized)
	s.Empty(s.store.payments)
}

func (s *EngineTestSuite) TestPropertyValuationRequiresCompletedStay() {
	r := s.create(day(10, 0), day(15, 0))
	_, err := s.engine.CreatePropertyValuation(s.ctx, r.ID, guestID, 5, "great stay")
	s.ErrorIs(err, ErrStayNotCompleted)

	s.clock.Advance(20 * 24 * time.Hour)
	v, err := s.engine.CreatePropertyValuation(s.ctx, r.ID, guestID, 5, "great stay")
	s.Nil(err)
	s.Equal(uint8(5), v.Note)

	_, err = s.engine.CreatePropertyValuation(s.ctx, r.ID, guestID, 3, "second thoughts")
	s.ErrorIs(err, ErrAlreadyValuated)
}

func (s *EngineTestSuite) TestPropertyValuationOnlyByGuest() {
	r := s.create(day(10, 0), day(15, 0))
	s.clock.Advance(20 * 24 * time.Hour)
	_, err := s.engine.CreatePropertyValuation(s.ctx, r.ID, ownerID, 1, "")
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *EngineTestSuite) TestClientValuationOnlyByOwner() {
	r := s.create(day(10, 0), day(15, 0))
	s.clock.Advance(20 * 24 * time.Hour)

	_, err := s.engine.CreateClientValuation(s.ctx, r.ID, guestID, 4, "")
	s.ErrorIs(err, ErrUnauthorized)

	v, err := s.engine.CreateClientValuation(s.ctx, r.ID, ownerID, 4, "tidy guest")
	s.Nil(err)
	s.Equal(uint8(4), v.Note)

	_, err = s.engine.CreateClientValuation(s.ctx, r.ID, ownerID, 2, "")
	s.ErrorIs(err, ErrAlreadyValuated)
}

func (s *EngineTestSuite) TestIsPayable() {
	r := s.create(day(10, 0), day(15, 0))
	payable, err := s.engine.IsPayable(s.ctx, r.ID)
	s.Nil(err)
	s.True(payable)

	_, err = s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.Require().Nil(err)

	payable, err = s.engine.IsPayable(s.ctx, r.ID)
	s.Nil(err)
	s.False(payable)
}

func (s *EngineTestSuite) TestIsValuatable() {
	r := s.create(day(10, 0), day(15, 0))

	ok, err := s.engine.IsValuatable(s.ctx, r.ID, ValuationOfProperty)
	s.Nil(err)
	s.False(ok) // not paid, stay not over

	_, err = s.engine.Pay(s.ctx, r.ID, guestID, types.PAYMENT_PIX)
	s.Require().Nil(err)

	ok, err = s.engine.IsValuatable(s.ctx, r.ID, ValuationOfProperty)
	s.Nil(err)
	s.True(ok)

	s.clock.Advance(20 * 24 * time.Hour)
	_, err = s.engine.CreatePropertyValuation(s.ctx, r.ID, guestID, 5, "")
	s.Require().Nil(err)

	ok, err = s.engine.IsValuatable(s.ctx, r.ID, ValuationOfProperty)
	s.Nil(err)
	s.False(ok)

	ok, err = s.engine.IsValuatable(s.ctx, r.ID, ValuationOfClient)
	s.Nil(err)
	s.True(ok)
}

func (s *EngineTestSuite) TestDomainErrorsPassThroughUnwrapped() {
	_, err := s.engine.IsValuatable(s.ctx, 404, ValuationOfProperty)
	s.ErrorIs(err, ErrReservationNotFound)
	s.False(errors.Is(err, ErrStorageUnavailable))
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestNewEngineDefaultsToRealClock(t *testing.T) {
	e := NewEngine(newMemStore(), nil)
	assert.NotNil(t, e.clock)
}
