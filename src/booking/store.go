package booking

import (
	"context"
	"errors"

	"estadia/src/models"
	"estadia/src/models/scopes"
	"estadia/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx is the storage the engine sees inside one transaction. Lookup methods
// return (nil, nil) when the record is absent; the engine maps that to its
// not-found errors.
type Tx interface {
	// PropertyByID locks the property row for the remainder of the
	// transaction, serializing concurrent bookings on the same property.
	PropertyByID(id uint) (*models.Property, error)
	// ReserveByID loads a reserve with its property.
	ReserveByID(id uint) (*models.Reserve, error)
	// OverlapExists reports whether any non-canceled reserve on the property
	// overlaps the candidate interval. excludeID skips one reserve (used when
	// a reservation is checked against its own siblings), zero skips none.
	OverlapExists(propertyID uint, iv Interval, excludeID uint) (bool, error)
	CreateReserve(r *models.Reserve) error
	SaveReserveDates(id uint, iv Interval) error
	SaveReserveStatus(id uint, status types.ReserveStatus) error
	PaymentByReserve(reserveID uint) (*models.Payment, error)
	CreatePayment(p *models.Payment) error
	HasPropertyValuation(reserveID uint) (bool, error)
	HasClientValuation(reserveID uint) (bool, error)
	CreatePropertyValuation(v *models.PropertyValuation) error
	CreateClientValuation(v *models.ClientValuation) error
}

// Store runs a function inside a single database transaction. The engine
// performs its availability read and the subsequent write through the same
// Tx, so the check and the commit cannot be split by a concurrent writer.
type Store interface {
	Transact(ctx context.Context, fn func(Tx) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transact(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{tx: tx})
	})
}

type gormTx struct {
	tx *gorm.DB
}

func (t *gormTx) PropertyByID(id uint) (*models.Property, error) {
	var p models.Property
	err := t.tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(scopes.WithID(id)).
		First(&p).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *gormTx) ReserveByID(id uint) (*models.Reserve, error) {
	var r models.Reserve
	err := t.tx.
		Preload("Property").
		Scopes(scopes.WithID(id)).
		First(&r).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *gormTx) OverlapExists(propertyID uint, iv Interval, excludeID uint) (bool, error) {
	var count int64
	q := t.tx.
		Model(&models.Reserve{}).
		Scopes(scopes.ForProperty(propertyID), scopes.ActiveReserves()).
		Where("date_start < ? AND date_end > ?", iv.End, iv.Start)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *gormTx) CreateReserve(r *models.Reserve) error {
	return t.tx.Create(r).Error
}

func (t *gormTx) SaveReserveDates(id uint, iv Interval) error {
	return t.tx.
		Model(&models.Reserve{}).
		Scopes(scopes.WithID(id)).
		Updates(map[string]any{"date_start": iv.Start, "date_end": iv.End}).
		Error
}

func (t *gormTx) SaveReserveStatus(id uint, status types.ReserveStatus) error {
	return t.tx.
		Model(&models.Reserve{}).
		Scopes(scopes.WithID(id)).
		Update("status", status).
		Error
}

func (t *gormTx) PaymentByReserve(reserveID uint) (*models.Payment, error) {
	var p models.Payment
	err := t.tx.
		Where(&models.Payment{ReserveID: reserveID}).
		First(&p).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *gormTx) CreatePayment(p *models.Payment) error {
	return t.tx.Create(p).Error
}

func (t *gormTx) HasPropertyValuation(reserveID uint) (bool, error) {
	var count int64
	err := t.tx.
		Model(&models.PropertyValuation{}).
		Where("reserve_id = ?", reserveID).
		Count(&count).
		Error
	return count > 0, err
}

func (t *gormTx) HasClientValuation(reserveID uint) (bool, error) {
	var count int64
	err := t.tx.
		Model(&models.ClientValuation{}).
		Where("reserve_id = ?", reserveID).
		Count(&count).
		Error
	return count > 0, err
}

func (t *gormTx) CreatePropertyValuation(v *models.PropertyValuation) error {
	return t.tx.Create(v).Error
}

func (t *gormTx) CreateClientValuation(v *models.ClientValuation) error {
	return t.tx.Create(v).Error
}
