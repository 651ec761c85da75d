package models

import (
	"time"

	"estadia/src/types"
)

// Payment records the settlement of a reserve. The unique index on ReserveID
// backs the single-payment invariant at the storage level.
type Payment struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	ReserveID uint                `gorm:"uniqueIndex" json:"reserve_id,omitempty"`
	Amount    float64             `json:"amount,omitempty"`
	Method    types.PaymentMethod `json:"method,omitempty"`
	PaidAt    time.Time           `json:"paid_at,omitempty"`

	Reserve *Reserve `gorm:"foreignKey:reserve_id" json:"-"`

	types.Timestamps
}
