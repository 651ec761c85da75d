package models

import (
	"time"

	"estadia/src/types"
)

// Reserve is the unit the booking engine manages. PropertyID and GuestID are
// immutable after creation; dates form the half-open interval
// [DateStart, DateEnd).
type Reserve struct {
	ID         uint                `gorm:"primarykey" json:"id"`
	PropertyID uint                `gorm:"index:idx_reserves_property_status" json:"property_id,omitempty"`
	GuestID    uint                `json:"guest_id,omitempty"`
	DateStart  time.Time           `json:"date_start,omitempty"`
	DateEnd    time.Time           `json:"date_end,omitempty"`
	Status     types.ReserveStatus `gorm:"default:'confirmed';index:idx_reserves_property_status" json:"status,omitempty"`

	Property          *Property          `gorm:"foreignKey:property_id" json:"property,omitempty"`
	Guest             *User              `gorm:"foreignKey:guest_id" json:"guest,omitempty"`
	Payment           *Payment           `gorm:"foreignKey:reserve_id" json:"payment,omitempty"`
	PropertyValuation *PropertyValuation `gorm:"foreignKey:reserve_id" json:"property_valuation,omitempty"`
	ClientValuation   *ClientValuation   `gorm:"foreignKey:reserve_id" json:"client_valuation,omitempty"`

	types.Timestamps
}
