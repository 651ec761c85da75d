package models

import (
	"estadia/src/types"
)

// PropertyValuation is the guest's rating of the property after a stay.
type PropertyValuation struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ReserveID uint   `gorm:"uniqueIndex" json:"reserve_id,omitempty"`
	Note      uint8  `json:"note,omitempty"`
	Comment   string `json:"comment,omitempty"`

	Reserve *Reserve `gorm:"foreignKey:reserve_id" json:"-"`

	types.Timestamps
}

// ClientValuation is the owner's rating of the guest after a stay.
type ClientValuation struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ReserveID uint   `gorm:"uniqueIndex" json:"reserve_id,omitempty"`
	Note      uint8  `json:"note,omitempty"`
	Comment   string `json:"comment,omitempty"`

	Reserve *Reserve `gorm:"foreignKey:reserve_id" json:"-"`

	types.Timestamps
}
