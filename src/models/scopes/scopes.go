package scopes

import (
	"estadia/src/types"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// ActiveReserves narrows a reserves query to rows that count against
// availability (everything not canceled).
func ActiveReserves() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status <> ?", types.RESERVE_CANCELED)
	}
}

// ForProperty narrows a reserves query to a single property.
func ForProperty(propertyID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("property_id = ?", propertyID)
	}
}
