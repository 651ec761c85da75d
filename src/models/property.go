package models

import (
	"estadia/src/types"
)

type Property struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	OwnerID          uint    `json:"owner_id,omitempty"`
	Type             string  `json:"type,omitempty"`
	Description      string  `json:"description,omitempty"`
	NumberOfBedroom  uint    `json:"number_of_bedroom,omitempty"`
	NumberOfSuite    uint    `json:"number_of_suite,omitempty"`
	NumberOfGarage   uint    `json:"number_of_garage,omitempty"`
	NumberOfRoom     uint    `json:"number_of_room,omitempty"`
	NumberOfBathroom uint    `json:"number_of_bathroom,omitempty"`
	OutdoorArea      bool    `json:"outdoor_area,omitempty"`
	Pool             bool    `json:"pool,omitempty"`
	Barbecue         bool    `json:"barbecue,omitempty"`
	Street           string  `json:"street,omitempty"`
	Number           string  `json:"number,omitempty"`
	Neighborhood     string  `json:"neighborhood,omitempty"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	CEP              string  `json:"cep,omitempty"`
	DailyRate        float64 `json:"daily_rate,omitempty"`
	Slug             string  `gorm:"index" json:"slug,omitempty"`

	// Read-side aggregate, scanned from the ranked listing query's
	// avg_rating alias; never written or migrated.
	AvgRating *float64 `gorm:"->;-:migration" json:"avg_rating,omitempty"`

	Owner    *User           `gorm:"foreignKey:owner_id" json:"owner,omitempty"`
	Images   []PropertyImage `gorm:"foreignKey:property_id" json:"images,omitempty"`
	Reserves []Reserve       `gorm:"foreignKey:property_id" json:"reserves,omitempty"`

	types.Timestamps
}

type PropertyImage struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	PropertyID uint   `json:"property_id,omitempty"`
	ObjectKey  string `json:"-"`
	URL        string `json:"url,omitempty"`

	types.Timestamps
}
