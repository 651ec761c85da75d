package models

import (
	"estadia/src/types"
)

type User struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Password string `json:"-"`

	Properties []Property `gorm:"foreignKey:owner_id" json:"properties,omitempty"`
	Reserves   []Reserve  `gorm:"foreignKey:guest_id" json:"reserves,omitempty"`

	types.Timestamps
}
