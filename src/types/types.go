package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Email  string `json:"email"`
	FlowID string `json:"flow_id"`
	jwt.RegisteredClaims
}

type ReserveStatus string

const (
	RESERVE_CONFIRMED ReserveStatus = "confirmed"
	RESERVE_PAID      ReserveStatus = "paid"
	RESERVE_CANCELED  ReserveStatus = "canceled"
)

type PaymentMethod string

const (
	PAYMENT_PIX         PaymentMethod = "PIX"
	PAYMENT_CREDIT_CARD PaymentMethod = "CREDIT_CARD"
	PAYMENT_BOLETO      PaymentMethod = "BOLETO"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateUserRequestBody struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequestBody struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreatePropertyRequestBody struct {
	Type             string  `json:"type" binding:"required"`
	Description      string  `json:"description,omitempty" binding:"max=1000"`
	NumberOfBedroom  uint    `json:"number_of_bedroom,omitempty"`
	NumberOfSuite    uint    `json:"number_of_suite,omitempty"`
	NumberOfGarage   uint    `json:"number_of_garage,omitempty"`
	NumberOfRoom     uint    `json:"number_of_room,omitempty"`
	NumberOfBathroom uint    `json:"number_of_bathroom,omitempty"`
	OutdoorArea      bool    `json:"outdoor_area,omitempty"`
	Pool             bool    `json:"pool,omitempty"`
	Barbecue         bool    `json:"barbecue,omitempty"`
	Street           string  `json:"street" binding:"required"`
	Number           string  `json:"number" binding:"required"`
	Neighborhood     string  `json:"neighborhood,omitempty"`
	City             string  `json:"city" binding:"required"`
	State            string  `json:"state" binding:"required"`
	CEP              string  `json:"cep,omitempty"`
	DailyRate        float64 `json:"daily_rate" binding:"required,gt=0"`
}

// CreateReserveRequestBody carries the candidate interval as RFC3339 strings.
// The "reservedate" and "gtdate" validators are registered in main.go.
type CreateReserveRequestBody struct {
	DateStart string `json:"date_start" binding:"required,reservedate"`
	DateEnd   string `json:"date_end" binding:"required,reservedate,gtdate=DateStart"`
}

// UpdateReserveRequestBody allows partial updates; fields left out keep the
// reservation's current values.
type UpdateReserveRequestBody struct {
	DateStart *string `json:"date_start,omitempty" binding:"omitempty,reservedate"`
	DateEnd   *string `json:"date_end,omitempty" binding:"omitempty,reservedate"`
}

type CreatePaymentRequestBody struct {
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,oneof=PIX CREDIT_CARD BOLETO"`
}

type CreateValuationRequestBody struct {
	Note    uint8  `json:"note" binding:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" binding:"max=500"`
}

type AvailablePropertiesQuery struct {
	DateStart string `form:"date_start" binding:"required"`
	DateEnd   string `form:"date_end" binding:"required"`
}
