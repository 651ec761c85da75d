package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"estadia/src/booking"
	"estadia/src/config"
	"estadia/src/db"
	"estadia/src/lib"
	"estadia/src/models"
	"estadia/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func GenerateJWT(user *models.User) (string, error) {
	claims := types.Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(jwtKey)
}

// GenerateResetToken mints a short-lived single-use token for the password
// reset flow. The flow id lets the redeem step burn the token in redis.
func GenerateResetToken(user *models.User) (token string, flowID string, err error) {
	flowID = uuid.NewString()
	claims := types.ResetClaims{
		Email:  user.Email,
		FlowID: flowID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(config.ResetTokenTTLMinutes * time.Minute)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	token, err = t.SignedString(jwtKey)
	return token, flowID, err
}

func ParseResetToken(token string) (*types.ResetClaims, error) {
	claims := &types.ResetClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func GetOwnReservations(guestID uint) ([]models.Reserve, error) {
	db := db.GetDb()
	var reserves []models.Reserve
	err := db.
		Model(&models.Reserve{}).
		Where(&models.Reserve{GuestID: guestID}).
		Preload("Property").
		Preload("Payment").
		Preload("PropertyValuation").
		Order("date_start DESC").
		Find(&reserves).
		Error
	return reserves, err
}

// GetOwnerReservations lists reserves placed on any property the owner rents
// out, newest stay first.
func GetOwnerReservations(ownerID uint) ([]models.Reserve, error) {
	db := db.GetDb()
	var reserves []models.Reserve
	err := db.
		Model(&models.Reserve{}).
		Joins("JOIN properties ON properties.id = reserves.property_id").
		Where("properties.owner_id = ?", ownerID).
		Preload("Property").
		Preload("Guest").
		Preload("Payment").
		Preload("ClientValuation").
		Order("reserves.date_start DESC").
		Find(&reserves).
		Error
	return reserves, err
}

// RankedProperties lists properties with their average guest rating, best
// rated first. An optional city narrows the listing.
func RankedProperties(city string) ([]models.Property, error) {
	db := db.GetDb()
	var properties []models.Property
	q := db.
		Model(&models.Property{}).
		Select("properties.*, AVG(property_valuations.note) AS avg_rating").
		Joins("LEFT JOIN reserves ON reserves.property_id = properties.id").
		Joins("LEFT JOIN property_valuations ON property_valuations.reserve_id = reserves.id").
		Group("properties.id").
		Order("avg_rating DESC NULLS LAST").
		Preload("Images")
	if city != "" {
		q = q.Where("properties.city = ?", city)
	}
	err := q.Find(&properties).Error
	return properties, err
}

// AvailableProperties lists properties with no active reserve overlapping the
// requested window.
func AvailableProperties(iv booking.Interval) ([]models.Property, error) {
	db := db.GetDb()
	var properties []models.Property
	err := db.
		Model(&models.Property{}).
		Where(`NOT EXISTS (
			SELECT 1 FROM reserves
			WHERE reserves.property_id = properties.id
			AND reserves.status <> ?
			AND reserves.deleted_at IS NULL
			AND reserves.date_start < ? AND reserves.date_end > ?
		)`, types.RESERVE_CANCELED, iv.End, iv.Start).
		Preload("Images").
		Find(&properties).
		Error
	return properties, err
}

// SendPasswordResetEmail is fired on a goroutine from the forgot-password
// handler; failures are logged, never surfaced to the caller.
func SendPasswordResetEmail(email, token string) {
	appURL := os.Getenv("APP_URL")
	link := fmt.Sprintf("%s/reset-password?token=%s", appURL, token)
	err := lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: "Estadia",
		To:       []string{email},
		Subject:  "Recupere sua senha",
		Body:     fmt.Sprintf("<p>Use o link abaixo para redefinir sua senha. Ele expira em %d minutos.</p><p><a href=%q>Redefinir senha</a></p>", config.ResetTokenTTLMinutes, link),
		Html:     true,
	})
	if err != nil {
		log.Printf("Failed to send reset email to %s: %s\n", email, err.Error())
	}
}
