package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"estadia/src/booking"
	"estadia/src/config"
	"estadia/src/db"
	"estadia/src/models"
	"estadia/src/types"
	"estadia/src/utils"

	"github.com/gin-gonic/gin"
)

// bookingStatus maps engine errors onto HTTP statuses. Bad input, including
// dates that already passed, is 400; conflicts over availability, payments
// and lifecycle state come back as 409.
func bookingStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrAlreadyStarted):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrPropertyNotFound),
		errors.Is(err, booking.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrUnauthorized),
		errors.Is(err, booking.ErrSelfBooking):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrDateConflict),
		errors.Is(err, booking.ErrAlreadyPaid),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, booking.ErrAlreadyValuated),
		errors.Is(err, booking.ErrStayNotCompleted):
		return http.StatusConflict
	case errors.Is(err, booking.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortBookingError(ctx *gin.Context, err error) {
	ctx.JSON(bookingStatus(err), gin.H{"error": err.Error()})
}

func reserveHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/properties/:id/reserve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateReserveRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			start, _ := time.Parse(config.TIME_PARSE_FORMAT, body.DateStart)
			end, _ := time.Parse(config.TIME_PARSE_FORMAT, body.DateEnd)
			iv, err := booking.NewInterval(start, end)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			guestId := ctx.GetUint("id")
			reserve, err := bookingEngine.CreateReserve(ctx, params.ID, guestId, iv)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reserve})
		}).
		GET("/reservations", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			forOwner, err := strconv.ParseBool(ctx.DefaultQuery("owner", "false"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var data []models.Reserve
			if forOwner {
				data, err = utils.GetOwnerReservations(userId)
			} else {
				data, err = utils.GetOwnReservations(userId)
			}
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var reserve models.Reserve
			err := db.
				Preload("Property").
				Preload("Payment").
				Preload("PropertyValuation").
				Preload("ClientValuation").
				Where(&models.Reserve{ID: params.ID}).
				First(&reserve).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reserve.GuestID != userId && (reserve.Property == nil || reserve.Property.OwnerID != userId) {
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reserve})
		}).
		PUT("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateReserveRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var newStart, newEnd *time.Time
			if body.DateStart != nil {
				t, err := time.Parse(config.TIME_PARSE_FORMAT, *body.DateStart)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				newStart = &t
			}
			if body.DateEnd != nil {
				t, err := time.Parse(config.TIME_PARSE_FORMAT, *body.DateEnd)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				newEnd = &t
			}
			userId := ctx.GetUint("id")
			reserve, err := bookingEngine.Reschedule(ctx, params.ID, userId, newStart, newEnd)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reserve})
		}).
		DELETE("/reservations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			if err := bookingEngine.Cancel(ctx, params.ID, userId); err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/reservations/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			payment, err := bookingEngine.Pay(ctx, params.ID, userId, body.PaymentMethod)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": payment})
		}).
		GET("/reservations/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var reserve models.Reserve
			err := db.
				Preload("Property").
				Preload("Payment").
				Where(&models.Reserve{ID: params.ID}).
				First(&reserve).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reserve.GuestID != userId && (reserve.Property == nil || reserve.Property.OwnerID != userId) {
				ctx.Status(http.StatusForbidden)
				return
			}
			if reserve.Payment == nil {
				payable, err := bookingEngine.IsPayable(ctx, params.ID)
				if err != nil {
					abortBookingError(ctx, err)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": nil, "payable": payable})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reserve.Payment, "payable": false})
		})
	return g
}
