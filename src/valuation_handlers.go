package main

import (
	"net/http"

	"estadia/src/booking"
	"estadia/src/db"
	"estadia/src/models"
	"estadia/src/types"

	"github.com/gin-gonic/gin"
)

func valuationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reservations/:id/property-valuation", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateValuationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			valuation, err := bookingEngine.CreatePropertyValuation(ctx, params.ID, userId, body.Note, body.Comment)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": valuation})
		}).
		POST("/reservations/:id/client-valuation", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreateValuationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			valuation, err := bookingEngine.CreateClientValuation(ctx, params.ID, userId, body.Note, body.Comment)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": valuation})
		}).
		GET("/reservations/:id/valuatable", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			kind := booking.ValuationOfProperty
			if ctx.Query("kind") == "client" {
				kind = booking.ValuationOfClient
			}
			ok, err := bookingEngine.IsValuatable(ctx, params.ID, kind)
			if err != nil {
				abortBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"valuatable": ok})
		}).
		GET("/properties/:id/valuations", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var valuations []models.PropertyValuation
			err := db.
				Model(&models.PropertyValuation{}).
				Joins("JOIN reserves ON reserves.id = property_valuations.reserve_id").
				Where("reserves.property_id = ?", params.ID).
				Order("property_valuations.created_at DESC").
				Find(&valuations).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": valuations, "count": len(valuations)})
		})
	return g
}
