package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"estadia/src/booking"
	"estadia/src/config"
	"estadia/src/db"
	awslib "estadia/src/lib/aws"
	"estadia/src/models"
	"estadia/src/types"
	"estadia/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func propertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/properties", func(ctx *gin.Context) {
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			property := models.Property{
				OwnerID:          ownerId,
				Type:             body.Type,
				Description:      body.Description,
				NumberOfBedroom:  body.NumberOfBedroom,
				NumberOfSuite:    body.NumberOfSuite,
				NumberOfGarage:   body.NumberOfGarage,
				NumberOfRoom:     body.NumberOfRoom,
				NumberOfBathroom: body.NumberOfBathroom,
				OutdoorArea:      body.OutdoorArea,
				Pool:             body.Pool,
				Barbecue:         body.Barbecue,
				Street:           body.Street,
				Number:           body.Number,
				Neighborhood:     body.Neighborhood,
				City:             body.City,
				State:            body.State,
				CEP:              body.CEP,
				DailyRate:        body.DailyRate,
			}
			property.Slug = slug.Make(fmt.Sprintf("%s %s %s", body.Type, body.City, uuid.NewString()[:8]))
			db := db.GetDb()
			if err := db.Create(&property).Error; err != nil {
				log.Printf("Error creating property: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": property})
		}).
		GET("/properties", func(ctx *gin.Context) {
			// With a date window the listing narrows to available properties;
			// without one it is the full ranked catalog.
			if ctx.Query("date_start") != "" || ctx.Query("date_end") != "" {
				var query types.AvailablePropertiesQuery
				if err := ctx.ShouldBindQuery(&query); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				start, err := time.Parse(config.TIME_PARSE_FORMAT, query.DateStart)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				end, err := time.Parse(config.TIME_PARSE_FORMAT, query.DateEnd)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				iv, err := booking.NewInterval(start, end)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "date_end must be after date_start"})
					return
				}
				data, err := utils.AvailableProperties(iv)
				if err != nil {
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
				return
			}
			data, err := utils.RankedProperties(ctx.Query("city"))
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var property models.Property
			err := db.
				Preload("Owner").
				Preload("Images").
				Where(&models.Property{ID: params.ID}).
				First(&property).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		}).
		DELETE("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var property models.Property
				if err := tx.Where(&models.Property{ID: params.ID}).First(&property).Error; err != nil {
					return err
				}
				if property.OwnerID != ownerId {
					return booking.ErrUnauthorized
				}
				var count int64
				err := tx.Model(&models.Reserve{}).
					Where("property_id = ? AND status <> ? AND date_end > ?", params.ID, types.RESERVE_CANCELED, time.Now()).
					Count(&count).
					Error
				if err != nil {
					return err
				}
				if count > 0 {
					return booking.ErrDateConflict
				}
				var images []models.PropertyImage
				tx.Where(&models.PropertyImage{PropertyID: params.ID}).Find(&images)
				for _, img := range images {
					go awslib.S3DeleteImage(ctx.Copy(), img.ObjectKey)
				}
				return tx.Delete(&property).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				if errors.Is(err, booking.ErrUnauthorized) {
					ctx.Status(http.StatusForbidden)
					return
				}
				if errors.Is(err, booking.ErrDateConflict) {
					ctx.JSON(http.StatusConflict, gin.H{"error": "property has upcoming reservations"})
					return
				}
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/properties/:id/images", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var property models.Property
			if err := db.Where(&models.Property{ID: params.ID}).First(&property).Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if property.OwnerID != ownerId {
				ctx.Status(http.StatusForbidden)
				return
			}
			fileHeader, err := ctx.FormFile("image")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			file, err := fileHeader.Open()
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			defer file.Close()
			key := fmt.Sprintf("properties/%d/%s", property.ID, uuid.NewString())
			contentType := fileHeader.Header.Get("Content-Type")
			url, err := awslib.S3UploadImage(ctx, key, file, contentType)
			if err != nil {
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			image := models.PropertyImage{
				PropertyID: property.ID,
				ObjectKey:  key,
				URL:        *url,
			}
			if err := db.Create(&image).Error; err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": image})
		}).
		GET("/properties/:id/reservations", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var property models.Property
			if err := db.Where(&models.Property{ID: params.ID}).First(&property).Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if property.OwnerID != ownerId {
				ctx.Status(http.StatusForbidden)
				return
			}
			var reserves []models.Reserve
			err := db.
				Model(&models.Reserve{}).
				Where(&models.Reserve{PropertyID: params.ID}).
				Preload("Guest").
				Preload("Payment").
				Order("date_start DESC").
				Find(&reserves).
				Error
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reserves, "count": len(reserves)})
		})
	return g
}
