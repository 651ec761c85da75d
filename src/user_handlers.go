package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"estadia/src/config"
	"estadia/src/db"
	"estadia/src/lib"
	"estadia/src/models"
	"estadia/src/types"
	"estadia/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func authRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hashed, err := utils.HashPassword(body.Password)
			if err != nil {
				log.Printf("Error hashing password: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			user := models.User{
				Name:     body.Name,
				Email:    body.Email,
				Phone:    body.Phone,
				CPF:      body.CPF,
				Password: hashed,
			}
			db := db.GetDb()
			if err := db.Create(&user).Error; err != nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": user.ID})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			err := db.Where(&models.User{Email: body.Email}).First(&user).Error
			if err != nil || !utils.CheckPassword(user.Password, body.Password) {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			token, err := utils.GenerateJWT(&user)
			if err != nil {
				log.Printf("Error signing token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			go lib.CacheLastLogin(ctx.Copy(), user.Email, time.Now())
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		}).
		POST("/forgot-password", func(ctx *gin.Context) {
			var body types.ForgotPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			err := db.Where(&models.User{Email: body.Email}).First(&user).Error
			if err == nil {
				token, _, err := utils.GenerateResetToken(&user)
				if err != nil {
					log.Printf("Error signing reset token: %s\n", err.Error())
				} else {
					go utils.SendPasswordResetEmail(user.Email, token)
				}
			}
			// Same answer whether or not the email exists.
			ctx.JSON(http.StatusOK, gin.H{"message": "if the email is registered, a reset link has been sent"})
		}).
		POST("/reset-password", func(ctx *gin.Context) {
			var body types.ResetPasswordRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			claims, err := utils.ParseResetToken(body.Token)
			if err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			used, err := lib.ResetFlowRevoked(ctx, claims.FlowID)
			if err != nil {
				log.Printf("Error checking reset flow: %s\n", err.Error())
				ctx.Status(http.StatusServiceUnavailable)
				return
			}
			if used {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			uid, err := strconv.Atoi(claims.Subject)
			if err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			hashed, err := utils.HashPassword(body.Password)
			if err != nil {
				log.Printf("Error hashing password: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			db := db.GetDb()
			err = db.Model(&models.User{}).
				Where(&models.User{ID: uint(uid)}).
				Update("password", hashed).
				Error
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if err := lib.RevokeResetFlow(ctx, claims.FlowID, config.ResetTokenTTLMinutes*time.Minute); err != nil {
				log.Printf("Error revoking reset flow: %s\n", err.Error())
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "password updated"})
		})
	return guest
}

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/users", func(ctx *gin.Context) {
			db := db.GetDb()
			var users []models.User
			err := db.
				Model(&models.User{}).
				Select("id", "name", "email", "created_at").
				Order("name ASC").
				Find(&users).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
		}).
		GET("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var user models.User
			err := db.
				Select("id", "name", "email", "created_at").
				Where(&models.User{ID: params.ID}).
				First(&user).
				Error
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		GET("/profile", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var user models.User
			err := db.
				Preload("Properties").
				Where(&models.User{ID: userId}).
				First(&user).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		PUT("/profile", func(ctx *gin.Context) {
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			updates := map[string]any{}
			if body.Name != nil {
				updates["name"] = *body.Name
			}
			if body.Phone != nil {
				updates["phone"] = *body.Phone
			}
			if body.Password != nil {
				hashed, err := utils.HashPassword(*body.Password)
				if err != nil {
					ctx.Status(http.StatusInternalServerError)
					return
				}
				updates["password"] = hashed
			}
			if len(updates) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			db := db.GetDb()
			err := db.Model(&models.User{}).
				Where(&models.User{ID: userId}).
				Updates(updates).
				Error
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
