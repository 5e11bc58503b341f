package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

type UserController struct {
	service *services.UserService
	log     *zap.Logger
}

func NewUserController(service *services.UserService, log *zap.Logger) *UserController {
	return &UserController{service: service, log: log}
}

// AuthenticateUser handles POST /login and returns a bearer token
func (c *UserController) AuthenticateUser(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := c.service.AuthenticateUser(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, models.LoginResponse{Token: token})
}
