package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
)

func SetupUserRoutes(router gin.IRouter, userController *controllers.UserController) {
	// Public routes
	router.POST("/login", userController.AuthenticateUser)
}
