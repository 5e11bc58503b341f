package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
)

func SetupPlacementRoutes(router gin.IRouter, auth gin.HandlerFunc, placementController *controllers.PlacementController) {
	placement := router.Group("/placements")
	placement.Use(auth)
	{
		placement.POST("/place", placementController.PlaceProduct)
		placement.POST("/update", placementController.UpdatePlacement)
		placement.POST("/delete", placementController.DeletePlacement)
		placement.POST("/clear", placementController.ClearShelf)
		placement.GET("/:id", placementController.GetPlacement)
	}
}
