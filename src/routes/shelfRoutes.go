package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
)

func SetupShelfRoutes(router gin.IRouter, auth gin.HandlerFunc, shelfController *controllers.ShelfController) {
	// Protected routes
	shelf := router.Group("/shelves")
	shelf.Use(auth)
	{
		shelf.GET("", shelfController.GetAllShelves)
		shelf.GET("/:id", shelfController.GetShelfByID)
		shelf.POST("", shelfController.CreateShelf)
		shelf.PUT("/:id", shelfController.UpdateShelf)
		shelf.DELETE("/:id", shelfController.DeleteShelf)
		shelf.GET("/:id/layout", shelfController.GetLayout)
		shelf.GET("/:id/utilization", shelfController.GetUtilization)
		shelf.GET("/:id/statistics", shelfController.GetStatistics)
		shelf.PUT("/:id/segments", shelfController.UpdateSegmentHeights)
		shelf.POST("/:id/validate", shelfController.ValidateShelf)
		shelf.POST("/:id/resolve", shelfController.ResolveOverlaps)
	}
}
