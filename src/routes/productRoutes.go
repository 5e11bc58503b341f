package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
)

func SetupProductRoutes(router gin.IRouter, auth gin.HandlerFunc, productController *controllers.ProductController) {
	product := router.Group("/products")
	product.Use(auth)
	{
		product.GET("", productController.GetAllProducts)
		product.GET("/:id", productController.GetProductByID)
		product.POST("", productController.CreateProduct)
		product.POST("/import", productController.ImportProducts)
		product.PUT("/:id", productController.UpdateProduct)
		product.DELETE("/:id", productController.DeleteProduct)
	}
}
