package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
)

func SetupTemplateRoutes(router gin.IRouter, auth gin.HandlerFunc, templateController *controllers.TemplateController) {
	template := router.Group("/templates")
	template.Use(auth)
	{
		template.GET("", templateController.GetAllTemplates)
		template.POST("", templateController.CreateTemplate)
	}
}
