package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/controllers"
	"github.com/shelfwise/shelfwise-backend/src/middleware"
	"github.com/shelfwise/shelfwise-backend/src/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Services bundles what the HTTP surface is built from.
type Services struct {
	Users       *services.UserService
	Products    *services.ProductService
	Shelves     *services.ShelfService
	Placements  *services.PlacementService
	Maintenance *services.MaintenanceService
}

// Router builds the gin engine with every route registered.
func Router(cfg *config.Config, svc Services, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log), middleware.SetupCORS(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	SetupUserRoutes(r, controllers.NewUserController(svc.Users, log))
	SetupProductRoutes(r, auth, controllers.NewProductController(svc.Products, log))
	SetupShelfRoutes(r, auth, controllers.NewShelfController(svc.Shelves, svc.Maintenance, cfg.DisplayScale, log))
	SetupPlacementRoutes(r, auth, controllers.NewPlacementController(svc.Placements, log))
	SetupTemplateRoutes(r, auth, controllers.NewTemplateController(svc.Shelves, log))

	return r
}
