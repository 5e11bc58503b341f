// Package app assembles the services shared by the HTTP server and shelfctl.
package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shelfwise/shelfwise-backend/src/cache"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/db"
	"github.com/shelfwise/shelfwise-backend/src/routes"
	"github.com/shelfwise/shelfwise-backend/src/seed"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const janitorInterval = 5 * time.Minute

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *cache.Cache
	Log    *zap.Logger
	Redis  *redis.Client

	Users       *services.UserService
	Products    *services.ProductService
	Shelves     *services.ShelfService
	Placements  *services.PlacementService
	Maintenance *services.MaintenanceService
	Seeder      *seed.Seeder
}

// New wires every service on top of an open connection.
func New(cfg *config.Config, conn *gorm.DB, log *zap.Logger) *App {
	store := cache.New()
	store.StartJanitor(janitorInterval)

	a := &App{Config: cfg, DB: conn, Cache: store, Log: log}
	a.Users = services.NewUserService(conn, cfg.JWTSecret, log.Named("users"))
	a.Products = services.NewProductService(conn, cfg.Rules, store, log.Named("products"))
	a.Shelves = services.NewShelfService(conn, cfg.Rules, store, log.Named("shelves"))
	a.Placements = services.NewPlacementService(conn, cfg.Rules, store, log.Named("placements"))
	a.Maintenance = services.NewMaintenanceService(conn, cfg.Rules, store, log.Named("maintenance"))
	a.Seeder = seed.New(conn, a.Products, a.Shelves, a.Placements, a.Users, log.Named("seed"))
	return a
}

// Open connects to cfg.DSN, migrates the schema and wires the services.
// When cfg.Redis.Addr is set the cache shares invalidations through redis.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	conn, err := db.Connect(cfg.DSN, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, log, db.DefaultMigrateOptions()); err != nil {
		db.Close(conn, log)
		return nil, err
	}
	a := New(cfg, conn, log)

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log.Named("redis"))
		if err == nil {
			err = a.Cache.Attach(ctx, rdb, log.Named("cache"))
			if err != nil {
				_ = rdb.Close()
			}
		}
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
	}
	return a, nil
}

func (a *App) Services() routes.Services {
	return routes.Services{
		Users:       a.Users,
		Products:    a.Products,
		Shelves:     a.Shelves,
		Placements:  a.Placements,
		Maintenance: a.Maintenance,
	}
}

func (a *App) Close() {
	a.Cache.Close()
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("failed to close redis", zap.Error(err))
		}
	}
	db.Close(a.DB, a.Log)
}
