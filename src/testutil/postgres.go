// Package testutil starts a throwaway postgres for service tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shelfwise/shelfwise-backend/src/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	once    sync.Once
	shared  *gorm.DB
	dsn     string
	initErr error
)

// tables are truncated before every test, children first.
var tables = "placement_models, segment_models, shelf_models, shelf_template_models, product_models, user_models"

// SetupTestPostgres returns a migrated, empty database. The container is started once per
// test binary and reaped when it exits. Tests are skipped under -short or without docker.
func SetupTestPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		shared, initErr = start()
	})
	if initErr != nil {
		t.Fatalf("start postgres: %v", initErr)
	}

	if err := shared.Exec("TRUNCATE " + tables + " RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return shared
}

func start() (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("shelfwise"),
		postgres.WithUsername("shelfwise"),
		postgres.WithPassword("shelfwise"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}
	dsn, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, zap.NewNop(), db.DefaultMigrateOptions()); err != nil {
		return nil, err
	}
	return conn, nil
}

// SetupTestDSN is SetupTestPostgres for code that opens its own connection.
func SetupTestDSN(t *testing.T) string {
	t.Helper()
	SetupTestPostgres(t)
	return dsn
}
