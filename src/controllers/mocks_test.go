package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
)

type fakePlacements struct {
	place    func(services.PlaceRequest) (*models.PlacementModel, planogram.Violations, error)
	move     func(services.MoveRequest) (*models.PlacementModel, planogram.Violations, error)
	delete   func(int) (*models.PlacementModel, error)
	clearAll func(int) (int64, error)
	get      func(int) (*models.PlacementModel, error)
}

func (f *fakePlacements) Place(_ context.Context, req services.PlaceRequest) (*models.PlacementModel, planogram.Violations, error) {
	return f.place(req)
}

func (f *fakePlacements) Move(_ context.Context, req services.MoveRequest) (*models.PlacementModel, planogram.Violations, error) {
	return f.move(req)
}

func (f *fakePlacements) Delete(_ context.Context, id int) (*models.PlacementModel, error) {
	return f.delete(id)
}

func (f *fakePlacements) ClearAll(_ context.Context, shelfID int) (int64, error) {
	return f.clearAll(shelfID)
}

func (f *fakePlacements) Get(_ context.Context, id int) (*models.PlacementModel, error) {
	return f.get(id)
}

// fakeShelves embeds the interface so tests only stub what they call.
type fakeShelves struct {
	ShelfManager
	getShelf      func(int) (*models.ShelfModel, error)
	getLayout     func(int) (*models.ShelfModel, error)
	createShelf   func(*models.ShelfModel, []float64) (*models.ShelfModel, error)
	updateHeights func(int, map[int]float64) ([]models.SegmentModel, error)
}

func (f *fakeShelves) GetShelf(_ context.Context, id int) (*models.ShelfModel, error) {
	return f.getShelf(id)
}

func (f *fakeShelves) GetLayout(_ context.Context, id int) (*models.ShelfModel, error) {
	return f.getLayout(id)
}

func (f *fakeShelves) CreateShelf(_ context.Context, shelf *models.ShelfModel, heights []float64) (*models.ShelfModel, error) {
	return f.createShelf(shelf, heights)
}

func (f *fakeShelves) UpdateSegmentHeights(_ context.Context, shelfID int, heights map[int]float64) ([]models.SegmentModel, error) {
	return f.updateHeights(shelfID, heights)
}

type fakeMaintenance struct {
	validate func(int, services.ValidateOptions) (*services.ShelfReport, error)
	resolve  func(int, planogram.Strategy, bool) (*services.ShelfResolution, error)
}

func (f *fakeMaintenance) ValidateShelf(_ context.Context, shelfID int, opts services.ValidateOptions) (*services.ShelfReport, error) {
	return f.validate(shelfID, opts)
}

func (f *fakeMaintenance) ResolveShelf(_ context.Context, shelfID int, strategy planogram.Strategy, dryRun bool) (*services.ShelfResolution, error) {
	return f.resolve(shelfID, strategy, dryRun)
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
