package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/dtos"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/planogram"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shelfRouter(shelves ShelfManager, maintenance ShelfMaintainer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	c := NewShelfController(shelves, maintenance, 2, zap.NewNop())
	r := gin.New()
	r.POST("/shelves", c.CreateShelf)
	r.GET("/shelves/:id", c.GetShelfByID)
	r.GET("/shelves/:id/layout", c.GetLayout)
	r.PUT("/shelves/:id/segments", c.UpdateSegmentHeights)
	r.POST("/shelves/:id/validate", c.ValidateShelf)
	r.POST("/shelves/:id/resolve", c.ResolveOverlaps)
	return r
}

func TestCreateShelf(t *testing.T) {
	var gotHeights []float64
	shelves := &fakeShelves{createShelf: func(s *models.ShelfModel, heights []float64) (*models.ShelfModel, error) {
		gotHeights = heights
		if s.Width < 30 {
			return nil, fmt.Errorf("%w: width %.1fcm is outside 30-300cm", services.ErrInvalidShelf, s.Width)
		}
		s.ID = 1
		return s, nil
	}}
	router := shelfRouter(shelves, nil)

	w := serve(router, http.MethodPost, "/shelves", `{"name":"A","width":120,"depth":45,"totalHeight":180,"segment_heights":[40,40]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []float64{40, 40}, gotHeights)

	w = serve(router, http.MethodPost, "/shelves", `{"name":"A","width":10,"depth":45,"totalHeight":180}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "outside 30-300cm")

	w = serve(router, http.MethodPost, "/shelves", `{"width":120}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetShelf_NotFound(t *testing.T) {
	shelves := &fakeShelves{getShelf: func(int) (*models.ShelfModel, error) {
		return nil, services.ErrShelfNotFound
	}}
	w := serve(shelfRouter(shelves, nil), http.MethodGet, "/shelves/42", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"shelf not found"}`, w.Body.String())
}

func TestGetLayout_Scales(t *testing.T) {
	shelves := &fakeShelves{getLayout: func(id int) (*models.ShelfModel, error) {
		return &models.ShelfModel{ID: id, Width: 120, TotalHeight: 180, Segments: []models.SegmentModel{
			{ID: 1, Level: 0, Height: 30, IsActive: true, Placements: []models.PlacementModel{
				{ID: 5, XPosition: 10, OccupiedWidth: 13, FaceCount: 2, Product: &models.ProductModel{Name: "Cola", Height: 20.5}},
			}},
		}}, nil
	}}

	w := serve(shelfRouter(shelves, nil), http.MethodGet, "/shelves/3/layout", "")
	require.Equal(t, http.StatusOK, w.Code)
	var layout dtos.ShelfLayout
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &layout))
	assert.Equal(t, 240.0, layout.PixelWidth)
	require.Len(t, layout.Segments, 1)
	p := layout.Segments[0].Placements[0]
	assert.Equal(t, 20.0, p.PixelX)
	assert.Equal(t, 26.0, p.PixelWidth)
	assert.Equal(t, 41.0, p.PixelHeight)
}

func TestUpdateSegmentHeights_Refused(t *testing.T) {
	var got map[int]float64
	shelves := &fakeShelves{updateHeights: func(_ int, heights map[int]float64) ([]models.SegmentModel, error) {
		got = heights
		return nil, &services.SegmentHeightError{Reasons: []string{"segment 0: Cola is 20.5cm tall"}}
	}}

	w := serve(shelfRouter(shelves, nil), http.MethodPut, "/shelves/1/segments", `{"segments":[{"segment_id":3,"height":18}]}`)

	assert.Equal(t, map[int]float64{3: 18}, got)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"segment 0: Cola is 20.5cm tall"}, body.Errors)
}

func TestValidateShelf_Options(t *testing.T) {
	var got services.ValidateOptions
	maintenance := &fakeMaintenance{validate: func(id int, opts services.ValidateOptions) (*services.ShelfReport, error) {
		got = opts
		return &services.ShelfReport{ShelfID: id}, nil
	}}
	router := shelfRouter(&fakeShelves{}, maintenance)

	w := serve(router, http.MethodPost, "/shelves/1/validate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ValidateOptions{}, got)

	w = serve(router, http.MethodPost, "/shelves/1/validate", `{"fix":true,"strategy":"spread"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ValidateOptions{Fix: true, Strategy: planogram.StrategySpread}, got)

	w = serve(router, http.MethodPost, "/shelves/1/validate", `{"strategy":"shuffle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveOverlaps(t *testing.T) {
	maintenance := &fakeMaintenance{resolve: func(id int, strategy planogram.Strategy, dryRun bool) (*services.ShelfResolution, error) {
		if id == 2 {
			return nil, services.ErrShelfNotFound
		}
		return &services.ShelfResolution{ShelfID: id, Strategy: strategy, DryRun: dryRun, Moved: 2}, nil
	}}
	router := shelfRouter(&fakeShelves{}, maintenance)

	w := serve(router, http.MethodPost, "/shelves/1/resolve", `{"strategy":"compact","dry_run":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res services.ShelfResolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.DryRun)
	assert.Equal(t, planogram.StrategyCompact, res.Strategy)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/shelves/1/resolve", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/shelves/1/resolve", `{"strategy":"tidy"}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/shelves/2/resolve", `{"strategy":"compact"}`).Code)
}
