package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/dtos"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

type ProductController struct {
	service *services.ProductService
	log     *zap.Logger
}

func NewProductController(service *services.ProductService, log *zap.Logger) *ProductController {
	return &ProductController{service: service, log: log}
}

// GetAllProducts lists active products, filtered by ?q= when given
func (c *ProductController) GetAllProducts(ctx *gin.Context) {
	products, err := c.service.ListProducts(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, products)
}

func (c *ProductController) GetProductByID(ctx *gin.Context) {
	id, ok := paramID(ctx, "product")
	if !ok {
		return
	}
	product, err := c.service.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) CreateProduct(ctx *gin.Context) {
	var req dtos.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product := &models.ProductModel{
		Name:      req.Name,
		Maker:     req.Maker,
		JanCode:   req.JanCode,
		Width:     req.Width,
		Height:    req.Height,
		Depth:     req.Depth,
		ImagePath: req.ImagePath,
	}
	if req.Price != nil {
		product.Price = *req.Price
	}

	created, err := c.service.CreateProduct(ctx.Request.Context(), product)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// UpdateProduct refuses dimension changes that would break a placement of the product
func (c *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "product")
	if !ok {
		return
	}
	var req dtos.UpdateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, violations, err := c.service.UpdateProduct(ctx.Request.Context(), id, services.ProductPatch{
		Name:      req.Name,
		Maker:     req.Maker,
		JanCode:   req.JanCode,
		Width:     req.Width,
		Height:    req.Height,
		Depth:     req.Depth,
		Price:     req.Price,
		ImagePath: req.ImagePath,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	if len(violations) > 0 {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product change would break existing placements", "errors": violations})
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := paramID(ctx, "product")
	if !ok {
		return
	}
	if err := c.service.DeleteProduct(ctx.Request.Context(), id); err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ImportProducts reads an uploaded .xlsx catalogue from the "file" form field
func (c *ProductController) ImportProducts(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := c.service.ImportFromExcel(ctx.Request.Context(), file, ctx.PostForm("sheet"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, result)
}
