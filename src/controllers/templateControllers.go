package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shelfwise/shelfwise-backend/src/models"
	"github.com/shelfwise/shelfwise-backend/src/services"
	"go.uber.org/zap"
)

type TemplateController struct {
	service *services.ShelfService
	log     *zap.Logger
}

func NewTemplateController(service *services.ShelfService, log *zap.Logger) *TemplateController {
	return &TemplateController{service: service, log: log}
}

func (c *TemplateController) GetAllTemplates(ctx *gin.Context) {
	templates, err := c.service.ListTemplates(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, templates)
}

func (c *TemplateController) CreateTemplate(ctx *gin.Context) {
	var tpl models.ShelfTemplateModel
	if err := ctx.ShouldBindJSON(&tpl); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := c.service.CreateTemplate(ctx.Request.Context(), &tpl)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}
