package shorts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/service/shorts"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type Handler struct {
	service *shorts.Service
}

func NewHandler(service *shorts.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/shorts")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
	rg.POST("/n8n/trigger", h.TriggerWorkflow)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items, ""))
}

func (h *Handler) Create(c *gin.Context) {
	var req shorts.CreateShortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("topic and subtopic are required", err))
		return
	}

	short, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(short, "short created"))
}

func (h *Handler) Update(c *gin.Context) {
	var patch model.ShortPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handler.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	short, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(short, "short updated"))
}

func (h *Handler) Delete(c *gin.Context) {
	removed, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"removed": removed}, "short deleted"))
}

// TriggerWorkflow fires the production workflow for a new short and records
// it in the script stage once the workflow accepts the job.
func (h *Handler) TriggerWorkflow(c *gin.Context) {
	var req shorts.CreateShortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("topic and subtopic are required", err))
		return
	}

	short, err := h.service.TriggerWorkflow(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(short, "workflow triggered"))
}
