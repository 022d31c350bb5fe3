package ai

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/service/ai"
)

type Handler struct {
	service *ai.Service
}

func NewHandler(service *ai.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/auto", h.GenerateIdea)
}

// GenerateIdea produces a fresh content idea, optionally seeded with a
// keyword; an empty body is valid and lets the model pick from trends.
func (h *Handler) GenerateIdea(c *gin.Context) {
	var req model.IdeaRequest
	// Keyword is optional, so a missing or empty body is fine.
	_ = c.ShouldBindJSON(&req)

	idea, err := h.service.GenerateIdea(c.Request.Context(), req.Keyword)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(idea, "idea generated"))
}
