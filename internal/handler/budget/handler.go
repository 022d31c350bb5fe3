package budget

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/service/budget"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type Handler struct {
	service *budget.Service
}

func NewHandler(service *budget.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/budget")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
		group.GET("/analysis", h.Analyze)
	}
}

// yearMonthQuery reads the optional year/month query pair; zero values mean
// "current period" and are resolved by the service.
func yearMonthQuery(c *gin.Context) (int, int, error) {
	var year, month int
	var err error

	if raw := c.Query("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			return 0, 0, apperrors.BadRequest("year must be a number", err)
		}
	}
	if raw := c.Query("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil || month < 1 || month > 12 {
			return 0, 0, apperrors.BadRequest("month must be between 1 and 12", err)
		}
	}
	return year, month, nil
}

func (h *Handler) List(c *gin.Context) {
	year, month, err := yearMonthQuery(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	budgets, err := h.service.List(c.Request.Context(), year, month)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(budgets, ""))
}

func (h *Handler) Create(c *gin.Context) {
	var req budget.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("year, month, category and budgetedAmount are required", err))
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(b, "budget created"))
}

func (h *Handler) Update(c *gin.Context) {
	var req budget.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	b, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(b, "budget updated"))
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil, "budget deleted"))
}

func (h *Handler) Analyze(c *gin.Context) {
	year, month, err := yearMonthQuery(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), year, month)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(analysis, ""))
}
