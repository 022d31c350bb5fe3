package transaction

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/service/transaction"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service *transaction.Service
}

func NewHandler(service *transaction.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/transactions")
	{
		group.GET("", h.List)
		group.GET("/summary", h.Summary)
		group.PUT("/:id/category", h.SetCategory)
	}
}

func filterFromQuery(c *gin.Context) (model.TransactionFilter, error) {
	filter := model.TransactionFilter{
		AccountNumber:   c.Query("accountNumber"),
		Category:        c.Query("category"),
		TransactionType: c.Query("transactionType"),
	}

	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, apperrors.BadRequest("startDate must be YYYY-MM-DD", err)
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, apperrors.BadRequest("endDate must be YYYY-MM-DD", err)
		}
		// Include the whole end day.
		t = t.Add(24*time.Hour - time.Second)
		filter.EndDate = &t
	}
	return filter, nil
}

func (h *Handler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	txs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(txs, ""))
}

func (h *Handler) Summary(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		handler.Error(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), filter)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary, ""))
}

type setCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

func (h *Handler) SetCategory(c *gin.Context) {
	var req setCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("category is required", err))
		return
	}

	tx, err := h.service.SetCategory(c.Request.Context(), c.Param("id"), req.Category)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tx, "category updated"))
}
