package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/service/account"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

type Handler struct {
	service *account.Service
}

func NewHandler(service *account.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/accounts")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Deactivate)
	}
}

func (h *Handler) List(c *gin.Context) {
	accounts, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(accounts, ""))
}

func (h *Handler) Get(c *gin.Context) {
	acct, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(acct, ""))
}

func (h *Handler) Create(c *gin.Context) {
	var req account.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("accountNumber and accountName are required", err))
		return
	}

	acct, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(acct, "account created"))
}

func (h *Handler) Update(c *gin.Context) {
	var req account.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Error(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	acct, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(acct, "account updated"))
}

// Deactivate soft-deletes the account; its transactions stay queryable.
func (h *Handler) Deactivate(c *gin.Context) {
	acct, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(acct, "account deactivated"))
}
