package bank

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/handler"
	"github.com/empezz5-crypto/mdmoney/internal/service/bank"
)

type Handler struct {
	service *bank.Service
}

func NewHandler(service *bank.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/kb")
	{
		group.GET("/accounts", h.ListRemoteAccounts)
		group.POST("/sync/:accountNumber", h.Sync)
	}
}

// ListRemoteAccounts proxies the open banking account list so the dashboard
// can offer accounts for registration.
func (h *Handler) ListRemoteAccounts(c *gin.Context) {
	accounts, err := h.service.ListRemoteAccounts(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(accounts, ""))
}

func (h *Handler) Sync(c *gin.Context) {
	result, err := h.service.Sync(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result, "sync completed"))
}
