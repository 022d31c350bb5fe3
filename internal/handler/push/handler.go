package push

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/empezz5-crypto/mdmoney/internal/middleware"
	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	"github.com/empezz5-crypto/mdmoney/internal/service/push"
	"github.com/empezz5-crypto/mdmoney/internal/service/scheduler"
)

const cronSecretHeader = "x-cron-secret"

// Test payload dispatched by POST /push/test, bypassing the schedule gates.
var testPayload = model.NotificationPayload{
	Title: "테스트 알림",
	Body:  "푸시 알림이 정상적으로 작동합니다.",
	URL:   "/",
}

// Handler exposes the push notification boundary. Responses keep the wire
// shapes the dashboard's service worker and admin UI already consume, so no
// response envelope here.
type Handler struct {
	pushSvc    *push.Service
	tickSvc    *scheduler.Service
	schedules  repository.ScheduleRepository
	cronSecret string
}

func NewHandler(pushSvc *push.Service, tickSvc *scheduler.Service, schedules repository.ScheduleRepository, cronSecret string) *Handler {
	return &Handler{
		pushSvc:    pushSvc,
		tickSvc:    tickSvc,
		schedules:  schedules,
		cronSecret: cronSecret,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/push")
	{
		// The VAPID key never changes while the process lives.
		group.GET("/public-key", middleware.Cache(3600), h.PublicKey)
		group.POST("/subscribe", h.Subscribe)
		group.GET("/schedule", h.GetSchedule)
		group.POST("/schedule", h.UpdateSchedule)
		group.POST("/tick", h.Tick)
		group.POST("/test", h.Test)
	}
}

func (h *Handler) PublicKey(c *gin.Context) {
	key, err := h.pushSvc.PublicKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "VAPID_PUBLIC_KEY is missing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": key})
}

type subscribeRequest struct {
	Subscription model.PushSubscription `json:"subscription"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Subscription.Endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "subscription required"})
		return
	}

	total, err := h.pushSvc.Subscribe(c.Request.Context(), req.Subscription)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": total})
}

func (h *Handler) GetSchedule(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type updateScheduleRequest struct {
	Enabled  bool   `json:"enabled"`
	Time     string `json:"time" binding:"omitempty,hhmm"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Timezone string `json:"timezone" binding:"omitempty,tzname"`
}

// UpdateSchedule replaces the schedule configuration; unspecified fields
// fall back to the documented defaults, and lastSentOn is always reset so a
// config change re-arms today's send.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if req.Time == "" {
		req.Time = model.DefaultScheduleTime
	}
	if req.Title == "" {
		req.Title = model.DefaultTitle
	}
	if req.Body == "" {
		req.Body = model.DefaultBody
	}
	if req.Timezone == "" {
		req.Timezone = model.DefaultScheduleTZ
	}
	lastSentOn := ""

	schedule, err := h.schedules.Update(c.Request.Context(), model.SchedulePatch{
		Enabled:    &req.Enabled,
		TimeOfDay:  &req.Time,
		Title:      &req.Title,
		Body:       &req.Body,
		Timezone:   &req.Timezone,
		LastSentOn: &lastSentOn,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// Tick is the externally triggered scheduler invocation, e.g. from a cloud
// scheduler. When a cron secret is configured the caller must present it;
// without one the endpoint is open.
func (h *Handler) Tick(c *gin.Context) {
	if h.cronSecret != "" {
		header := c.GetHeader(cronSecretHeader)
		if subtle.ConstantTimeCompare([]byte(h.cronSecret), []byte(header)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
	}

	// The day is claimed before dispatch, so a dropped connection must not
	// cancel deliveries mid fan-out. Detach from the request lifetime.
	result, err := h.tickSvc.Tick(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Test(c *gin.Context) {
	result, err := h.pushSvc.FanOut(c.Request.Context(), testPayload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
