package push

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	pushsvc "github.com/empezz5-crypto/mdmoney/internal/service/push"
	"github.com/empezz5-crypto/mdmoney/internal/service/scheduler"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
	"github.com/empezz5-crypto/mdmoney/pkg/validator"
)

type memScheduleRepo struct {
	schedule model.Schedule
	exists   bool
}

func (m *memScheduleRepo) Get(ctx context.Context) (model.Schedule, error) {
	if !m.exists {
		return model.DefaultSchedule(), nil
	}
	return m.schedule, nil
}

func (m *memScheduleRepo) Update(ctx context.Context, patch model.SchedulePatch) (model.Schedule, error) {
	if !m.exists {
		m.schedule = model.DefaultSchedule()
		m.exists = true
	}
	if patch.Enabled != nil {
		m.schedule.Enabled = *patch.Enabled
	}
	if patch.TimeOfDay != nil {
		m.schedule.TimeOfDay = *patch.TimeOfDay
	}
	if patch.Title != nil {
		m.schedule.Title = *patch.Title
	}
	if patch.Body != nil {
		m.schedule.Body = *patch.Body
	}
	if patch.Timezone != nil {
		m.schedule.Timezone = *patch.Timezone
	}
	if patch.LastSentOn != nil {
		m.schedule.LastSentOn = *patch.LastSentOn
	}
	return m.schedule, nil
}

func (m *memScheduleRepo) MarkSent(ctx context.Context, date string) (bool, error) {
	if m.schedule.LastSentOn == date {
		return false, nil
	}
	m.schedule.LastSentOn = date
	m.exists = true
	return true, nil
}

func (m *memScheduleRepo) ClearSent(ctx context.Context, date, previous string) error {
	if m.schedule.LastSentOn == date {
		m.schedule.LastSentOn = previous
	}
	return nil
}

type memSubscriptionRepo struct {
	subs map[string]model.PushSubscription
}

func (m *memSubscriptionRepo) Add(ctx context.Context, sub model.PushSubscription) error {
	if m.subs == nil {
		m.subs = make(map[string]model.PushSubscription)
	}
	m.subs[sub.Endpoint] = sub
	return nil
}

func (m *memSubscriptionRepo) ListAll(ctx context.Context) ([]model.PushSubscription, error) {
	out := make([]model.PushSubscription, 0, len(m.subs))
	for _, sub := range m.subs {
		out = append(out, sub)
	}
	return out, nil
}

func (m *memSubscriptionRepo) Remove(ctx context.Context, sub model.PushSubscription) error {
	delete(m.subs, sub.Endpoint)
	return nil
}

func (m *memSubscriptionRepo) Count(ctx context.Context) (int, error) {
	return len(m.subs), nil
}

type okSender struct{}

func (okSender) Send(ctx context.Context, sub model.PushSubscription, payload []byte) (int, error) {
	return http.StatusCreated, nil
}

type fixture struct {
	engine   *gin.Engine
	schedule *memScheduleRepo
	subs     *memSubscriptionRepo
}

func newFixture(t *testing.T, publicKey, cronSecret string, sender pushsvc.Sender) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterCustom())

	schedule := &memScheduleRepo{}
	subs := &memSubscriptionRepo{}
	m := metrics.NewWith("test", prometheus.NewRegistry())

	svc := pushsvc.NewService(subs, sender, publicKey, zerolog.Nop(), m)
	tick := scheduler.NewService(schedule, svc, zerolog.Nop(), m)

	engine := gin.New()
	api := engine.Group("/api")
	NewHandler(svc, tick, schedule, cronSecret).RegisterRoutes(api)

	return &fixture{engine: engine, schedule: schedule, subs: subs}
}

func (f *fixture) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestGetScheduleReturnsDefaultsWhenUnset(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	w := f.do(http.MethodGet, "/api/push/schedule", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Enabled)
	assert.Equal(t, "09:00", got.TimeOfDay)
	assert.Equal(t, "숏츠 체크인", got.Title)
	assert.Equal(t, "UTC", got.Timezone)
	assert.Empty(t, got.LastSentOn)
}

func TestUpdateScheduleAppliesDefaultsAndResetsSentMarker(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})
	f.schedule.exists = true
	f.schedule.schedule = model.Schedule{
		Enabled:    true,
		TimeOfDay:  "21:30",
		Title:      "old",
		Body:       "old",
		Timezone:   "Asia/Seoul",
		LastSentOn: "2026-03-10",
	}

	w := f.do(http.MethodPost, "/api/push/schedule", gin.H{"enabled": true, "time": "08:15"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.Schedule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Enabled)
	assert.Equal(t, "08:15", got.TimeOfDay)
	// Omitted fields fall back to defaults rather than keeping old values.
	assert.Equal(t, "숏츠 체크인", got.Title)
	assert.Equal(t, "UTC", got.Timezone)
	// Any config change re-arms today's send.
	assert.Empty(t, got.LastSentOn)
}

func TestUpdateScheduleRejectsBadTime(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	for _, bad := range []string{"25:00", "9:00", "09:60", "morning"} {
		w := f.do(http.MethodPost, "/api/push/schedule", gin.H{"time": bad}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "time %q", bad)
	}
}

func TestUpdateScheduleRejectsBadTimezone(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	w := f.do(http.MethodPost, "/api/push/schedule", gin.H{"timezone": "Mars/Olympus"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeStoresAndCounts(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	w := f.do(http.MethodPost, "/api/push/subscribe", gin.H{
		"subscription": gin.H{
			"endpoint": "https://push.example/abc",
			"keys":     gin.H{"p256dh": "p", "auth": "a"},
		},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, float64(1), got["total"])
}

func TestSubscribeRejectsMissingEndpoint(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	w := f.do(http.MethodPost, "/api/push/subscribe", gin.H{"subscription": gin.H{}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicKey(t *testing.T) {
	f := newFixture(t, "test-public-key", "", okSender{})

	w := f.do(http.MethodGet, "/api/push/public-key", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test-public-key")
}

func TestPublicKeyMissingIsServerError(t *testing.T) {
	f := newFixture(t, "", "", okSender{})

	w := f.do(http.MethodGet, "/api/push/public-key", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTickRequiresSecretWhenConfigured(t *testing.T) {
	f := newFixture(t, "pk", "s3cret", okSender{})

	w := f.do(http.MethodPost, "/api/push/tick", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/push/tick", nil, map[string]string{"x-cron-secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/push/tick", nil, map[string]string{"x-cron-secret": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTickOpenWithoutSecret(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})

	w := f.do(http.MethodPost, "/api/push/tick", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.TickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Sent)
	assert.Equal(t, model.SkipDisabled, got.Reason)
}

func TestTickEndToEndSendsOncePerDay(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})
	_ = f.subs.Add(context.Background(), model.PushSubscription{Endpoint: "https://push.example/abc"})

	now := time.Now().UTC()
	if now.Second() >= 57 {
		// Do not let the minute roll over between setup and the tick.
		time.Sleep(time.Until(now.Truncate(time.Minute).Add(time.Minute)))
		now = time.Now().UTC()
	}
	f.schedule.exists = true
	f.schedule.schedule = model.Schedule{
		Enabled:   true,
		TimeOfDay: now.Format("15:04"),
		Title:     "t",
		Body:      "b",
		Timezone:  "UTC",
	}

	w := f.do(http.MethodPost, "/api/push/tick", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first model.TickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.True(t, first.Sent)

	w = f.do(http.MethodPost, "/api/push/tick", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second model.TickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.False(t, second.Sent)
	assert.Equal(t, model.SkipAlreadySent, second.Reason)
}

// ctxSender fails whenever the delivery context has been canceled.
type ctxSender struct{}

func (ctxSender) Send(ctx context.Context, sub model.PushSubscription, payload []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return http.StatusCreated, nil
}

func TestTickSurvivesClientDisconnect(t *testing.T) {
	f := newFixture(t, "pk", "", ctxSender{})
	_ = f.subs.Add(context.Background(), model.PushSubscription{Endpoint: "https://push.example/abc"})

	now := time.Now().UTC()
	if now.Second() >= 57 {
		// Do not let the minute roll over between setup and the tick.
		time.Sleep(time.Until(now.Truncate(time.Minute).Add(time.Minute)))
		now = time.Now().UTC()
	}
	f.schedule.exists = true
	f.schedule.schedule = model.Schedule{
		Enabled:   true,
		TimeOfDay: now.Format("15:04"),
		Title:     "t",
		Body:      "b",
		Timezone:  "UTC",
	}

	// The caller hangs up before dispatch. The day is already claimed, so
	// deliveries must proceed regardless.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/push/tick", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.TickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Sent)
	assert.Equal(t, now.Format("2006-01-02"), f.schedule.schedule.LastSentOn)
}

func TestTestEndpointReportsFanoutCounts(t *testing.T) {
	f := newFixture(t, "pk", "", okSender{})
	_ = f.subs.Add(context.Background(), model.PushSubscription{Endpoint: "https://push.example/a"})
	_ = f.subs.Add(context.Background(), model.PushSubscription{Endpoint: "https://push.example/b"})

	w := f.do(http.MethodPost, "/api/push/test", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got model.FanoutResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.FanoutResult{Sent: 2, Total: 2}, got)
}
