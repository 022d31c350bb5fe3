package shorts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
)

// CreateShortRequest is the validated creation input.
type CreateShortRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Subtopic string `json:"subtopic" binding:"required"`
	Hook     string `json:"hook"`
	Notes    string `json:"notes"`
}

// Service owns the shorts production pipeline and the n8n hand-off.
type Service struct {
	repo       repository.ShortRepository
	webhookURL string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewService(repo repository.ShortRepository, webhookURL string, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Short, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, req CreateShortRequest) (*model.Short, error) {
	return s.create(ctx, req, model.ShortStatusIdea)
}

func (s *Service) create(ctx context.Context, req CreateShortRequest, status string) (*model.Short, error) {
	now := time.Now().UTC()
	short := &model.Short{
		ID:        uuid.New().String(),
		Topic:     req.Topic,
		Subtopic:  req.Subtopic,
		Hook:      req.Hook,
		Notes:     req.Notes,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, short); err != nil {
		return nil, err
	}
	return short, nil
}

func (s *Service) Update(ctx context.Context, id string, patch model.ShortPatch) (*model.Short, error) {
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	return s.repo.Delete(ctx, id)
}

type webhookPayload struct {
	Topic       string `json:"topic"`
	Subtopic    string `json:"subtopic"`
	Hook        string `json:"hook"`
	Notes       string `json:"notes"`
	RequestedAt string `json:"requestedAt"`
}

// TriggerWorkflow posts the idea to the configured n8n webhook and, once the
// hand-off succeeds, records the item with status "script".
func (s *Service) TriggerWorkflow(ctx context.Context, req CreateShortRequest) (*model.Short, error) {
	if s.webhookURL == "" {
		return nil, apperrors.Unavailable("N8N_WEBHOOK_URL is missing", nil)
	}

	body, err := json.Marshal(webhookPayload{
		Topic:       req.Topic,
		Subtopic:    req.Subtopic,
		Hook:        req.Hook,
		Notes:       req.Notes,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Upstream("n8n webhook failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, apperrors.Upstream("n8n webhook failed", fmt.Errorf("webhook returned %d", resp.StatusCode))
	}

	return s.create(ctx, req, model.ShortStatusScript)
}
