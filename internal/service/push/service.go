package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	apperrors "github.com/empezz5-crypto/mdmoney/pkg/errors"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
)

// Service fans a notification out to every registered subscription and
// prunes endpoints the push service reports as gone.
type Service struct {
	subs      repository.SubscriptionRepository
	sender    Sender
	publicKey string
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the fan-out. sender may be nil when the push transport
// is unconfigured; send operations then fail with an unavailable error
// while the rest of the API keeps working.
func NewService(subs repository.SubscriptionRepository, sender Sender, publicKey string, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		subs:      subs,
		sender:    sender,
		publicKey: publicKey,
		logger:    logger,
		metrics:   m,
	}
}

// PublicKey returns the VAPID public key browsers use to subscribe.
func (s *Service) PublicKey() (string, error) {
	if s.publicKey == "" {
		return "", apperrors.Unavailable("VAPID_PUBLIC_KEY is missing", nil)
	}
	return s.publicKey, nil
}

// Subscribe upserts a browser subscription; repeat subscriptions of the
// same endpoint overwrite in place.
func (s *Service) Subscribe(ctx context.Context, sub model.PushSubscription) (int, error) {
	if sub.Endpoint == "" {
		return 0, apperrors.BadRequest("subscription required", nil)
	}
	if err := s.subs.Add(ctx, sub); err != nil {
		return 0, err
	}
	return s.subs.Count(ctx)
}

type attempt struct {
	status int
	err    error
}

// FanOut delivers the payload to every current subscription concurrently,
// waits for all attempts to settle, prunes gone endpoints, and returns
// {sent, total} counts over the pre-pruning set. Individual failures never
// abort the batch; only an unconfigured transport or a storage failure
// surfaces as an error.
func (s *Service) FanOut(ctx context.Context, payload model.NotificationPayload) (model.FanoutResult, error) {
	if s.sender == nil {
		return model.FanoutResult{}, apperrors.Unavailable("push transport is not configured", nil)
	}

	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return model.FanoutResult{}, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return model.FanoutResult{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	start := time.Now()
	attempts := make([]attempt, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub model.PushSubscription) {
			defer wg.Done()
			status, err := s.sender.Send(ctx, sub, body)
			attempts[i] = attempt{status: status, err: err}
		}(i, sub)
	}
	wg.Wait()
	s.metrics.FanoutDuration.Observe(time.Since(start).Seconds())

	result := model.FanoutResult{Total: len(subs)}
	for i, a := range attempts {
		if a.err == nil && a.status >= 200 && a.status < 300 {
			result.Sent++
			s.metrics.NotificationsSent.Inc()
			continue
		}

		s.metrics.NotificationsFailed.Inc()
		if a.status == http.StatusNotFound || a.status == http.StatusGone {
			// Endpoint is permanently gone; drop it. Transient failures are
			// retried implicitly by the next scheduled send.
			if err := s.subs.Remove(ctx, subs[i]); err != nil {
				s.logger.Error().Err(err).Msg("failed to prune subscription")
				continue
			}
			s.metrics.SubscriptionsPruned.Inc()
			s.logger.Info().Int("status", a.status).Msg("pruned gone subscription")
		} else {
			s.logger.Warn().Int("status", a.status).Err(a.err).Msg("push delivery failed")
		}
	}

	return result, nil
}
