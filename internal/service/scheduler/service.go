package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/empezz5-crypto/mdmoney/internal/model"
	"github.com/empezz5-crypto/mdmoney/internal/repository"
	"github.com/empezz5-crypto/mdmoney/pkg/metrics"
)

// Dispatcher sends the daily notification to all subscribers.
type Dispatcher interface {
	FanOut(ctx context.Context, payload model.NotificationPayload) (model.FanoutResult, error)
}

// Service decides, on each tick, whether the daily notification is due and
// dispatches it at most once per calendar day in the schedule's timezone.
// Ticks arrive from two independent triggers (the in-process worker and the
// external tick endpoint); the repository's atomic sent-marker claim is what
// keeps the day single-send under that overlap.
type Service struct {
	schedules repository.ScheduleRepository
	push      Dispatcher
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(schedules repository.ScheduleRepository, push Dispatcher, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		schedules: schedules,
		push:      push,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Tick runs one scheduling decision. The time gate is an exact string match
// of the current "HH:MM" wall clock against the configured time; because
// ticks recur well inside a minute, the match window is a tick period wide
// and the daily claim suppresses duplicates within it.
func (s *Service) Tick(ctx context.Context) (model.TickResult, error) {
	schedule, err := s.schedules.Get(ctx)
	if err != nil {
		s.metrics.TickTotal.WithLabelValues(metrics.TickError).Inc()
		return model.TickResult{}, err
	}

	if !schedule.Enabled || schedule.TimeOfDay == "" {
		s.metrics.TickTotal.WithLabelValues(metrics.TickDisabled).Inc()
		return model.TickResult{Reason: model.SkipDisabled}, nil
	}

	localNow := s.now().In(schedule.Location())
	if localNow.Format("15:04") != schedule.TimeOfDay {
		s.metrics.TickTotal.WithLabelValues(metrics.TickNotTime).Inc()
		return model.TickResult{Reason: model.SkipNotTime}, nil
	}

	today := localNow.Format("2006-01-02")
	if schedule.LastSentOn == today {
		s.metrics.TickTotal.WithLabelValues(metrics.TickAlreadySent).Inc()
		return model.TickResult{Reason: model.SkipAlreadySent}, nil
	}

	// Claim the day before dispatching; a concurrent tick that loses the
	// claim skips instead of double-sending.
	claimed, err := s.schedules.MarkSent(ctx, today)
	if err != nil {
		s.metrics.TickTotal.WithLabelValues(metrics.TickError).Inc()
		return model.TickResult{}, err
	}
	if !claimed {
		s.metrics.TickTotal.WithLabelValues(metrics.TickAlreadySent).Inc()
		return model.TickResult{Reason: model.SkipAlreadySent}, nil
	}

	result, err := s.push.FanOut(ctx, model.NotificationPayload{
		Title: schedule.Title,
		Body:  schedule.Body,
		URL:   "/",
	})
	if err != nil {
		// Total send failure (unconfigured transport, storage down): release
		// the claim so the day is not recorded as served.
		if clearErr := s.schedules.ClearSent(ctx, today, schedule.LastSentOn); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("failed to release sent marker")
		}
		s.metrics.TickTotal.WithLabelValues(metrics.TickError).Inc()
		return model.TickResult{}, err
	}

	s.metrics.TickTotal.WithLabelValues(metrics.TickSent).Inc()
	s.logger.Info().
		Str("date", today).
		Int("sent", result.Sent).
		Int("total", result.Total).
		Msg("daily notification dispatched")
	return model.TickResult{Sent: true}, nil
}
