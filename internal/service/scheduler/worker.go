package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Worker is the in-process tick trigger. It fires the scheduler on a fixed
// short interval; an external cloud scheduler hitting the tick endpoint is
// the other, independent trigger for the same decision.
type Worker struct {
	svc      *Service
	interval time.Duration
	logger   zerolog.Logger
	cron     *cron.Cron
}

func NewWorker(svc *Service, interval time.Duration, logger zerolog.Logger) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Worker{
		svc:      svc,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the trigger until ctx is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.cron = cron.New()
	w.cron.Schedule(cron.Every(w.interval), cron.FuncJob(func() {
		if _, err := w.svc.Tick(ctx); err != nil {
			w.logger.Warn().Err(err).Msg("scheduler tick failed")
		}
	}))
	w.cron.Start()
	w.logger.Info().Dur("interval", w.interval).Msg("push scheduler started")

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info().Msg("push scheduler stopped")
}
