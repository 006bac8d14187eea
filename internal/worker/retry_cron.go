package worker

// retry_cron.go
// Background goroutine that moves due reorder e-mail retries back onto the
// main queue. It skips ticks while the SMTP breaker is open so a downed relay
// is not hammered.

import (
	"context"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 15 * time.Second
	retryBatchSize    = 20
)

type RetryCronConfig struct {
	Store  JobStore
	Mailer ReorderMailer
}

// StartRetryCron ticks until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				promoteRetries(ctx, cfg, time.Now())
			}
		}
	}()
}

func promoteRetries(ctx context.Context, cfg RetryCronConfig, now time.Time) int {
	if cfg.Mailer != nil && cfg.Mailer.BreakerState() == infra.BreakerOpen {
		log.Debug().Msg("retry_cron: smtp breaker is open, skipping tick")
		return 0
	}
	moved, err := cfg.Store.PromoteDue(ctx, QueueEmail, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to promote due retries")
	}
	if moved > 0 {
		log.Info().Int("count", moved).Msg("retry_cron: retries re-queued")
	}
	return moved
}
