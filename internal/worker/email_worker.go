package worker

// email_worker.go
// Delivers queued reorder e-mails. A failed attempt is rescheduled with
// exponential backoff through the retry set; after MaxEmailAttempts the job
// goes to the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"

	"github.com/rs/zerolog/log"
)

const MaxEmailAttempts = 5

type EmailWorker struct {
	mailer  ReorderMailer
	store   JobStore
	metrics *metrics.CatalogMetrics
	now     func() time.Time
}

func NewEmailWorker(mailer ReorderMailer, store JobStore, m *metrics.CatalogMetrics) *EmailWorker {
	return &EmailWorker{mailer: mailer, store: store, metrics: m, now: time.Now}
}

func (w *EmailWorker) Process(ctx context.Context, job Job) error {
	var msg infra.ReorderMessage
	if err := json.Unmarshal(job.Payload, &msg); err != nil {
		job.Attempts++
		SendToDLQ(ctx, w.store, QueueEmail, job, "invalid payload: "+err.Error())
		return err
	}

	err := w.mailer.SendReorder(msg)
	job.Attempts++
	if err == nil {
		w.metrics.ReorderEmail("sent")
		log.Info().Str("job_id", job.ID).Str("subject", msg.Subject).Msg("email_worker: reorder e-mail sent")
		return nil
	}

	if job.Attempts >= MaxEmailAttempts {
		w.metrics.ReorderEmail("dead_lettered")
		SendToDLQ(ctx, w.store, QueueEmail, job,
			fmt.Sprintf("max attempts (%d) exceeded: %s", MaxEmailAttempts, err))
		return err
	}

	next := w.now().Add(retryBackoff(job.Attempts))
	if serr := w.store.ScheduleRetry(ctx, QueueEmail, job, next); serr != nil {
		log.Error().Err(serr).Str("job_id", job.ID).Msg("email_worker: could not schedule retry")
		SendToDLQ(ctx, w.store, QueueEmail, job,
			fmt.Sprintf("retry scheduling failed: %s (send error: %s)", serr, err))
		return err
	}
	w.metrics.ReorderEmail("retry")
	log.Warn().Err(err).
		Str("job_id", job.ID).
		Int("attempts", job.Attempts).
		Time("next_attempt_at", next).
		Msg("email_worker: send failed, retry scheduled")
	return err
}

// retryBackoff is 30s, 1m, 2m, 4m ... capped at 15m.
func retryBackoff(attempts int) time.Duration {
	d := 30 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= 15*time.Minute {
			return 15 * time.Minute
		}
	}
	return d
}
