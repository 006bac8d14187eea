package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/infra"
	"github.com/M0hammed2o/midlands-price-checker-backend/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobReorderEmail = "reorder_email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// ReorderMailer is the SMTP side of reorder delivery (infra.Mailer).
type ReorderMailer interface {
	CheckConfigured() error
	SendReorder(msg infra.ReorderMessage) error
	BreakerState() infra.BreakerState
}

// Dispatcher hands reorder e-mails to the Redis queue, or sends them inline
// when Redis is not configured.
type Dispatcher struct {
	store   JobStore
	mailer  ReorderMailer
	metrics *metrics.CatalogMetrics
}

func NewDispatcher(rdb *redis.Client, mailer ReorderMailer, m *metrics.CatalogMetrics) *Dispatcher {
	var store JobStore
	if rdb != nil {
		store = NewRedisJobStore(rdb)
	}
	return &Dispatcher{store: store, mailer: mailer, metrics: m}
}

// DispatchReorder reports whether msg was queued (true) or already sent (false).
func (d *Dispatcher) DispatchReorder(ctx context.Context, msg infra.ReorderMessage) (bool, error) {
	if err := d.mailer.CheckConfigured(); err != nil {
		return false, err
	}
	if d.store == nil {
		if err := d.mailer.SendReorder(msg); err != nil {
			d.metrics.ReorderEmail("failed")
			return false, err
		}
		d.metrics.ReorderEmail("sent")
		return false, nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return false, err
	}
	job := Job{ID: uuid.NewString(), Type: JobReorderEmail, Payload: payload}
	if err := d.store.Enqueue(ctx, QueueEmail, job); err != nil {
		return false, err
	}
	d.metrics.ReorderEmail("queued")
	return true, nil
}

// JobHandler processes one job. A returned error marks the attempt failed.
type JobHandler interface {
	Process(ctx context.Context, job Job) error
}

// StartWorkerPool launches numWorkers goroutines consuming QueueEmail.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]JobHandler) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]JobHandler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, handlers map[string]JobHandler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		return
	}
	log.Info().Str("type", job.Type).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("processing job")
	if err := h.Process(ctx, job); err != nil {
		log.Warn().Err(err).Str("type", job.Type).Str("job_id", job.ID).Msg("job failed")
	}
}
