package worker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobStore is the Redis surface the workers need: the main list, a delayed
// retry set scored by due time, and the dead letter list.
type JobStore interface {
	Enqueue(ctx context.Context, queue string, job Job) error
	ScheduleRetry(ctx context.Context, queue string, job Job, at time.Time) error
	// PromoteDue moves up to limit retries due at or before now back onto queue.
	PromoteDue(ctx context.Context, queue string, now time.Time, limit int64) (int, error)
	DeadLetter(ctx context.Context, queue string, entry DLQEntry) error
	DLQLength(ctx context.Context, queue string) (int64, error)
}

const retrySuffix = ":retry"

type redisJobStore struct{ rdb *redis.Client }

func NewRedisJobStore(rdb *redis.Client) JobStore { return &redisJobStore{rdb: rdb} }

func (s *redisJobStore) Enqueue(ctx context.Context, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, queue, encoded).Err()
}

func (s *redisJobStore) ScheduleRetry(ctx context.Context, queue string, job Job, at time.Time) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.rdb.ZAdd(ctx, queue+retrySuffix, redis.Z{Score: float64(at.Unix()), Member: encoded}).Err()
}

func (s *redisJobStore) PromoteDue(ctx context.Context, queue string, now time.Time, limit int64) (int, error) {
	key := queue + retrySuffix
	due, err := s.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: "-inf", Max: strconv.FormatInt(now.Unix(), 10), Count: limit,
	}).Result()
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, member := range due {
		// ZREM decides ownership when several instances promote concurrently.
		n, err := s.rdb.ZRem(ctx, key, member).Result()
		if err != nil {
			return moved, err
		}
		if n == 0 {
			continue
		}
		if err := s.rdb.LPush(ctx, queue, member).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (s *redisJobStore) DeadLetter(ctx context.Context, queue string, entry DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, DLQPrefix+queue, data).Err()
}

func (s *redisJobStore) DLQLength(ctx context.Context, queue string) (int64, error) {
	return s.rdb.LLen(ctx, DLQPrefix+queue).Result()
}
