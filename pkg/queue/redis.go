package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"

	"github.com/redis/go-redis/v9"
)

const blockInterval = 5 * time.Second

type redisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedis builds a JobQueue over a Redis list. Producers LPUSH, workers
// BRPOP, so jobs are consumed exactly once across worker instances.
func NewRedis(rdb *redis.Client, key string) JobQueue {
	return &redisQueue{rdb: rdb, key: key}
}

func (q *redisQueue) Enqueue(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidJob, err)
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.rdb.LPush(ctx, q.key, data).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	for {
		res, err := q.rdb.BRPop(ctx, blockInterval, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			return nil, err
		}
		// BRPOP returns [key, value]
		if len(res) != 2 {
			continue
		}

		var job domain.Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidJob, err)
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidJob, err)
		}
		return &job, nil
	}
}
