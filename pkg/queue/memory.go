package queue

import (
	"context"
	"fmt"

	"notification-service/internal/domain"
	"notification-service/internal/xerrors"
)

// Memory is an in-process JobQueue used in tests.
type Memory struct {
	jobs chan *domain.Job
}

func NewMemory(capacity int) *Memory {
	return &Memory{jobs: make(chan *domain.Job, capacity)}
}

func (q *Memory) Enqueue(_ context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidJob, err)
	}
	q.jobs <- job
	return nil
}

func (q *Memory) Dequeue(ctx context.Context) (*domain.Job, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case job := <-q.jobs:
		return job, nil
	}
}
