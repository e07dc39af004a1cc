// Package queue carries notification jobs from enqueuing callers to the
// dispatch worker. Implementations are injected at process start; there is
// no lazily-constructed global connection.
package queue

import (
	"context"

	"notification-service/internal/domain"
)

type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue blocks until a job is available or ctx is done. Jobs are
	// validated at this boundary; a malformed payload is returned as an
	// error wrapping xerrors.ErrInvalidJob so the worker can count and
	// skip it without stalling the pool.
	Dequeue(ctx context.Context) (*domain.Job, error)
}
