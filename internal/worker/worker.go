package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"notification-service/internal/metrics"
	"notification-service/internal/usecase"
	"notification-service/internal/xerrors"
	"notification-service/pkg/queue"
)

// Worker consumes notification jobs with a bounded pool. Each slot blocks
// on the queue, dispatches one job to completion, and moves on; in-flight
// jobs are never abandoned mid-dispatch on shutdown.
type Worker struct {
	queue      queue.JobQueue
	dispatcher *usecase.DispatchUsecase
	limiter    *rate.Limiter
	poolSize   int
	logger     *zap.Logger
}

func New(q queue.JobQueue, dispatcher *usecase.DispatchUsecase, poolSize, ratePerSecond int, logger *zap.Logger) *Worker {
	if poolSize <= 0 {
		poolSize = 1
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond)
	}
	return &Worker{
		queue:      q,
		dispatcher: dispatcher,
		limiter:    limiter,
		poolSize:   poolSize,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled and all slots have drained.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Dispatch worker starting", zap.Int("pool_size", w.poolSize))

	var wg sync.WaitGroup
	for i := 0; i < w.poolSize; i++ {
		wg.Add(1)
		go w.loop(ctx, &wg, i)
	}
	wg.Wait()
	w.logger.Info("Dispatch worker stopped")
}

func (w *Worker) loop(ctx context.Context, wg *sync.WaitGroup, slot int) {
	defer wg.Done()

	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, xerrors.ErrInvalidJob) {
				metrics.InvalidJobsTotal.Inc()
				w.logger.Warn("Skipping invalid job", zap.Int("slot", slot), zap.Error(err))
				continue
			}
			w.logger.Error("Queue read failed", zap.Int("slot", slot), zap.Error(err))
			continue
		}

		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
		}

		// A picked-up job runs to completion even during shutdown, so the
		// dispatch uses a fresh context rather than the pool's.
		result := w.dispatcher.Dispatch(context.WithoutCancel(ctx), job)
		w.logger.Info("Job processed",
			zap.Int("slot", slot),
			zap.String("dispatch_id", job.DispatchID),
			zap.Bool("success", result.Success),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
		)
	}
}
