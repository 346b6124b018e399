package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finflowhq/finflow/internal/domain"
	"github.com/finflowhq/finflow/internal/logger"
	"github.com/finflowhq/finflow/internal/repository"
)

// JobHandler processes one claimed job and reports how many rows it
// touched. A returned error marks the job failed.
type JobHandler interface {
	HandleJob(ctx context.Context, job *domain.ProcessingJob) (int, error)
}

// Worker drives the polling cycle: claim the next runnable job, dispatch it
// to the handler for its type, record the outcome, sleep when idle. Each
// worker instance runs this loop single-threaded; scaling out means running
// more instances, which contend only through the atomic claim.
type Worker struct {
	jobs         *repository.JobRepository
	handlers     map[domain.JobType]JobHandler
	workerID     string
	pollInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a worker identified by workerID. handlers is the closed
// set of job types this worker knows how to run.
func NewWorker(
	jobs *repository.JobRepository,
	handlers map[domain.JobType]JobHandler,
	workerID string,
	pollInterval time.Duration,
	log *logger.Logger,
) *Worker {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		jobs:         jobs,
		handlers:     handlers,
		workerID:     workerID,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Run polls until ctx is cancelled. Errors never escape the loop: transient
// dequeue failures are logged and retried after the poll interval, and job
// failures are recorded on the job itself.
//
// A worker that dies mid-job leaves that job stuck in processing; there is
// no lease or heartbeat to reclaim it, so stuck jobs need manual re-queueing.
func (w *Worker) Run(ctx context.Context) {
	w.log.WithField(logger.FieldWorkerID, w.workerID).Info("Worker starting")

	for {
		select {
		case <-ctx.Done():
			w.log.WithField(logger.FieldWorkerID, w.workerID).Info("Worker stopping")
			return
		default:
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			w.log.WithError(err).Error("Dequeue failed")
		}
		if !processed {
			w.sleep(ctx)
		}
	}
}

// ProcessNext runs a single poll iteration. It returns true when a job was
// claimed and handled (successfully or not), false when the queue was empty
// or the dequeue itself failed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.jobs.Dequeue(ctx, w.workerID)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	jobCtx := logger.SetJobID(ctx, job.ID)
	jobCtx = logger.WithField(jobCtx, logger.FieldWorkerID, w.workerID)
	logger.CtxInfo(jobCtx, "Claimed job type=%s", job.Type)

	start := time.Now()
	rows, err := w.runHandler(jobCtx, job)
	if err != nil {
		logger.CtxError(jobCtx, "Job failed: %v", err)
		if markErr := w.jobs.MarkFailed(jobCtx, job.ID, err.Error()); markErr != nil {
			logger.CtxError(jobCtx, "Failed to record job failure: %v", markErr)
		}
		return true, nil
	}

	if err := w.jobs.MarkSucceeded(jobCtx, job.ID); err != nil {
		logger.CtxError(jobCtx, "Failed to record job success: %v", err)
		return true, nil
	}

	logger.With(logger.Fields{
		logger.FieldCount:      rows,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(jobCtx, "Job succeeded")

	return true, nil
}

// runHandler dispatches to the handler for the job's type. A panic inside a
// handler is converted to a job failure so one bad input cannot take the
// worker down.
func (w *Worker) runHandler(ctx context.Context, job *domain.ProcessingJob) (rows int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panicked: %v", r)
		}
	}()

	handler, ok := w.handlers[job.Type]
	if !ok {
		return 0, fmt.Errorf("unsupported job type: %s", job.Type)
	}
	return handler.HandleJob(ctx, job)
}

// sleep waits out the poll interval, returning early on cancellation.
func (w *Worker) sleep(ctx context.Context) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
