package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contract-sentinel/internal/common"
)

// Job is one unit of background work.
type Job struct {
	ID          uuid.UUID
	Name        string // e.g. "ingestion", "analysis"
	Run         func(ctx context.Context) error
	Done        func(err error) // optional, called after Run
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// WorkerQueue runs jobs on a fixed pool of workers.
type WorkerQueue struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*WorkerQueue)

func WithWorkers(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *WorkerQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *WorkerQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewWorkerQueue(logger *slog.Logger, opts ...Option) *WorkerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &WorkerQueue{
		logger:  logger,
		workers: common.DefaultWorkers,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *WorkerQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *WorkerQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	ctx = common.WithRequestID(ctx, job.ID.String())
	err := safeRun(ctx, job)
	cancel()

	if err != nil {
		q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.ID, "job", job.Name, "error", err)
	} else {
		q.logger.Info("queue.job.done", "worker_id", workerID, "job_id", job.ID, "job", job.Name,
			"wait_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if job.Done != nil {
		job.Done(err)
	}
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: job %s panicked: %v", common.ErrInternal, job.Name, r)
		}
	}()
	if job.Run == nil {
		return nil
	}
	return job.Run(ctx)
}

// Enqueue hands job to the pool. It blocks while the buffer is full until ctx
// is done, and fails with common.ErrQueueClosed after Shutdown.
func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "job_id", job.ID, "job", job.Name)
		return common.ErrQueueClosed
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueue", "job_id", job.ID, "job", job.Name)
		return nil
	default:
	}

	q.logger.Warn("queue.full.backpressure", "job_id", job.ID, "job", job.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs until ctx is done.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
