package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/pipeline"
)

type ProcessorQueue struct {
	proc    DocumentProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	history int

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// sendMu is held for reading by senders and for writing when the channel is closed.
	sendMu sync.RWMutex
	closed bool

	jobsMu   sync.Mutex
	jobs     map[string]*JobState
	finished []string
	now      func() time.Time
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithHistory bounds how many finished jobs stay queryable.
func WithHistory(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.history = n
		}
	}
}

func NewProcessorQueue(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 3 * time.Minute,
		history: 1024,
		ch:      make(chan Job, 64),
		jobs:    make(map[string]*JobState),
		now:     time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	q.update(job.ID, func(s *JobState) {
		s.Status = constants.JobStatusRunning
		s.StartedAt = q.now()
	})

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	ctx = common.WithJobID(ctx, job.ID)
	res, err := q.runSafely(ctx, job)
	cancel()

	logger := q.logger.With("worker_id", workerID, "job_id", job.ID, "dir", job.Dir)
	q.update(job.ID, func(s *JobState) {
		s.FinishedAt = q.now()
		if err != nil {
			s.Status = constants.JobStatusFailed
			s.Error = err.Error()
			return
		}
		s.Status = constants.JobStatusSucceeded
		s.Result = res
	})
	q.retire(job.ID)

	if err != nil {
		logger.Error("queue.job.failed", "err", err)
		return
	}
	logger.Info("queue.job.ok", "rows", res.Summary.Rows, "warnings", len(res.Warnings))
}

func (q *ProcessorQueue) runSafely(ctx context.Context, job Job) (res *pipeline.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return q.proc.ProcessDirectory(ctx, job.Dir, job.Persist)
}

// Enqueue registers job under a fresh id when job.ID is empty. When the buffer is full
// it waits for room or for ctx.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = q.now()
	}

	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "dir", job.Dir, "err", ErrQueueClosed)
		return "", ErrQueueClosed
	}

	q.jobsMu.Lock()
	q.jobs[job.ID] = &JobState{
		ID:          job.ID,
		Dir:         job.Dir,
		Persist:     job.Persist,
		Status:      constants.JobStatusQueued,
		SubmittedAt: job.SubmittedAt,
	}
	q.jobsMu.Unlock()

	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueued", "job_id", job.ID, "dir", job.Dir, "persist", job.Persist)
		return job.ID, nil
	default:
	}

	q.logger.Warn("queue.full", "job_id", job.ID, "dir", job.Dir)
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueued", "job_id", job.ID, "dir", job.Dir, "persist", job.Persist)
		return job.ID, nil
	case <-ctx.Done():
		q.jobsMu.Lock()
		delete(q.jobs, job.ID)
		q.jobsMu.Unlock()
		return "", ctx.Err()
	}
}

// Get returns a copy of the job's current state.
func (q *ProcessorQueue) Get(id string) (JobState, error) {
	q.jobsMu.Lock()
	defer q.jobsMu.Unlock()
	s, ok := q.jobs[id]
	if !ok {
		return JobState{}, common.NewAppError("NOT_FOUND", "job "+id, common.ErrNotFound)
	}
	return *s, nil
}

func (q *ProcessorQueue) update(id string, fn func(*JobState)) {
	q.jobsMu.Lock()
	defer q.jobsMu.Unlock()
	if s, ok := q.jobs[id]; ok {
		fn(s)
	}
}

// retire records a finished job and forgets the oldest ones past the history limit.
func (q *ProcessorQueue) retire(id string) {
	q.jobsMu.Lock()
	defer q.jobsMu.Unlock()
	q.finished = append(q.finished, id)
	for len(q.finished) > q.history {
		delete(q.jobs, q.finished[0])
		q.finished = q.finished[1:]
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for ctx.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.sendMu.Lock()
	if q.closed {
		q.sendMu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.sendMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.ok")
	}
}
