package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one document directory to be processed in the background.
type Job struct {
	ID          string
	Dir         string
	Persist     bool
	SubmittedAt time.Time
}

// JobState is a point-in-time copy of a job's progress.
type JobState struct {
	ID          string              `json:"id"`
	Dir         string              `json:"dir"`
	Persist     bool                `json:"persist"`
	Status      constants.JobStatus `json:"status"`
	SubmittedAt time.Time           `json:"submitted_at"`
	StartedAt   time.Time           `json:"started_at,omitzero"`
	FinishedAt  time.Time           `json:"finished_at,omitzero"`
	Error       string              `json:"error,omitempty"`
	Result      *pipeline.Result    `json:"result,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (s JobState) Done() bool {
	return s.Status == constants.JobStatusSucceeded || s.Status == constants.JobStatusFailed
}

type Queue interface {
	// Enqueue registers the job and returns its id. It blocks while the queue is full.
	Enqueue(ctx context.Context, job Job) (string, error)
	Get(id string) (JobState, error)
	Shutdown(ctx context.Context)
}

// DocumentProcessor is the pipeline entry point used by workers.
type DocumentProcessor interface {
	ProcessDirectory(ctx context.Context, dir string, persist bool) (*pipeline.Result, error)
}
