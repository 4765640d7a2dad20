package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/purchase-orders/constants"
	"github.com/joseph-ayodele/purchase-orders/internal/common"
	"github.com/joseph-ayodele/purchase-orders/internal/pipeline"
)

type fakeProcessor struct {
	mu      sync.Mutex
	calls   []string
	release chan struct{}
	fail    map[string]error
}

func (f *fakeProcessor) ProcessDirectory(ctx context.Context, dir string, persist bool) (*pipeline.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dir)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if dir == "panic" {
		panic("boom")
	}
	if err := f.fail[dir]; err != nil {
		return nil, err
	}
	return &pipeline.Result{DocumentID: common.JobIDFromContext(ctx), Name: dir}, nil
}

func waitDone(t *testing.T, q *ProcessorQueue, id string) JobState {
	t.Helper()
	var st JobState
	require.Eventually(t, func() bool {
		var err error
		st, err = q.Get(id)
		return err == nil && st.Done()
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestProcessorQueue_RunsJobs(t *testing.T) {
	proc := &fakeProcessor{fail: map[string]error{"bad": errors.New("no usable pages")}}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithQueueSize(4))
	defer q.Shutdown(context.Background())

	okID, err := q.Enqueue(context.Background(), Job{Dir: "PO-1", Persist: true})
	require.NoError(t, err)
	badID, err := q.Enqueue(context.Background(), Job{Dir: "bad"})
	require.NoError(t, err)
	assert.NotEqual(t, okID, badID)

	ok := waitDone(t, q, okID)
	assert.Equal(t, constants.JobStatusSucceeded, ok.Status)
	assert.True(t, ok.Persist)
	require.NotNil(t, ok.Result)
	assert.Equal(t, okID, ok.Result.DocumentID)
	assert.False(t, ok.StartedAt.IsZero())
	assert.False(t, ok.FinishedAt.Before(ok.StartedAt))

	bad := waitDone(t, q, badID)
	assert.Equal(t, constants.JobStatusFailed, bad.Status)
	assert.Equal(t, "no usable pages", bad.Error)
	assert.Nil(t, bad.Result)
}

func TestProcessorQueue_RecoversPanic(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil, WithWorkers(1))
	defer q.Shutdown(context.Background())

	id, err := q.Enqueue(context.Background(), Job{Dir: "panic"})
	require.NoError(t, err)

	st := waitDone(t, q, id)
	assert.Equal(t, constants.JobStatusFailed, st.Status)
	assert.Contains(t, st.Error, "boom")
}

func TestProcessorQueue_QueuedUntilWorkerFree(t *testing.T) {
	proc := &fakeProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(2))

	first, err := q.Enqueue(context.Background(), Job{Dir: "a"})
	require.NoError(t, err)
	second, err := q.Enqueue(context.Background(), Job{Dir: "b"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, _ := q.Get(first)
		return st.Status == constants.JobStatusRunning
	}, time.Second, 5*time.Millisecond)
	st, err := q.Get(second)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusQueued, st.Status)

	close(proc.release)
	q.Shutdown(context.Background())

	st, err = q.Get(second)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusSucceeded, st.Status)
}

func TestProcessorQueue_FullQueueHonoursContext(t *testing.T) {
	proc := &fakeProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(proc.release)
		q.Shutdown(context.Background())
	}()

	_, err := q.Enqueue(context.Background(), Job{Dir: "running"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		proc.mu.Lock()
		defer proc.mu.Unlock()
		return len(proc.calls) == 1
	}, time.Second, 5*time.Millisecond)
	_, err = q.Enqueue(context.Background(), Job{Dir: "buffered"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = q.Enqueue(ctx, Job{ID: "late", Dir: "late"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	_, err = q.Get("late")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProcessorQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	_, err := q.Enqueue(context.Background(), Job{Dir: "x"})

	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_HistoryLimit(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil, WithWorkers(1), WithHistory(1))

	first, err := q.Enqueue(context.Background(), Job{Dir: "a"})
	require.NoError(t, err)
	waitDone(t, q, first)
	second, err := q.Enqueue(context.Background(), Job{Dir: "b"})
	require.NoError(t, err)
	q.Shutdown(context.Background())

	_, err = q.Get(first)
	assert.ErrorIs(t, err, common.ErrNotFound)
	st, err := q.Get(second)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusSucceeded, st.Status)
}
