package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResult implements Result
type mockResult struct {
	id  int
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

func TestNewPool(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 5, NewPool(ctx, 5).workers)
	assert.Equal(t, 1, NewPool(ctx, 0).workers, "zero workers defaults to 1")
	assert.Equal(t, 1, NewPool(ctx, -1).workers, "negative workers defaults to 1")
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		require.True(t, pool.Submit(&mockJob{id: i, executed: &executed}), "submit %d rejected", i)
	}

	results := pool.Wait()

	assert.Len(t, results, count)
	assert.Equal(t, int32(count), atomic.LoadInt32(&executed))
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	// Earlier jobs take longer so they finish last.
	for i := 0; i < 8; i++ {
		pool.Submit(&mockJob{id: i, duration: time.Duration(8-i) * 5 * time.Millisecond})
	}

	results := pool.Wait()
	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, i, r.(*mockResult).id, "result %d", i)
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	select {
	case <-time.After(j.duration):
	case <-ctx.Done():
	}
	if j.end != nil {
		j.end()
	}
	return &mockResult{err: ctx.Err()}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50

	for i := 0; i < totalJobs; i++ {
		pool.Submit(&concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		})
	}

	pool.Wait()

	assert.Equal(t, int32(totalJobs), atomic.LoadInt32(&completed))

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	assert.LessOrEqual(t, max, int32(workers), "max concurrency exceeded workers")
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{shouldErr: false})

	results := pool.Wait()
	require.Len(t, results, 2)
	assert.Error(t, results[0].GetError())
	assert.NoError(t, results[1].GetError())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockJob{})
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "submit after shutdown must be rejected")
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&concurrencyJob{
		start:    func() { close(started) },
		duration: 5 * time.Second,
	})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

func TestPool_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	pool.Submit(&mockJob{duration: 5 * time.Second})
	cancel()

	results := pool.Wait()
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].GetError(), context.Canceled)
	assert.False(t, pool.Submit(&mockJob{}), "submit after cancellation must be rejected")
}
