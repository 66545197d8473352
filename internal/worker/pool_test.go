package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	index int
	err   error
}

func (r *mockResult) Index() int { return r.index }
func (r *mockResult) Err() error { return r.err }

// mockJob implements Job
type mockJob struct {
	index     int
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Index() int { return j.index }

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{index: j.index, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{index: j.index, err: errors.New("job error")}
	}
	return &mockResult{index: j.index}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(-1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{index: i, executed: &executed})
	}
	pool.Close()

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_ResultsOrderedByIndex(t *testing.T) {
	pool := NewPool(4)
	pool.Start()

	// Earlier jobs take longer, so completion order inverts submission order
	count := 8
	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{
			index:    i,
			duration: time.Duration(count-i) * 5 * time.Millisecond,
		})
	}
	pool.Close()

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}

	for i, res := range results {
		if res.Index() != i {
			t.Errorf("expected result %d at position %d, got %d", i, i, res.Index())
		}
	}
}

func TestPool_LargeBatchDoesNotStall(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	// Far more jobs than the channel buffers hold; submission runs beside
	// result draining
	count := 500
	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&mockJob{index: i})
		}
		pool.Close()
	}()

	done := make(chan []Result, 1)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Fatalf("expected %d results, got %d", count, len(results))
		}
		for i, res := range results {
			if res.Index() != i {
				t.Fatalf("expected result %d at position %d, got %d", i, i, res.Index())
			}
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pool stalled on a large batch")
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&mockJob{index: 0, shouldErr: true})
	pool.Submit(&mockJob{index: 1, shouldErr: false})
	pool.Close()

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failures := 0
	for _, res := range results {
		if res.Err() != nil {
			failures++
		}
	}

	if failures != 1 {
		t.Errorf("expected 1 error, got %d", failures)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	// Submit after shutdown should not panic or block
	done := make(chan struct{})
	go func() {
		pool.Submit(&mockJob{index: 0})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	started := make(chan struct{})
	var once atomic.Bool

	pool.Submit(&signalJob{
		onStart: func() {
			if once.CompareAndSwap(false, true) {
				close(started)
			}
		},
		duration: 200 * time.Millisecond,
	})

	<-started
	pool.Shutdown()

	// Ensure Shutdown returns and closes results
	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}

// signalJob signals when it starts executing
type signalJob struct {
	onStart  func()
	duration time.Duration
}

func (j *signalJob) Index() int { return 0 }

func (j *signalJob) Execute(ctx context.Context) Result {
	if j.onStart != nil {
		j.onStart()
	}
	select {
	case <-time.After(j.duration):
	case <-ctx.Done():
	}
	return &mockResult{}
}
