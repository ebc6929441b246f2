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
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5)
	if p1.Workers() != 5 {
		t.Errorf("expected 5 workers, got %d", p1.Workers())
	}

	p2 := NewPool(0)
	if p2.Workers() != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.Workers())
	}

	p3 := NewPool(-1)
	if p3.Workers() != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.Workers())
	}
}

func TestPool_RunAllJobs(t *testing.T) {
	p := NewPool(3)
	var executed int32

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = &mockJob{executed: &executed, shouldErr: i%2 == 0}
	}

	results := p.Run(context.Background(), jobs)
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if atomic.LoadInt32(&executed) != 10 {
		t.Errorf("expected 10 executions, got %d", executed)
	}

	errCount := 0
	for _, r := range results {
		if r.GetError() != nil {
			errCount++
		}
	}
	if errCount != 5 {
		t.Errorf("expected 5 errors, got %d", errCount)
	}
}

func TestPool_ManyMoreJobsThanWorkers(t *testing.T) {
	p := NewPool(2)

	jobs := make([]Job, 500)
	for i := range jobs {
		jobs[i] = &mockJob{}
	}

	done := make(chan []Result)
	go func() { done <- p.Run(context.Background(), jobs) }()

	select {
	case results := <-done:
		if len(results) != 500 {
			t.Errorf("expected 500 results, got %d", len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish; pool is blocked")
	}
}

func TestPool_RunEmpty(t *testing.T) {
	results := NewPool(2).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestPool_Cancelled(t *testing.T) {
	p := NewPool(1)
	var executed int32

	ctx, cancel := context.WithCancel(context.Background())
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = &mockJob{duration: 20 * time.Millisecond, executed: &executed}
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	results := p.Run(ctx, jobs)
	if len(results) >= 20 {
		t.Errorf("expected cancellation to skip jobs, got %d results", len(results))
	}
	if int(atomic.LoadInt32(&executed)) != len(results) {
		t.Errorf("expected one result per executed job, got %d results for %d executions", len(results), executed)
	}
}
