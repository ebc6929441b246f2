package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes jobs and returns their results in completion order.
// Jobs are fed from a separate goroutine while results are collected, so
// any number of jobs can be queued. Jobs not yet started when ctx is
// cancelled are skipped and produce no result.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}

	jobQueue := make(chan Job)
	results := make(chan Result, p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobQueue {
				results <- job.Execute(ctx)
			}
		}()
	}

	go func() {
		defer close(jobQueue)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobQueue <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]Result, 0, len(jobs))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}
