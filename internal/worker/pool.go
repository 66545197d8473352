package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work tied to a position in the input sequence
type Job interface {
	// Index is the job's position in the input sequence
	Index() int

	// Execute runs the job and returns its result
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	// Index echoes the input position of the job that produced the result
	Index() int

	// Err reports the job's failure, nil on success
	Err() error
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results come back ordered by input index regardless of completion order,
// so a parallel run is indistinguishable from a sequential one.
//
// Usage: Start, Submit every job, Close, then Wait. Channels are bounded,
// so large batches should Submit and Close from a separate goroutine while
// Wait drains results.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	jobsOnce   sync.Once
	closeOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2), // Buffered to prevent blocking
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Close marks the end of job submission. Safe to call more than once.
func (p *Pool) Close() {
	p.jobsOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Wait blocks until every submitted job has finished and returns the
// results sorted by input index. It drains results while submission may
// still be in progress; workers exit once Close is called and the queue
// empties.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index() < results[j].Index()
	})

	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
