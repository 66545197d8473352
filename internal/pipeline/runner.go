package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/perturb"
	"github.com/perturbia/perturbia/internal/worker"
)

// perturbJob runs one statement through the engine. The job index doubles
// as the statement's random stream selector, so results do not depend on
// which worker picks the job up.
type perturbJob struct {
	index     int
	statement string
	engine    *perturb.Engine
}

func (j *perturbJob) Index() int { return j.index }

func (j *perturbJob) Execute(ctx context.Context) worker.Result {
	return &perturbResult{
		index:  j.index,
		result: j.engine.Perturb(ctx, j.statement, j.index),
	}
}

// perturbResult carries one processed statement back from the pool
type perturbResult struct {
	index  int
	result model.StatementResult
}

func (r *perturbResult) Index() int { return r.index }
func (r *perturbResult) Err() error { return nil }

// RunReport summarizes one batch run
type RunReport struct {
	Total     int   // Records in the input, valid or not
	Processed int   // Statements run through the engine
	Perturbed int   // Statements that received an operation
	Capped    int   // Perturbations reverted to honor the cap
	Skipped   []int // Indices of malformed input records
	Backend   string
	Degraded  bool
	Duration  time.Duration
}

// Runner executes a batch of statements through the perturbation engine
type Runner struct {
	engine  *perturb.Engine
	workers int
	max     int
	logger  *zap.Logger
}

// NewRunner creates a runner. max caps how many statements may be
// perturbed in one run; zero means no cap.
func NewRunner(engine *perturb.Engine, workers, max int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		engine:  engine,
		workers: workers,
		max:     max,
		logger:  logger,
	}
}

// Run processes every statement in load and returns one result per valid
// input record, in input order. With a fixed seed the output is identical
// whatever the worker count.
func (r *Runner) Run(ctx context.Context, load *LoadResult) ([]model.StatementResult, *RunReport) {
	start := time.Now()

	r.logger.Info("batch started",
		zap.Int("statements", len(load.Inputs)),
		zap.Int("workers", r.workers))

	// Statements missed on early cancellation stay pass-through
	results := make([]model.StatementResult, len(load.Inputs))
	for i, in := range load.Inputs {
		results[i] = model.NewResult(in.Statement)
	}

	pool := worker.NewPool(r.workers)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, in := range load.Inputs {
			select {
			case <-ctx.Done():
				return
			default:
			}
			pool.Submit(&perturbJob{index: i, statement: in.Statement, engine: r.engine})
		}
	}()

	for _, res := range pool.Wait() {
		pr := res.(*perturbResult)
		results[pr.index] = pr.result
	}

	report := &RunReport{
		Total:     load.Total,
		Processed: len(load.Inputs),
		Skipped:   load.Malformed,
	}

	// The cap walks results in input order, so the first max applicable
	// statements keep their perturbation and later ones revert. A parallel
	// run settles on the same prefix as a sequential one.
	for i := range results {
		if !results[i].Perturbed() {
			continue
		}
		if r.max > 0 && report.Perturbed >= r.max {
			results[i] = model.NewResult(results[i].Statement)
			report.Capped++
			continue
		}
		report.Perturbed++
	}

	report.Duration = time.Since(start)

	r.logger.Info("batch complete",
		zap.Int("total", report.Total),
		zap.Int("processed", report.Processed),
		zap.Int("perturbed", report.Perturbed),
		zap.Int("capped", report.Capped),
		zap.Int("skipped", len(report.Skipped)),
		zap.Duration("duration", report.Duration))

	return results, report
}
