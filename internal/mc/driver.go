package mc

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Progress is a snapshot of batch completion, delivered per finished trial.
type Progress struct {
	Done   int
	Failed int
	Total  int
}

// Driver fans trials out over a bounded worker pool. Each trial owns its
// slot in the record slice, so exactly one record exists per index and the
// merge needs no locks.
type Driver struct {
	Runner     *Runner
	Workers    int
	Log        *zap.Logger
	OnProgress func(Progress)
}

// Batch is the aggregated result set. Records are index-ordered; trials the
// batch context canceled before they started carry OK=false and are not
// counted as completed.
type Batch struct {
	Records   []Record
	Requested int
	Completed int
	Failed    int
	Elapsed   time.Duration
}

// Successful returns the records of successful trials, index-ordered.
func (b *Batch) Successful() []Record {
	out := make([]Record, 0, b.Completed-b.Failed)
	for _, r := range b.Records {
		if r.OK {
			out = append(out, r)
		}
	}
	return out
}

// OutcomeValues extracts one outcome scalar across all successful trials.
func (b *Batch) OutcomeValues(name string) []float64 {
	var out []float64
	for _, r := range b.Records {
		if !r.OK {
			continue
		}
		if v, ok := OutcomeValue(r.Outcomes, name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Run executes every trial of the plan. Completion order is unordered;
// determinism comes from per-trial seeding, not scheduling.
func (d *Driver) Run(ctx context.Context, plan *Plan) *Batch {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	workers := d.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	total := plan.Trials()
	records := make([]Record, total)
	started := make([]bool, total)
	var done, failed atomic.Int64

	log.Info("starting batch",
		zap.Int("trials", total),
		zap.Int("workers", workers),
		zap.Int("parameters", plan.D()),
		zap.Int64("seed", plan.Seed))

	begin := time.Now()
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			started[i] = true
			rec := d.Runner.Run(ctx, i, plan.Assignments(i), plan.NoiseSeed(i))
			records[i] = rec

			n := done.Add(1)
			f := failed.Load()
			if !rec.OK {
				f = failed.Add(1)
			}
			if d.OnProgress != nil {
				d.OnProgress(Progress{Done: int(n), Failed: int(f), Total: total})
			}
			return nil
		})
	}
	g.Wait()

	batch := &Batch{Records: records, Requested: total, Elapsed: time.Since(begin)}
	for i := range records {
		if !started[i] {
			records[i] = Record{Index: i, Err: "not run: batch canceled"}
			continue
		}
		batch.Completed++
		if !records[i].OK {
			batch.Failed++
		}
	}

	log.Info("batch finished",
		zap.Int("requested", batch.Requested),
		zap.Int("completed", batch.Completed),
		zap.Int("failed", batch.Failed),
		zap.Duration("elapsed", batch.Elapsed))
	return batch
}
