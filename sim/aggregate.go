package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/resilience-sim/sim/graph"
	"github.com/inference-sim/resilience-sim/sim/telemetry"
)

// ErrNoSuccessfulRuns is returned by RunBatch when every run failed.
var ErrNoSuccessfulRuns = errors.New("no run in the batch succeeded")

// StrategyFactory builds a fresh strategy for one run from its seed.
type StrategyFactory func(seed int64) Strategy

// BatchConfig groups the parameters of a multi-run batch.
type BatchConfig struct {
	Runs     int   // number of runs; values < 1 are treated as 1
	BaseSeed int64 // run i is seeded with RunSeed(BaseSeed, i)
	Workers  int   // concurrent runs; <= 0 means GOMAXPROCS
	Run      RunConfig
}

// RunFailure records a run that was skipped because it returned an error or panicked.
type RunFailure struct {
	Index int
	Seed  int64
	Err   error
}

// BatchResult is the aggregate of a multi-run batch.
type BatchResult struct {
	// Average is a synthetic Result: elementwise mean LCC curve over padded
	// runs, mean R_res, mean collapse fraction over runs that collapsed.
	Average *Result
	// Runs holds the successful per-run Results in run-index order.
	Runs                 []*Result
	MeanRRes             float64
	StdRRes              float64
	StdCurve             []float64
	MeanCollapseFraction *float64
	RRes                 Distribution
	Failures             []RunFailure
}

// FailureCount is the number of runs that were skipped.
func (b *BatchResult) FailureCount() int {
	return len(b.Failures)
}

// RunBatch runs a stochastic strategy cfg.Runs times on g, each on its own
// graph copy with seed RunSeed(cfg.BaseSeed, i), using a bounded worker pool.
// Per-run results are restored to run-index order before averaging, so the
// aggregate depends only on the seeds.
//
// A run that errors or panics is recorded in Failures and the batch
// continues. Only ctx cancellation aborts the batch. If no run succeeds the
// error wraps ErrNoSuccessfulRuns.
func RunBatch(ctx context.Context, g *graph.Graph, factory StrategyFactory, cfg BatchConfig) (*BatchResult, error) {
	runs := max(cfg.Runs, 1)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, runs)
	errs := make([]error, runs)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < runs; i++ {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := runOne(egCtx, g, factory, cfg, i)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			results[i], errs[i] = res, err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	batch := &BatchResult{}
	var name string
	curves := make([][]float64, 0, runs)
	fractions := []float64{}
	rres := make([]float64, 0, runs)
	var collapses []float64
	for i := 0; i < runs; i++ {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, RunFailure{Index: i, Seed: RunSeed(cfg.BaseSeed, i), Err: errs[i]})
			continue
		}
		r := results[i]
		if name == "" {
			name = r.AlgorithmName
		}
		batch.Runs = append(batch.Runs, r)
		curves = append(curves, r.LCCValues)
		if len(r.RemovalFractions) > len(fractions) {
			fractions = r.RemovalFractions
		}
		rres = append(rres, r.RRes)
		if r.CollapseFraction != nil {
			collapses = append(collapses, *r.CollapseFraction)
		}
	}
	for _, f := range batch.Failures {
		logrus.Warnf("batch run %d (seed %d) skipped: %v", f.Index, f.Seed, f.Err)
	}
	if len(batch.Runs) == 0 {
		telemetry.BatchRunFailures.WithLabelValues("unknown").Add(float64(len(batch.Failures)))
		return nil, fmt.Errorf("%w: %d of %d runs failed", ErrNoSuccessfulRuns, len(batch.Failures), runs)
	}
	telemetry.BatchRunFailures.WithLabelValues(name).Add(float64(len(batch.Failures)))

	meanCurve, stdCurve := curveMeanStd(curves)
	batch.StdCurve = stdCurve
	batch.MeanRRes, batch.StdRRes = stat.PopMeanStdDev(rres, nil)
	batch.RRes = NewDistribution(rres)
	if len(collapses) > 0 {
		m := stat.Mean(collapses, nil)
		batch.MeanCollapseFraction = &m
	}

	first := batch.Runs[0]
	info := RunInfo{
		AlgorithmName:     fmt.Sprintf("%s_avg%d", name, runs),
		DatasetName:       cfg.Run.DatasetName,
		GraphName:         cfg.Run.GraphName,
		InitialNodes:      first.InitialNodes,
		InitialEdges:      first.InitialEdges,
		Budget:            cfg.Run.Budget,
		CollapseThreshold: cfg.Run.threshold(),
	}
	extra := map[string]any{
		"runs":       runs,
		"failed":     len(batch.Failures),
		"std_r_res":  batch.StdRRes,
		"std_curve":  stdCurve,
		"base_seed":  cfg.BaseSeed,
		"successful": len(batch.Runs),
	}
	frac := make([]float64, len(fractions))
	copy(frac, fractions)
	avg, err := buildResult(info, append([]Operation(nil), first.AttackSequence...),
		Curve{Fractions: frac, Values: meanCurve}, extra, batch.MeanRRes)
	if err != nil {
		return nil, err
	}
	avg.CollapseFraction = batch.MeanCollapseFraction
	batch.Average = avg

	logrus.Debugf("[%s] batch of %d runs: mean r_res=%.6f std=%.6f failed=%d",
		name, runs, batch.MeanRRes, batch.StdRRes, len(batch.Failures))
	return batch, nil
}

// runOne executes run i of a batch, converting a panic into an error.
func runOne(ctx context.Context, g *graph.Graph, factory StrategyFactory, cfg BatchConfig, i int) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run %d panicked: %v", i, r)
		}
	}()
	rc := cfg.Run
	rc.Trace = nil
	if rc.GraphName != "" {
		rc.GraphName = fmt.Sprintf("%s_run%d", rc.GraphName, i)
	}
	return Run(ctx, g, factory(RunSeed(cfg.BaseSeed, i)), rc)
}
