package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/evaluation"
	"github.com/inference-sim/resilience-sim/sim/graph"
	"github.com/inference-sim/resilience-sim/sim/trace"
)

// Files written under outputOptions.Dir.
const (
	evaluationFile = "evaluation.json"
	summaryFile    = "summary.json"
	comparisonFile = "comparison.csv"
)

// outputOptions controls where a command writes its results.
type outputOptions struct {
	Dir        string // empty writes nothing to disk
	Stdout     io.Writer
	TraceLevel trace.TraceLevel
}

// runDismantle runs every configured strategy on the configured graph. When
// the config carries a removal sequence it is scored next to the HDA and
// Random baselines through the Evaluator.
func runDismantle(ctx context.Context, cfg *evaluation.Config, opts outputOptions) error {
	g, err := cfg.Graph.Build()
	if err != nil {
		return fmt.Errorf("building graph %q: %w", cfg.Graph.Name, err)
	}
	ops, err := cfg.Operations()
	if err != nil {
		return err
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = evaluation.DefaultAttackBudget(g)
	}
	logrus.Infof("dismantling %q: %d nodes, %d edges, budget %d", cfg.Graph.Name, g.NumNodes(), g.NumEdges(), budget)

	var results []*sim.Result
	covered := map[string]bool{}
	if len(ops) > 0 {
		req := evaluation.DismantRequest{
			GraphName:  cfg.Graph.Name,
			Sequence:   ops,
			Budget:     budget,
			SkipHDA:    !slices.Contains(cfg.Strategies, sim.StrategyHighestDegree),
			SkipRandom: !slices.Contains(cfg.Strategies, sim.StrategyRandom),
		}
		er, err := cfg.Evaluator().EvaluateDismantWithBaselines(ctx, g, req)
		if err != nil {
			return err
		}
		if opts.Dir != "" {
			if err := er.Save(filepath.Join(opts.Dir, evaluationFile)); err != nil {
				return err
			}
		}
		results = append(results, er.Results()...)
		covered[sim.StrategyHighestDegree] = true
		covered[sim.StrategyRandom] = true
	}

	for _, name := range cfg.Strategies {
		if covered[name] {
			continue
		}
		r, err := runStrategy(ctx, g, name, cfg, budget, opts)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", name, err)
		}
		results = append(results, r)
	}
	return writeReports(results, cfg.CollapseThreshold, opts)
}

// runStrategy runs one built-in strategy. Random is averaged over
// cfg.RandomRuns seeded runs; the others run once, traced if requested.
func runStrategy(ctx context.Context, g *graph.Graph, name string, cfg *evaluation.Config, budget int, opts outputOptions) (*sim.Result, error) {
	rc := sim.RunConfig{
		Budget:            budget,
		CollapseThreshold: cfg.CollapseThreshold,
		DatasetName:       cfg.Dataset,
		GraphName:         cfg.Graph.Name,
	}
	if name == sim.StrategyRandom {
		batch, err := sim.RunBatch(ctx, g, func(seed int64) sim.Strategy {
			return sim.NewStrategy(name, seed)
		}, sim.BatchConfig{
			Runs:     cfg.RandomRuns,
			BaseSeed: *cfg.RandomSeed,
			Workers:  cfg.Workers,
			Run:      rc,
		})
		if err != nil {
			return nil, err
		}
		return batch.Average, nil
	}

	s := sim.NewStrategy(name, *cfg.RandomSeed)
	if opts.TraceLevel == trace.TraceLevelSteps {
		rc.Trace = trace.NewRunTrace(trace.TraceConfig{Level: opts.TraceLevel}, s.Name())
	}
	r, err := sim.Run(ctx, g, s, rc)
	if err != nil {
		return nil, err
	}
	if rc.Trace != nil {
		ts := trace.Summarize(rc.Trace)
		logrus.Infof("[%s] trace: %d steps (%d applied, %d skipped), stop=%s, mean select latency %v, max %v",
			s.Name(), ts.TotalSteps, ts.AppliedSteps, ts.SkippedSteps, ts.Stop, ts.MeanSelectLatency, ts.MaxSelectLatency)
		if opts.Dir != "" {
			if err := sim.WriteJSONFile(filepath.Join(opts.Dir, "trace_"+r.AlgorithmName+".json"), rc.Trace); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// runConstruct reconstructs the configured graph from the config's edge
// sequence (if any) and scores it next to the construct baselines.
func runConstruct(ctx context.Context, cfg *evaluation.Config, opts outputOptions) error {
	g, err := cfg.Graph.Build()
	if err != nil {
		return fmt.Errorf("building graph %q: %w", cfg.Graph.Name, err)
	}
	ops, err := cfg.Operations()
	if err != nil {
		return err
	}
	req := evaluation.ConstructBaselinesRequest{
		ConstructRequest: evaluation.ConstructRequest{GraphName: cfg.Graph.Name, AttackBudget: cfg.AttackBudget},
		EdgeBudget:       cfg.EdgeBudget,
	}
	if len(ops) > 0 {
		req.Reconstructed, req.AddedEdges = evaluation.Reconstruct(g, ops)
		if skipped := len(ops) - len(req.AddedEdges); skipped > 0 {
			logrus.Warnf("construct %q: %d of %d edges could not be added", cfg.Graph.Name, skipped, len(ops))
		}
	}
	logrus.Infof("constructing on %q: %d nodes, %d edges", cfg.Graph.Name, g.NumNodes(), g.NumEdges())

	er, err := cfg.Evaluator().EvaluateConstructWithBaselines(ctx, g, req)
	if err != nil {
		return err
	}
	if err := evaluation.WriteConstructCSV(opts.Stdout, er); err != nil {
		return err
	}
	if opts.Dir == "" {
		return nil
	}
	if err := er.Save(filepath.Join(opts.Dir, evaluationFile)); err != nil {
		return err
	}
	return writeFile(filepath.Join(opts.Dir, comparisonFile), func(w io.Writer) error {
		return evaluation.WriteConstructCSV(w, er)
	})
}

// writeReports prints the comparison table and, when a directory is set,
// saves each result with summary.json and comparison.csv next to it.
func writeReports(results []*sim.Result, threshold float64, opts outputOptions) error {
	if err := sim.WriteSummaryCSV(opts.Stdout, results); err != nil {
		return err
	}
	if opts.Dir == "" {
		return nil
	}
	for _, r := range results {
		if err := r.Save(filepath.Join(opts.Dir, r.AlgorithmName+".json")); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	if err := writeFile(filepath.Join(opts.Dir, summaryFile), func(w io.Writer) error {
		return sim.WriteSummaryJSON(w, results, threshold, now)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(opts.Dir, comparisonFile), func(w io.Writer) error {
		return sim.WriteSummaryCSV(w, results)
	}); err != nil {
		return err
	}
	logrus.Infof("wrote %d results to %s", len(results), opts.Dir)
	return nil
}

// writeFile creates path (and its directory) and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
