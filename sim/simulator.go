package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/resilience-sim/sim/graph"
	"github.com/inference-sim/resilience-sim/sim/telemetry"
	"github.com/inference-sim/resilience-sim/sim/trace"
)

// Keys written to Result.ExtraMetrics by Run.
const (
	MetricSkippedOperations = "skipped_operations"
	MetricNodesRemoved      = "nodes_removed"
	MetricEdgesAdded        = "edges_added"
	MetricStopReason        = "stop_reason"
)

// RunConfig groups the parameters of a single simulation run.
type RunConfig struct {
	Budget            int     // maximum number of operations; <= 0 yields a single-point curve
	CollapseThreshold float64 // 0 means DefaultCollapseThreshold
	DatasetName       string
	GraphName         string
	Trace             *trace.RunTrace // optional; nil disables tracing
}

func (c RunConfig) threshold() float64 {
	if c.CollapseThreshold <= 0 {
		return DefaultCollapseThreshold
	}
	return c.CollapseThreshold
}

// Run executes the select -> apply -> measure loop of s on a private copy of g
// and returns the fully computed Result. g is never modified.
//
// The loop stops when the budget is spent, the graph is empty, or the strategy
// reports no candidate. An operation whose target is absent is a no-op that
// still occupies a step. Removals advance the progress axis by
// 1/initial_nodes when applied; edge additions advance it by 1/budget.
//
// Errors come only from the strategy or from ctx; the partial curve is
// discarded in that case.
func Run(ctx context.Context, g *graph.Graph, s Strategy, cfg RunConfig) (*Result, error) {
	start := time.Now()
	name := s.Name()

	work := g.Copy()
	initialNodes, initialEdges := work.NumNodes(), work.NumEdges()
	if p, ok := s.(Preparer); ok {
		p.Prepare(work)
	}

	seq := make([]Operation, 0, max(cfg.Budget, 0))
	fractions := []float64{0.0}
	values := []float64{LCCRatio(work, initialNodes)}

	removed, added, skipped := 0, 0, 0
	fraction := 0.0
	stop := trace.StopBudget

	for step := 0; step < cfg.Budget; step++ {
		if err := ctx.Err(); err != nil {
			return nil, finishFailed(cfg.Trace, name, trace.StopCancelled, telemetry.OutcomeCancelled, err)
		}
		if work.NumNodes() == 0 {
			stop = trace.StopEmptyGraph
			break
		}

		selectStart := time.Now()
		op, ok, err := s.SelectOperation(ctx, work, step, cfg.Budget)
		latency := time.Since(selectStart)
		if err != nil {
			return nil, finishFailed(cfg.Trace, name, trace.StopFailed, telemetry.OutcomeFailed,
				fmt.Errorf("run %s: %w", name, err))
		}
		if !ok {
			stop = trace.StopExhausted
			break
		}

		applied := op.apply(work)
		switch {
		case op.Kind == OpAddEdge:
			fraction += 1.0 / float64(cfg.Budget)
			if applied {
				added++
			}
		case applied:
			removed++
			fraction = float64(removed) / float64(initialNodes)
		}
		if !applied {
			skipped++
			logrus.Debugf("[%s] step %d: operation %s not applicable, skipped", name, step, op)
		}

		lcc := LCCRatio(work, initialNodes)
		seq = append(seq, op)
		fractions = append(fractions, fraction)
		values = append(values, lcc)

		if cfg.Trace.Enabled() {
			cfg.Trace.RecordStep(trace.StepRecord{
				Step:          step,
				Operation:     op.String(),
				Applied:       applied,
				Fraction:      fraction,
				LCC:           lcc,
				SelectLatency: latency,
			})
		}
	}
	if cfg.Trace != nil {
		cfg.Trace.SetStop(stop)
	}

	info := RunInfo{
		AlgorithmName:     name,
		DatasetName:       cfg.DatasetName,
		GraphName:         cfg.GraphName,
		InitialNodes:      initialNodes,
		InitialEdges:      initialEdges,
		Budget:            cfg.Budget,
		CollapseThreshold: cfg.threshold(),
	}
	extra := map[string]any{
		MetricSkippedOperations: skipped,
		MetricNodesRemoved:      removed,
		MetricEdgesAdded:        added,
		MetricStopReason:        string(stop),
	}
	res, err := NewResult(info, seq, Curve{Fractions: fractions, Values: values}, extra)
	if err != nil {
		return nil, err
	}

	telemetry.RunsTotal.WithLabelValues(name, telemetry.OutcomeOK).Inc()
	telemetry.StepsTotal.WithLabelValues(name).Add(float64(len(seq)))
	telemetry.SkippedOperations.WithLabelValues(name).Add(float64(skipped))
	telemetry.RunDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	logrus.Debugf("[%s] run on %q finished (%s): %d steps, r_res=%.6f", name, cfg.GraphName, stop, len(seq), res.RRes)
	return res, nil
}

// finishFailed records a failed run in the trace and telemetry and returns err.
func finishFailed(rt *trace.RunTrace, name string, reason trace.StopReason, outcome string, err error) error {
	if rt != nil {
		rt.SetStop(reason)
	}
	telemetry.RunsTotal.WithLabelValues(name, outcome).Inc()
	return err
}
