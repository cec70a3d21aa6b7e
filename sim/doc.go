// Package sim provides the core resilience simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - operation.go: the two structural operations (RemoveNode, AddEdge)
//   - strategy.go: the Strategy contract and its built-in variants
//   - simulator.go: the select -> apply -> measure loop that produces a Result
//
// # Architecture
//
// The sim package composes graph state, strategies and metrics; supporting
// pieces live in sub-packages:
//   - sim/graph/: undirected graph state, components, generators
//   - sim/trace/: per-step decision trace recording
//   - sim/telemetry/: Prometheus collectors for runs and batches
//   - sim/evaluation/: unified dismantle/construct evaluator and its YAML config
//
// Every run works on a private copy of the caller's graph, so runs share no
// mutable state and batches (aggregate.go) can execute them concurrently.
//
// # Key Interfaces
//
// The extension points are small:
//   - Strategy: select the next operation given the current graph, step and budget
//   - Preparer: optional one-time inspection of the graph before the first step
//   - PolicyFunc: callback adapted by ExternalPolicy, e.g. a learned scorer
package sim
