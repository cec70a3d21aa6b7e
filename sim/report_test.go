package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustResult(t *testing.T, name string, values []float64) *Result {
	t.Helper()
	fractions := make([]float64, len(values))
	for i := range fractions {
		fractions[i] = float64(i) / 4
	}
	seq := RemovalSequence(nil)
	for i := 1; i < len(values); i++ {
		seq = append(seq, RemoveNode(0))
	}
	r, err := NewResult(RunInfo{
		AlgorithmName:     name,
		DatasetName:       "synthetic",
		GraphName:         "g",
		InitialNodes:      5,
		InitialEdges:      4,
		Budget:            len(values) - 1,
		CollapseThreshold: 0.25,
	}, seq, Curve{Fractions: fractions, Values: values}, nil)
	require.NoError(t, err)
	return r
}

func TestNewResult_LengthMismatch(t *testing.T) {
	_, err := NewResult(RunInfo{}, nil, Curve{Fractions: []float64{0, 0.2}, Values: []float64{1}}, nil)

	assert.ErrorIs(t, err, ErrCurveLengthMismatch)
}

func TestResult_SaveAndLoad(t *testing.T) {
	// GIVEN a collapsed result written to a nested path
	r := mustResult(t, "HighestDegree", []float64{1, 0.6, 0.1})
	path := filepath.Join(t.TempDir(), "out", "HighestDegree_result.json")

	require.NoError(t, r.Save(path))

	// THEN the file uses the documented keys
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"algorithm_name", "dataset_name", "graph_name", "attack_sequence", "removal_fractions",
		"lcc_values", "r_res", "collapse_threshold", "collapse_fraction", "initial_nodes",
		"initial_edges", "budget", "extra_metrics",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, []any{"0", "0"}, raw["attack_sequence"])

	// THEN loading restores the same values
	loaded, err := LoadResult(path)
	require.NoError(t, err)
	assert.Equal(t, r.AlgorithmName, loaded.AlgorithmName)
	assert.Equal(t, r.AttackSequence, loaded.AttackSequence)
	assert.Equal(t, r.LCCValues, loaded.LCCValues)
	assert.Equal(t, r.RRes, loaded.RRes)
	require.NotNil(t, loaded.CollapseFraction)
	assert.Equal(t, *r.CollapseFraction, *loaded.CollapseFraction)
}

func TestLoadResult_RejectsMismatchedCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"removal_fractions":[0,0.1],"lcc_values":[1]}`), 0o644))

	_, err := LoadResult(path)

	assert.ErrorIs(t, err, ErrCurveLengthMismatch)
}

func TestWriteSummaryCSV(t *testing.T) {
	results := []*Result{
		mustResult(t, "HighestDegree", []float64{1, 0.5, 0}),
		mustResult(t, "Random_avg10", []float64{1, 0.9, 0.8}),
	}
	var buf bytes.Buffer

	require.NoError(t, WriteSummaryCSV(&buf, results))

	// fractions step by 0.25; HighestDegree crosses 0.25 halfway into its second step
	want := "Algorithm,R_res,Collapse_Fraction,Initial_Nodes,Initial_Edges,Budget\n" +
		"HighestDegree,0.250000,0.375,5,4,2\n" +
		"Random_avg10,0.450000,N/A,5,4,2\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryJSON(t *testing.T) {
	results := []*Result{mustResult(t, "HighestDegree", []float64{1, 0.6, 0.1})}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, WriteSummaryJSON(&buf, results, 0.2, now))

	var got Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, now.Equal(got.Timestamp))
	assert.Equal(t, 0.2, got.CollapseThreshold)
	require.Len(t, got.Algorithms, 1)
	assert.Equal(t, "HighestDegree", got.Algorithms[0].Name)
	assert.Equal(t, 2, got.Algorithms[0].NodesRemoved)
}
