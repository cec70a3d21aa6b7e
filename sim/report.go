package sim

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// summaryColumns are the column headers of the tabular summary export.
var summaryColumns = []string{
	"Algorithm", "R_res", "Collapse_Fraction", "Initial_Nodes", "Initial_Edges", "Budget",
}

// Save writes r as indented JSON to path, creating parent directories.
func (r *Result) Save(path string) error {
	return WriteJSONFile(path, r)
}

// LoadResult reads a Result written by Save. The curve length invariant is
// checked; derived fields are taken as stored.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing result %s: %w", path, err)
	}
	if len(r.RemovalFractions) != len(r.LCCValues) {
		return nil, fmt.Errorf("result %s: %w", path, ErrCurveLengthMismatch)
	}
	if r.ExtraMetrics == nil {
		r.ExtraMetrics = map[string]any{}
	}
	return &r, nil
}

// WriteSummaryCSV writes one row per result with columns
// Algorithm, R_res, Collapse_Fraction, Initial_Nodes, Initial_Edges, Budget.
// R_res uses six decimals; a missing collapse fraction is written as N/A.
func WriteSummaryCSV(w io.Writer, results []*Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(summaryColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range results {
		collapse := "N/A"
		if r.CollapseFraction != nil {
			collapse = strconv.FormatFloat(*r.CollapseFraction, 'f', -1, 64)
		}
		row := []string{
			r.AlgorithmName,
			strconv.FormatFloat(r.RRes, 'f', 6, 64),
			collapse,
			strconv.Itoa(r.InitialNodes),
			strconv.Itoa(r.InitialEdges),
			strconv.Itoa(r.Budget),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.AlgorithmName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// AlgorithmSummary is one entry of a JSON summary.
type AlgorithmSummary struct {
	Name             string   `json:"name"`
	RRes             float64  `json:"r_res"`
	CollapseFraction *float64 `json:"collapse_fraction"`
	InitialNodes     int      `json:"initial_nodes"`
	InitialEdges     int      `json:"initial_edges"`
	Budget           int      `json:"budget"`
	NodesRemoved     int      `json:"nodes_removed"`
}

// Summary is the JSON comparison document written by WriteSummaryJSON.
type Summary struct {
	Timestamp         time.Time          `json:"timestamp"`
	CollapseThreshold float64            `json:"collapse_threshold"`
	Algorithms        []AlgorithmSummary `json:"algorithms"`
}

// NewSummary builds a Summary of results stamped with now.
// NodesRemoved counts the operations in each attack sequence.
func NewSummary(results []*Result, threshold float64, now time.Time) Summary {
	s := Summary{Timestamp: now, CollapseThreshold: threshold, Algorithms: make([]AlgorithmSummary, 0, len(results))}
	for _, r := range results {
		s.Algorithms = append(s.Algorithms, AlgorithmSummary{
			Name:             r.AlgorithmName,
			RRes:             r.RRes,
			CollapseFraction: r.CollapseFraction,
			InitialNodes:     r.InitialNodes,
			InitialEdges:     r.InitialEdges,
			Budget:           r.Budget,
			NodesRemoved:     len(r.AttackSequence),
		})
	}
	return s
}

// WriteSummaryJSON writes NewSummary(results, threshold, now) as indented JSON.
func WriteSummaryJSON(w io.Writer, results []*Result, threshold float64, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummary(results, threshold, now)); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteJSONFile writes v as indented JSON to path, creating parent directories.
func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
