package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// constructColumns are the column headers of the construct comparison export.
var constructColumns = []string{
	"Method", "R_tar", "R_ran", "R_improvement", "Added_Edges", "Final_Edges",
}

// originalRow labels the unmodified graph in the construct comparison.
const originalRow = "Original"

// ConstructResults returns the method's construct result followed by the
// construct baselines in a fixed order.
func (r *EvaluationResult) ConstructResults() []*ConstructResult {
	var out []*ConstructResult
	if r.Construct != nil {
		out = append(out, r.Construct)
	}
	for _, name := range []string{BaselineRandomConstruct, BaselineDegreeConstruct} {
		if b, ok := r.ConstructBaselines[name]; ok {
			out = append(out, b)
		}
	}
	return out
}

// WriteConstructCSV writes the original graph's scores followed by one row per
// construct result. Scores use six decimals.
func WriteConstructCSV(w io.Writer, r *EvaluationResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(constructColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	results := r.ConstructResults()
	if len(results) > 0 {
		o := results[0]
		row := []string{originalRow, f6(o.ROriginalTar), f6(o.ROriginalRan), f6(0), "0", strconv.Itoa(o.InitialEdges)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", originalRow, err)
		}
	}
	for _, c := range results {
		row := []string{
			c.MethodName,
			f6(c.RTar),
			f6(c.RRan),
			f6(c.RImprovement),
			strconv.Itoa(c.Budget),
			strconv.Itoa(c.FinalEdges),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", c.MethodName, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func f6(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
