// Package scenario derives canonical exposure values and hazard associations
// for operating scenario rows before alignment.
package scenario

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// Output columns of the normalized scenario table.
const (
	ColOperatingScenario = "Operating Scenario"
	ColExposure          = "E"
	ColHazard            = "Hazard"
	ColOriginalIndex     = "Original_Index"
)

// DefaultExposure is assumed when a scenario carries no usable exposure value.
// Worst-case exposure is a safety-conservative policy, not a data-quality
// shortcut; rows must never classify with a lower exposure than stated.
const DefaultExposure = 4

// Result is the normalized table plus what was observed while producing it.
type Result struct {
	Table       *tabular.Table
	Diagnostics []string
	SkippedRows int
}

// Normalizer extracts and canonicalizes operating scenario rows.
type Normalizer struct {
	logger ectologger.Logger
}

func NewNormalizer(logger ectologger.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize produces one canonical row per scenario row that has scenario
// text. A missing operating scenario column aborts with a ConfigurationError;
// rows with empty scenario text are skipped with a diagnostic.
func (n *Normalizer) Normalize(ctx context.Context, t *tabular.Table) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "scenario.Normalizer.Normalize")
	defer span.End()

	cols := tabular.ResolveColumns(t)

	osCol, err := cols.Require(tabular.ColOperatingScenario)
	if err != nil {
		return nil, err
	}
	exposureCol, hasExposure := cols.Column(tabular.ColExposure)
	hazardCols := tabular.HazardColumns(t, cols)

	result := &Result{
		Table:       tabular.NewTable([]string{ColOperatingScenario, ColExposure, ColHazard, ColOriginalIndex}),
		Diagnostics: cols.Diagnostics(),
	}

	for i, row := range t.Rows() {
		if row.IsEmpty(osCol) {
			result.SkippedRows++
			result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("row %d: empty operating scenario, skipped", i))
			continue
		}

		exposure := DefaultExposure
		if hasExposure && !row.IsEmpty(exposureCol) {
			if e, ok := row.Int(exposureCol); ok && e >= 1 && e <= 4 {
				exposure = e
			} else {
				result.Diagnostics = append(result.Diagnostics, fmt.Sprintf(
					"row %d: exposure %q invalid, defaulting to %d", i, row.String(exposureCol), DefaultExposure))
			}
		}

		hazard := ""
		for _, col := range hazardCols {
			if !row.IsEmpty(col) {
				hazard = row.String(col)
				break
			}
		}

		out := tabular.NewRecord()
		out.Set(ColOperatingScenario, row.String(osCol))
		out.Set(ColExposure, int64(exposure))
		out.Set(ColHazard, hazard)
		out.Set(ColOriginalIndex, int64(i))
		result.Table.Append(out)
	}

	n.logger.WithContext(ctx).WithFields(map[string]any{
		"scenarios":      result.Table.Len(),
		"skipped_rows":   result.SkippedRows,
		"hazard_columns": len(hazardCols),
	}).Debug("Normalized operating scenarios")

	return result, nil
}
