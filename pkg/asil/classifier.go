package asil

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// ColASIL is the column appended by ClassifyTable.
const ColASIL = "ASIL"

// Input holds the raw ratings for one hazardous event. Severity and
// controllability text is parsed strictly; exposure is assumed validated
// upstream and clamped into range.
type Input struct {
	Severity        string
	Controllability string
	Exposure        int
}

// Result carries the determined level, or the diagnostic explaining why no
// level could be determined. Exactly one of the two is set.
type Result struct {
	Level      Level
	Diagnostic string
}

// Classified reports whether a level was determined.
func (r Result) Classified() bool {
	return r.Diagnostic == ""
}

// Classify determines the integrity level for the given ratings. Severity
// zero resolves to QM without consulting the table; controllability zero does
// not, the C0 column carries real levels at high severity and exposure. The
// exposure is clamped to 1..4 so callers supplying the validated default
// cannot fall outside the table.
func Classify(in Input) Result {
	severity, diag := parseRating("severity", in.Severity, 0, 3)
	if diag != "" {
		return Result{Diagnostic: diag}
	}
	controllability, diag := parseRating("controllability", in.Controllability, 0, 3)
	if diag != "" {
		return Result{Diagnostic: diag}
	}
	if severity == 0 {
		return Result{Level: QM}
	}

	exposure := in.Exposure
	if exposure < 1 {
		exposure = 1
	}
	if exposure > 4 {
		exposure = 4
	}

	return Result{Level: decisionTable[ratingKey{severity, controllability, exposure}]}
}

// Diagnose explains why the given raw ratings cannot classify, or returns an
// empty string when they can.
func Diagnose(rawSeverity, rawControllability string) string {
	if _, diag := parseRating("severity", rawSeverity, 0, 3); diag != "" {
		return diag
	}
	if _, diag := parseRating("controllability", rawControllability, 0, 3); diag != "" {
		return diag
	}
	return ""
}

func parseRating(name, raw string, min, max int) (int, string) {
	if raw == "" {
		return 0, fmt.Sprintf("%s rating is missing", name)
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Sprintf("%s rating %q is not numeric", name, raw)
	}
	if v < min || v > max {
		return 0, fmt.Sprintf("%s rating %d is outside %d..%d", name, v, min, max)
	}
	return v, ""
}

// Classifier applies the decision table across an aligned table.
type Classifier struct {
	logger ectologger.Logger
}

func NewClassifier(logger ectologger.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// TableResult is a classified table plus per-row diagnostics and the level
// distribution.
type TableResult struct {
	Table        *tabular.Table
	Diagnostics  []string
	Distribution map[Level]int
}

// ClassifyTable appends an ASIL column to every row. Rows whose ratings do
// not classify get an empty level and a diagnostic; the pass never aborts.
func (c *Classifier) ClassifyTable(ctx context.Context, t *tabular.Table) *TableResult {
	ctx, span := tracing.StartSpan(ctx, "asil.Classifier.ClassifyTable")
	defer span.End()

	cols := tabular.ResolveColumns(t)
	severityCol, _ := cols.Column(tabular.ColSeverity)
	controllabilityCol, _ := cols.Column(tabular.ColControllability)
	exposureCol, _ := cols.Column(tabular.ColExposure)

	result := &TableResult{
		Table:        tabular.NewTable(append(t.Header(), ColASIL)),
		Diagnostics:  cols.Diagnostics(),
		Distribution: map[Level]int{},
	}

	for i, row := range t.Rows() {
		exposure := 4
		if exposureCol != "" {
			if e, ok := row.Int(exposureCol); ok {
				exposure = e
			}
		}

		res := Classify(Input{
			Severity:        row.String(severityCol),
			Controllability: row.String(controllabilityCol),
			Exposure:        exposure,
		})

		out := row.Clone()
		if res.Classified() {
			out.Set(ColASIL, string(res.Level))
			result.Distribution[res.Level]++
		} else {
			out.Set(ColASIL, "")
			result.Diagnostics = append(result.Diagnostics, fmt.Sprintf("row %d: %s", i, res.Diagnostic))
		}
		result.Table.Append(out)
	}

	fields := map[string]any{"rows": result.Table.Len(), "unclassified": len(result.Diagnostics)}
	for level, count := range result.Distribution {
		fields["asil_"+string(level)] = count
	}
	c.logger.WithContext(ctx).WithFields(fields).Info("Determined ASIL levels")

	return result
}
