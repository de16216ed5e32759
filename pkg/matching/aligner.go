package matching

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// Output columns appended to every aligned row.
const (
	ColMatchScore = "Match_Score"
	ColMatchType  = "Match_Type"
	ColMatched    = "Matched"
)

// Settings is the full engine configuration surface. Weights are relative
// emphasis between the scenario and hazard scores.
type Settings struct {
	FuzzyEnabled    bool
	Threshold       int
	Algorithm       Algorithm
	CaseSensitive   bool
	StripWhitespace bool
	PrimaryWeight   float64
	SecondaryWeight float64
}

// DefaultSettings mirrors the tool's shipped defaults.
func DefaultSettings() Settings {
	return Settings{
		FuzzyEnabled:    true,
		Threshold:       80,
		Algorithm:       DefaultAlgorithm,
		CaseSensitive:   false,
		StripWhitespace: true,
		PrimaryWeight:   70,
		SecondaryWeight: 30,
	}
}

// ScorerOptions projects the scorer-relevant part of the settings.
func (s Settings) ScorerOptions() ScorerOptions {
	return ScorerOptions{
		Algorithm:       s.Algorithm,
		CaseSensitive:   s.CaseSensitive,
		StripWhitespace: s.StripWhitespace,
	}
}

// AlignConfig names the canonical join columns. Zero values join on
// operating scenario with hazard as the secondary signal.
type AlignConfig struct {
	PrimaryColumn   string
	SecondaryColumn string
}

func (c AlignConfig) withDefaults() AlignConfig {
	if c.PrimaryColumn == "" {
		c.PrimaryColumn = tabular.ColOperatingScenario
	}
	if c.SecondaryColumn == "" {
		c.SecondaryColumn = tabular.ColHazard
	}
	return c
}

// Progress receives a monotonic (rows done, total rows) signal after each
// source row. It is invoked synchronously and in row order.
type Progress func(done, total int)

// AlignStats summarizes one alignment pass.
type AlignStats struct {
	ExactMatches  int `json:"exact_matches"`
	FuzzyMatches  int `json:"fuzzy_matches"`
	Unmatched     int `json:"unmatched"`
	RowsProcessed int `json:"rows_processed"`
	TotalRows     int `json:"total_rows"`
}

// AlignResult is the outcome of an alignment pass. When Cancelled is set the
// table holds the rows completed before the cancellation point.
type AlignResult struct {
	Table       *tabular.Table
	Stats       AlignStats
	Diagnostics []string
	Cancelled   bool
}

// Aligner drives the weighted matcher across an entire source table against a
// target table, one output row per source row.
type Aligner struct {
	logger   ectologger.Logger
	settings Settings
	scorer   *Scorer
	matcher  *Matcher
}

// NewAligner creates an aligner with the given settings.
func NewAligner(logger ectologger.Logger, settings Settings) *Aligner {
	scorer := NewScorer(settings.ScorerOptions())
	return &Aligner{
		logger:   logger,
		settings: settings,
		scorer:   scorer,
		matcher:  NewMatcher(scorer),
	}
}

// Align links each source row to its best target row. Rows are processed
// independently in order; cancellation is checked between rows and yields the
// partial table with Cancelled set rather than discarding completed work.
// Unresolvable join columns abort the whole pass with a ConfigurationError.
func (a *Aligner) Align(ctx context.Context, source, target *tabular.Table, cfg AlignConfig, progress Progress) (*AlignResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Aligner.Align")
	defer span.End()

	cfg = cfg.withDefaults()

	sourceCols := tabular.ResolveColumns(source)
	targetCols := tabular.ResolveColumns(target)

	srcPrimary, err := sourceCols.Require(cfg.PrimaryColumn)
	if err != nil {
		return nil, err
	}
	tgtPrimary, err := targetCols.Require(cfg.PrimaryColumn)
	if err != nil {
		return nil, err
	}
	srcSecondary, _ := sourceCols.Column(cfg.SecondaryColumn)
	tgtSecondary, _ := targetCols.Column(cfg.SecondaryColumn)

	result := &AlignResult{
		Table: tabular.NewTable(a.outputHeader(source, target, tgtPrimary)),
		Stats: AlignStats{TotalRows: source.Len()},
	}
	result.Diagnostics = append(result.Diagnostics, sourceCols.Diagnostics()...)
	result.Diagnostics = append(result.Diagnostics, targetCols.Diagnostics()...)

	exactIndex := a.buildExactIndex(target, tgtPrimary)

	matchCfg := MatchConfig{
		PrimaryField:       srcPrimary,
		CandidatePrimary:   tgtPrimary,
		SecondaryField:     srcSecondary,
		CandidateSecondary: tgtSecondary,
		PrimaryWeight:      a.settings.PrimaryWeight,
		SecondaryWeight:    a.settings.SecondaryWeight,
		Threshold:          a.settings.Threshold,
	}

	log := a.logger.WithContext(ctx)

	for i, row := range source.Rows() {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			result.Stats.RowsProcessed = i
			log.WithFields(map[string]any{"rows_processed": i, "total_rows": source.Len()}).Warn("Alignment cancelled")
			return result, nil
		default:
		}

		matched, score, matchType := a.matchRow(row, target, exactIndex, matchCfg, srcPrimary, srcSecondary, tgtSecondary)

		switch {
		case matched == nil:
			result.Stats.Unmatched++
		case matchType == "exact":
			result.Stats.ExactMatches++
		default:
			result.Stats.FuzzyMatches++
		}

		result.Table.Append(a.buildOutputRow(row, matched, score, matchType, tgtPrimary))
		result.Stats.RowsProcessed = i + 1

		if progress != nil {
			progress(i+1, source.Len())
		}
	}

	log.WithFields(map[string]any{
		"exact_matches": result.Stats.ExactMatches,
		"fuzzy_matches": result.Stats.FuzzyMatches,
		"unmatched":     result.Stats.Unmatched,
		"algorithm":     a.settings.Algorithm,
		"fuzzy_enabled": a.settings.FuzzyEnabled,
	}).Info("Alignment complete")

	return result, nil
}

// matchRow resolves one source row. The exact phase always runs; the fuzzy
// phase runs only when enabled and the exact phase found nothing. Exact mode
// is a distinct path over a prepared-value index, not a threshold-100 shortcut.
func (a *Aligner) matchRow(row *tabular.Record, target *tabular.Table, exactIndex map[string][]int, cfg MatchConfig, srcPrimary, srcSecondary, tgtSecondary string) (*tabular.Record, int, string) {
	primary, ok := row.Get(srcPrimary)
	prepared := a.scorer.Prepare(primary)
	if !ok || prepared == "" {
		return nil, 0, ""
	}

	hazard := ""
	if srcSecondary != "" {
		hazard = a.scorer.Prepare(row.String(srcSecondary))
	}

	// Exact phase: when the source row carries a hazard and the target table
	// has a hazard column, both values must agree.
	for _, idx := range exactIndex[prepared] {
		candidate := target.Row(idx)
		if hazard != "" && tgtSecondary != "" {
			if a.scorer.Prepare(candidate.String(tgtSecondary)) != hazard {
				continue
			}
		}
		return candidate, 100, "exact"
	}

	if !a.settings.FuzzyEnabled {
		return nil, 0, ""
	}

	best, reason, err := a.matcher.FindBestMatch(row, target, cfg)
	if err != nil || reason != Matched {
		return nil, 0, ""
	}
	return best.Record, best.CombinedScore, fmt.Sprintf("fuzzy-%s", a.settings.Algorithm)
}

// buildExactIndex maps prepared primary values to target row indices in table
// order, bounding the exact path to O(source+target).
func (a *Aligner) buildExactIndex(target *tabular.Table, tgtPrimary string) map[string][]int {
	index := make(map[string][]int)
	for i, row := range target.Rows() {
		prepared := a.scorer.Prepare(row.String(tgtPrimary))
		if prepared == "" {
			continue
		}
		index[prepared] = append(index[prepared], i)
	}
	return index
}

// outputHeader is the source header followed by the non-colliding target
// columns and the match metadata columns.
func (a *Aligner) outputHeader(source, target *tabular.Table, tgtPrimary string) []string {
	header := source.Header()
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[col] = true
	}
	for _, col := range target.Header() {
		if col == tgtPrimary || seen[col] {
			continue
		}
		header = append(header, col)
		seen[col] = true
	}
	return append(header, ColMatchScore, ColMatchType, ColMatched)
}

// buildOutputRow merges the source row with the matched target fields.
// Unmatched rows are retained with target fields absent, preserving 1:1
// cardinality with the source.
func (a *Aligner) buildOutputRow(src, matched *tabular.Record, score int, matchType, tgtPrimary string) *tabular.Record {
	out := src.Clone()

	if matched != nil {
		for _, field := range matched.Fields() {
			if field == tgtPrimary || out.Has(field) {
				continue
			}
			v, _ := matched.Get(field)
			out.Set(field, v)
		}
		out.Set(ColMatchScore, int64(score))
		switch matchType {
		case "exact":
			out.Set(ColMatchType, "Exact")
		default:
			out.Set(ColMatchType, fmt.Sprintf("Fuzzy-%s (%d%%)", algorithmLabel(a.settings.Algorithm), score))
		}
		out.Set(ColMatched, true)
	} else {
		out.Set(ColMatchScore, int64(0))
		out.Set(ColMatchType, "No match")
		out.Set(ColMatched, false)
	}

	return out
}

func algorithmLabel(alg Algorithm) string {
	switch alg {
	case AlgorithmPartialRatio:
		return "Partial"
	case AlgorithmTokenSortRatio:
		return "TokenSort"
	case AlgorithmTokenSetRatio:
		return "TokenSet"
	default:
		return "Ratio"
	}
}
