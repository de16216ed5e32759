// Package processor runs the full HARA pipeline: scenario normalization,
// table alignment and ASIL determination.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/asil"
	"github.com/jayanthmani8045/hara-tool/pkg/matching"
	"github.com/jayanthmani8045/hara-tool/pkg/scenario"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// Result is the outcome of one pipeline run. Diagnostics aggregates the
// per-row findings of every stage in stage order.
type Result struct {
	Table        *tabular.Table      `json:"-"`
	Stats        matching.AlignStats `json:"stats"`
	Distribution map[asil.Level]int  `json:"distribution"`
	Diagnostics  []string            `json:"diagnostics"`
	Cancelled    bool                `json:"cancelled"`
}

// Processor wires the pipeline stages together. It holds no per-run state, so
// a single instance may serve concurrent runs.
type Processor struct {
	logger     ectologger.Logger
	settings   matching.Settings
	normalizer *scenario.Normalizer
	aligner    *matching.Aligner
	classifier *asil.Classifier
}

func New(logger ectologger.Logger, settings matching.Settings) *Processor {
	return &Processor{
		logger:     logger,
		settings:   settings,
		normalizer: scenario.NewNormalizer(logger),
		aligner:    matching.NewAligner(logger, settings),
		classifier: asil.NewClassifier(logger),
	}
}

// Process normalizes the scenario table, aligns it against the risk
// assessment table and classifies every aligned row. Input tables are never
// mutated. Cancellation between rows yields the partial result and
// ErrCancelled; configuration defects abort with a ConfigurationError.
func (p *Processor) Process(ctx context.Context, scenarios, risks *tabular.Table, progress matching.Progress) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.Process")
	defer span.End()

	log := p.logger.WithContext(ctx)

	normalized, err := p.normalizer.Normalize(ctx, scenarios)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]any{
		"scenarios": normalized.Table.Len(),
		"skipped":   normalized.SkippedRows,
	}).Info("Scenario normalization complete")

	result := &Result{Diagnostics: normalized.Diagnostics}

	aligned, err := p.aligner.Align(ctx, normalized.Table, risks, matching.AlignConfig{}, progress)
	if err != nil {
		return nil, err
	}
	result.Stats = aligned.Stats
	result.Diagnostics = append(result.Diagnostics, aligned.Diagnostics...)
	if aligned.Cancelled {
		result.Table = aligned.Table
		result.Cancelled = true
		log.WithFields(map[string]any{"rows_processed": aligned.Stats.RowsProcessed}).Warn("Run cancelled during alignment")
		return result, ErrCancelled
	}
	log.WithFields(map[string]any{
		"exact_matches": aligned.Stats.ExactMatches,
		"fuzzy_matches": aligned.Stats.FuzzyMatches,
		"unmatched":     aligned.Stats.Unmatched,
	}).Info("Table alignment complete")

	classified := p.classifier.ClassifyTable(ctx, aligned.Table)
	result.Table = classified.Table
	result.Distribution = classified.Distribution
	result.Diagnostics = append(result.Diagnostics, classified.Diagnostics...)

	log.WithFields(map[string]any{
		"rows":        result.Table.Len(),
		"diagnostics": len(result.Diagnostics),
	}).Info("Pipeline run complete")

	return result, nil
}
