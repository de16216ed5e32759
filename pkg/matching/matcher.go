package matching

import (
	"math"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// MatchConfig describes how a target record is compared against candidates.
// Field names are the already-resolved header names on each side; candidate
// names default to the target names when left empty. Weights are relative
// emphasis, normalized internally to sum to 1.
type MatchConfig struct {
	PrimaryField       string
	CandidatePrimary   string
	SecondaryField     string
	CandidateSecondary string
	PrimaryWeight      float64
	SecondaryWeight    float64
	Threshold          int
}

func (c MatchConfig) candidatePrimary() string {
	if c.CandidatePrimary != "" {
		return c.CandidatePrimary
	}
	return c.PrimaryField
}

func (c MatchConfig) candidateSecondary() string {
	if c.CandidateSecondary != "" {
		return c.CandidateSecondary
	}
	return c.SecondaryField
}

// normalizedWeights returns the primary/secondary weights scaled to sum to 1.
// Non-positive input falls back to primary-only emphasis.
func (c MatchConfig) normalizedWeights() (float64, float64) {
	p, s := c.PrimaryWeight, c.SecondaryWeight
	if p <= 0 && s <= 0 {
		return 1, 0
	}
	if p < 0 {
		p = 0
	}
	if s < 0 {
		s = 0
	}
	total := p + s
	return p / total, s / total
}

// Candidate is an ephemeral per-comparison score, discarded once the best
// candidate has been chosen.
type Candidate struct {
	Record         *tabular.Record
	Index          int
	PrimaryScore   int
	SecondaryScore int
	CombinedScore  int
	UsedSecondary  bool
}

// NoMatchReason distinguishes the ways FindBestMatch can return no candidate.
type NoMatchReason string

const (
	// Matched means a candidate met the threshold.
	Matched NoMatchReason = ""
	// NoCandidates means the candidate table was empty or every candidate
	// lacked a primary value.
	NoCandidates NoMatchReason = "no_candidates"
	// BelowThreshold means a best candidate existed but its combined score
	// missed the threshold. Not an error.
	BelowThreshold NoMatchReason = "below_threshold"
)

// Matcher selects the best candidate record for a target using one or two
// weighted similarity scores.
type Matcher struct {
	scorer *Scorer
}

// NewMatcher creates a matcher around the given scorer.
func NewMatcher(scorer *Scorer) *Matcher {
	return &Matcher{scorer: scorer}
}

// FindBestMatch scans candidates for the record with the strictly highest
// combined score. Ties break to the first occurrence in iteration order. A
// winner below the threshold is reported as BelowThreshold, distinguishable
// from an empty candidate set. A target without the primary field is a
// configuration problem, never a silent zero score.
func (m *Matcher) FindBestMatch(target *tabular.Record, candidates *tabular.Table, cfg MatchConfig) (*Candidate, NoMatchReason, error) {
	if !target.Has(cfg.PrimaryField) {
		return nil, NoCandidates, &tabular.ConfigurationError{Column: cfg.PrimaryField}
	}
	if candidates == nil || candidates.Len() == 0 {
		return nil, NoCandidates, nil
	}

	targetPrimary, _ := target.Get(cfg.PrimaryField)
	targetSecondary, hasSecondary := target.Get(cfg.SecondaryField)
	hasSecondary = hasSecondary && cfg.SecondaryField != ""
	w1, w2 := cfg.normalizedWeights()

	var best *Candidate
	scored := false

	for i, row := range candidates.Rows() {
		if row.IsEmpty(cfg.candidatePrimary()) {
			continue
		}
		scored = true

		candidatePrimary, _ := row.Get(cfg.candidatePrimary())
		cand := &Candidate{
			Record:       row,
			Index:        i,
			PrimaryScore: m.scorer.Score(targetPrimary, candidatePrimary),
		}

		if hasSecondary && !row.IsEmpty(cfg.candidateSecondary()) && w2 > 0 {
			candidateSecondary, _ := row.Get(cfg.candidateSecondary())
			cand.SecondaryScore = m.scorer.Score(targetSecondary, candidateSecondary)
			cand.UsedSecondary = true
			cand.CombinedScore = int(math.Round(float64(cand.PrimaryScore)*w1 + float64(cand.SecondaryScore)*w2))
		} else {
			cand.CombinedScore = cand.PrimaryScore
		}

		if best == nil || cand.CombinedScore > best.CombinedScore {
			best = cand
		}
	}

	if !scored {
		return nil, NoCandidates, nil
	}
	if best.CombinedScore < cfg.Threshold {
		return nil, BelowThreshold, nil
	}
	return best, Matched, nil
}
