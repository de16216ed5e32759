package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

func newTestRecord(fields map[string]any) *tabular.Record {
	r := tabular.NewRecord()
	for _, k := range []string{"os", "hazard"} {
		if v, ok := fields[k]; ok {
			r.Set(k, v)
		}
	}
	return r
}

func newCandidateTable(rows ...map[string]any) *tabular.Table {
	t := tabular.NewTable([]string{"os", "hazard"})
	for _, fields := range rows {
		t.Append(newTestRecord(fields))
	}
	return t
}

func ratioMatcher() *Matcher {
	return NewMatcher(NewScorer(ScorerOptions{Algorithm: AlgorithmRatio}))
}

func TestFindBestMatch_WeightedCombination(t *testing.T) {
	m := ratioMatcher()

	// primary scores 90 (one edit in ten), secondary scores 60 (four edits in ten)
	target := newTestRecord(map[string]any{"os": "aaaaaaaaaa", "hazard": "bbbbbbbbbb"})
	candidates := newCandidateTable(map[string]any{"os": "aaaaaaaaab", "hazard": "bbbbbbcccc"})

	cfg := MatchConfig{
		PrimaryField:    "os",
		SecondaryField:  "hazard",
		PrimaryWeight:   2,
		SecondaryWeight: 1,
		Threshold:       80,
	}

	best, reason, err := m.FindBestMatch(target, candidates, cfg)
	require.NoError(t, err)
	assert.Equal(t, Matched, reason)
	require.NotNil(t, best)
	assert.Equal(t, 90, best.PrimaryScore)
	assert.Equal(t, 60, best.SecondaryScore)
	assert.True(t, best.UsedSecondary)
	assert.Equal(t, 80, best.CombinedScore) // round(90*2/3 + 60*1/3)
}

func TestFindBestMatch_ThresholdBoundary(t *testing.T) {
	m := ratioMatcher()
	target := newTestRecord(map[string]any{"os": "aaaaaaaaaa"})
	candidates := newCandidateTable(map[string]any{"os": "aaaaaaaabb"}) // scores 80

	cfg := MatchConfig{PrimaryField: "os", PrimaryWeight: 1, Threshold: 80}
	best, reason, err := m.FindBestMatch(target, candidates, cfg)
	require.NoError(t, err)
	assert.Equal(t, Matched, reason)
	assert.Equal(t, 80, best.CombinedScore)

	cfg.Threshold = 81
	best, reason, err = m.FindBestMatch(target, candidates, cfg)
	require.NoError(t, err)
	assert.Equal(t, BelowThreshold, reason)
	assert.Nil(t, best)
}

func TestFindBestMatch_TieBreaksToFirstOccurrence(t *testing.T) {
	m := ratioMatcher()
	target := newTestRecord(map[string]any{"os": "highway driving"})
	candidates := newCandidateTable(
		map[string]any{"os": "highway driving"},
		map[string]any{"os": "highway driving"},
	)

	cfg := MatchConfig{PrimaryField: "os", PrimaryWeight: 1, Threshold: 80}
	best, reason, err := m.FindBestMatch(target, candidates, cfg)
	require.NoError(t, err)
	assert.Equal(t, Matched, reason)
	assert.Equal(t, 0, best.Index)
}

func TestFindBestMatch_NoCandidates(t *testing.T) {
	m := ratioMatcher()
	target := newTestRecord(map[string]any{"os": "highway driving"})
	cfg := MatchConfig{PrimaryField: "os", PrimaryWeight: 1, Threshold: 80}

	best, reason, err := m.FindBestMatch(target, newCandidateTable(), cfg)
	require.NoError(t, err)
	assert.Equal(t, NoCandidates, reason)
	assert.Nil(t, best)

	// every candidate lacking a primary value is the same outcome
	best, reason, err = m.FindBestMatch(target, newCandidateTable(map[string]any{"hazard": "fire"}), cfg)
	require.NoError(t, err)
	assert.Equal(t, NoCandidates, reason)
	assert.Nil(t, best)
}

func TestFindBestMatch_MissingPrimaryFieldIsConfigurationError(t *testing.T) {
	m := ratioMatcher()
	target := tabular.NewRecord()
	cfg := MatchConfig{PrimaryField: "os", PrimaryWeight: 1, Threshold: 80}

	_, _, err := m.FindBestMatch(target, newCandidateTable(map[string]any{"os": "x"}), cfg)
	require.Error(t, err)
	assert.True(t, tabular.IsConfigurationError(err))
}

func TestFindBestMatch_PrimaryOnlyWhenCandidateLacksSecondary(t *testing.T) {
	m := ratioMatcher()
	target := newTestRecord(map[string]any{"os": "aaaaaaaaaa", "hazard": "collision"})
	candidates := newCandidateTable(map[string]any{"os": "aaaaaaaaab"})

	cfg := MatchConfig{
		PrimaryField:    "os",
		SecondaryField:  "hazard",
		PrimaryWeight:   70,
		SecondaryWeight: 30,
		Threshold:       80,
	}

	best, reason, err := m.FindBestMatch(target, candidates, cfg)
	require.NoError(t, err)
	assert.Equal(t, Matched, reason)
	assert.False(t, best.UsedSecondary)
	assert.Equal(t, 90, best.CombinedScore)
}

func TestNormalizedWeights(t *testing.T) {
	w1, w2 := MatchConfig{PrimaryWeight: 70, SecondaryWeight: 30}.normalizedWeights()
	assert.InDelta(t, 0.7, w1, 1e-9)
	assert.InDelta(t, 0.3, w2, 1e-9)

	w1, w2 = MatchConfig{}.normalizedWeights()
	assert.Equal(t, 1.0, w1)
	assert.Equal(t, 0.0, w2)
}
