package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("token-set-ratio")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmTokenSetRatio, alg)

	alg, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgorithm, alg)

	alg, err = ParseAlgorithm(" Partial-Ratio ")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmPartialRatio, alg)

	_, err = ParseAlgorithm("soundex")
	assert.Error(t, err)
}

func TestScorer_Prepare(t *testing.T) {
	s := NewScorer(ScorerOptions{StripWhitespace: true})
	assert.Equal(t, "highway driving", s.Prepare("  Highway\t driving  "))
	assert.Equal(t, "", s.Prepare(nil))
	assert.Equal(t, "42", s.Prepare(int64(42)))

	caseSensitive := NewScorer(ScorerOptions{CaseSensitive: true})
	assert.Equal(t, "Highway", caseSensitive.Prepare("Highway"))
}

func TestScorer_Ratio(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio})

	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "identical", a: "test", b: "test", expected: 100},
		{name: "kitten sitting", a: "kitten", b: "sitting", expected: 57},
		{name: "one edit in ten", a: "aaaaaaaaaa", b: "aaaaaaaaab", expected: 90},
		{name: "disjoint", a: "abc", b: "xyz", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Score(tt.a, tt.b))
		})
	}
}

func TestScorer_EmptyValues(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio})
	assert.Equal(t, 100, s.Score("", ""))
	assert.Equal(t, 100, s.Score(nil, "   "))
	assert.Equal(t, 0, s.Score("", "something"))
	assert.Equal(t, 0, s.Score("something", nil))
}

func TestScorer_CaseSensitivity(t *testing.T) {
	insensitive := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio})
	assert.Equal(t, 100, insensitive.Score("Highway Driving", "highway driving"))

	sensitive := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio, CaseSensitive: true})
	assert.Less(t, sensitive.Score("Highway Driving", "highway driving"), 100)
}

func TestScorer_PartialRatioDetectsContainment(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmPartialRatio})
	assert.Equal(t, 100, s.Score("scenario", "highway scenario overtaking"))

	full := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio})
	assert.Less(t, full.Score("scenario", "highway scenario overtaking"), 100)
}

func TestScorer_TokenSortNeutralizesWordOrder(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmTokenSortRatio})
	assert.Equal(t, 100, s.Score("driving highway", "highway driving"))
}

func TestScorer_TokenSetBeatsRatioOnReorderedTokens(t *testing.T) {
	a := "fuzzy wuzzy was a bear"
	b := "wuzzy fuzzy was a bear"

	tokenSet := NewScorer(ScorerOptions{Algorithm: AlgorithmTokenSetRatio})
	assert.Equal(t, 100, tokenSet.Score(a, b))

	plain := NewScorer(ScorerOptions{Algorithm: AlgorithmRatio})
	assert.Less(t, plain.Score(a, b), 100)
}

func TestScorer_TokenSetIgnoresExtraTokens(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmTokenSetRatio})
	// one side is a superset of the other's tokens
	assert.Equal(t, 100, s.Score("highway driving", "highway driving at night"))
}

func TestScorer_Deterministic(t *testing.T) {
	s := NewScorer(ScorerOptions{Algorithm: AlgorithmTokenSetRatio})
	first := s.Score("vehicle overtaking on motorway", "overtaking vehicle motorway")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Score("vehicle overtaking on motorway", "overtaking vehicle motorway"))
	}
}
