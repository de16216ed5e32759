// Package matching implements the record linkage engine: string similarity
// scoring, weighted best-candidate selection, and whole-table alignment.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// Algorithm selects the similarity algorithm used by a Scorer.
type Algorithm string

const (
	AlgorithmRatio          Algorithm = "ratio"
	AlgorithmPartialRatio   Algorithm = "partial-ratio"
	AlgorithmTokenSortRatio Algorithm = "token-sort-ratio"
	AlgorithmTokenSetRatio  Algorithm = "token-set-ratio"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = AlgorithmTokenSetRatio

// ParseAlgorithm parses a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AlgorithmRatio:
		return AlgorithmRatio, nil
	case AlgorithmPartialRatio:
		return AlgorithmPartialRatio, nil
	case AlgorithmTokenSortRatio:
		return AlgorithmTokenSortRatio, nil
	case AlgorithmTokenSetRatio:
		return AlgorithmTokenSetRatio, nil
	case "":
		return DefaultAlgorithm, nil
	default:
		return "", fmt.Errorf("unknown similarity algorithm %q", s)
	}
}

// ScorerOptions control text preparation before scoring.
type ScorerOptions struct {
	Algorithm       Algorithm
	CaseSensitive   bool // keep case differences significant
	StripWhitespace bool // collapse runs of whitespace and trim ends
}

// Scorer computes normalized similarity scores (0-100) between two values.
type Scorer struct {
	opts ScorerOptions
}

// NewScorer creates a new Scorer. A zero Algorithm falls back to the default.
func NewScorer(opts ScorerOptions) *Scorer {
	if opts.Algorithm == "" {
		opts.Algorithm = DefaultAlgorithm
	}
	return &Scorer{opts: opts}
}

// Prepare coerces a scalar to a comparison string per the scorer options.
// nil and absent values prepare to "".
func (s *Scorer) Prepare(v any) string {
	text := tabular.FormatValue(v)
	if s.opts.StripWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}
	if !s.opts.CaseSensitive {
		text = strings.ToLower(text)
	}
	return strings.TrimSpace(text)
}

// Score returns the similarity of two values in [0,100]. Both empty after
// preparation scores 100; exactly one empty scores 0.
func (s *Scorer) Score(a, b any) int {
	sa := s.Prepare(a)
	sb := s.Prepare(b)

	if sa == "" && sb == "" {
		return 100
	}
	if sa == "" || sb == "" {
		return 0
	}

	switch s.opts.Algorithm {
	case AlgorithmPartialRatio:
		return partialRatio(sa, sb)
	case AlgorithmTokenSortRatio:
		return ratio(sortTokens(sa), sortTokens(sb))
	case AlgorithmTokenSetRatio:
		return tokenSetRatio(sa, sb)
	default:
		return ratio(sa, sb)
	}
}

// ratio is the edit similarity of the full strings:
// round(100 * (1 - distance/maxLen)).
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	d := levenshteinDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(maxLen))))
}

// partialRatio scores the best-aligned window of the longer string against the
// shorter string, detecting containment.
func partialRatio(a, b string) int {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == len(longer) {
		return ratio(shorter, longer)
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := ratio(shorter, longer[i:i+len(shorter)])
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// tokenSetRatio tokenizes both strings and scores the sorted token
// intersection against each side's remainder, neutralizing both word order
// and duplicate or extra tokens.
func tokenSetRatio(a, b string) int {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	var common, restA, restB []string
	for tok := range tokensA {
		if tokensB[tok] {
			common = append(common, tok)
		} else {
			restA = append(restA, tok)
		}
	}
	for tok := range tokensB {
		if !tokensA[tok] {
			restB = append(restB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(restA)
	sort.Strings(restB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(restA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(restB, " "))

	best := ratio(base, withA)
	if s := ratio(base, withB); s > best {
		best = s
	}
	if s := ratio(withA, withB); s > best {
		best = s
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// levenshteinDistance computes the edit distance with a two-row DP table.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}
