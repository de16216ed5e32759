package asil

import (
	"context"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestClassify_DecisionTable(t *testing.T) {
	tests := []struct {
		s, c     string
		e        int
		expected Level
	}{
		{"1", "0", 4, QM},
		{"1", "1", 1, QM},
		{"1", "1", 4, QM},
		{"1", "2", 4, LevelA},
		{"1", "3", 3, LevelA},
		{"1", "3", 4, LevelB},
		{"2", "0", 3, QM},
		{"2", "0", 4, LevelA},
		{"2", "1", 4, LevelA},
		{"2", "2", 3, LevelA},
		{"2", "3", 2, LevelA},
		{"2", "3", 4, LevelC},
		{"3", "0", 1, QM},
		{"3", "0", 3, LevelA},
		{"3", "0", 4, LevelB},
		{"3", "1", 3, LevelA},
		{"3", "2", 1, LevelA},
		{"3", "2", 2, LevelB},
		{"3", "2", 3, LevelB},
		{"3", "2", 4, LevelC},
		{"3", "3", 1, LevelB},
		{"3", "3", 2, LevelC},
		{"3", "3", 3, LevelC},
		{"3", "3", 4, LevelD},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("S%s_C%s_E%d", tt.s, tt.c, tt.e), func(t *testing.T) {
			result := Classify(Input{Severity: tt.s, Controllability: tt.c, Exposure: tt.e})
			require.True(t, result.Classified(), result.Diagnostic)
			assert.Equal(t, tt.expected, result.Level)
		})
	}
}

func TestClassify_ZeroSeverityIsQM(t *testing.T) {
	for e := 1; e <= 4; e++ {
		result := Classify(Input{Severity: "0", Controllability: "3", Exposure: e})
		require.True(t, result.Classified())
		assert.Equal(t, QM, result.Level)
	}
}

func TestClassify_ZeroControllabilityIsNotUniformlyQM(t *testing.T) {
	result := Classify(Input{Severity: "3", Controllability: "0", Exposure: 4})
	require.True(t, result.Classified())
	assert.Equal(t, LevelB, result.Level)

	result = Classify(Input{Severity: "2", Controllability: "0", Exposure: 4})
	require.True(t, result.Classified())
	assert.Equal(t, LevelA, result.Level)
}

func TestClassify_ExposureIsClamped(t *testing.T) {
	low := Classify(Input{Severity: "3", Controllability: "3", Exposure: -2})
	require.True(t, low.Classified())
	assert.Equal(t, LevelB, low.Level) // treated as E1

	high := Classify(Input{Severity: "3", Controllability: "3", Exposure: 9})
	require.True(t, high.Classified())
	assert.Equal(t, LevelD, high.Level) // treated as E4
}

func TestClassify_Diagnostics(t *testing.T) {
	tests := []struct {
		name     string
		s, c     string
		contains string
	}{
		{name: "missing severity", s: "", c: "2", contains: "severity rating is missing"},
		{name: "missing controllability", s: "2", c: "", contains: "controllability rating is missing"},
		{name: "non-numeric controllability", s: "2", c: "N/A", contains: "not numeric"},
		{name: "severity out of range", s: "5", c: "2", contains: "outside 0..3"},
		{name: "negative controllability", s: "2", c: "-1", contains: "outside 0..3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(Input{Severity: tt.s, Controllability: tt.c, Exposure: 4})
			require.False(t, result.Classified())
			assert.Contains(t, result.Diagnostic, tt.contains)
			assert.Equal(t, result.Diagnostic, Diagnose(tt.s, tt.c))
		})
	}
}

func TestDiagnose_ValidRatings(t *testing.T) {
	assert.Empty(t, Diagnose("2", "3"))
	assert.Empty(t, Diagnose(" 1 ", "0"))
}

func TestClassifyTable(t *testing.T) {
	table := tabular.NewTable([]string{"Operating Scenario", "S", "C", "E"})
	for _, values := range [][]any{
		{"Highway driving", "3", "3", "4"},
		{"Parking maneuver", "1", "1", "1"},
		{"Urban intersection", "N/A", "2", "3"},
		{"Overtaking", "2", "3", "2"},
	} {
		r := tabular.NewRecord()
		for i, col := range table.Header() {
			r.Set(col, values[i])
		}
		table.Append(r)
	}

	c := NewClassifier(testLogger())
	result := c.ClassifyTable(context.Background(), table)

	require.Equal(t, 4, result.Table.Len())
	assert.Equal(t, append(table.Header(), ColASIL), result.Table.Header())

	assert.Equal(t, "D", result.Table.Row(0).String(ColASIL))
	assert.Equal(t, "QM", result.Table.Row(1).String(ColASIL))
	assert.Equal(t, "", result.Table.Row(2).String(ColASIL))
	assert.Equal(t, "A", result.Table.Row(3).String(ColASIL))

	assert.Equal(t, map[Level]int{LevelD: 1, QM: 1, LevelA: 1}, result.Distribution)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "row 2")

	// input rows must not gain the ASIL column
	assert.False(t, table.Row(0).Has(ColASIL))
}

func TestClassifyTable_MissingExposureAssumesWorstCase(t *testing.T) {
	table := tabular.NewTable([]string{"S", "C"})
	r := tabular.NewRecord()
	r.Set("S", "3")
	r.Set("C", "3")
	table.Append(r)

	c := NewClassifier(testLogger())
	result := c.ClassifyTable(context.Background(), table)
	assert.Equal(t, "D", result.Table.Row(0).String(ColASIL))
}
