package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetPreservesInsertionOrder(t *testing.T) {
	r := NewRecord()
	r.Set("b", 1)
	r.Set("a", 2)
	r.Set("c", 3)
	r.Set("a", 4) // overwrite must not reorder

	assert.Equal(t, []string{"b", "a", "c"}, r.Fields())

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestRecord_Int(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int
		ok       bool
	}{
		{name: "int64", value: int64(3), expected: 3, ok: true},
		{name: "whole float", value: 2.0, expected: 2, ok: true},
		{name: "fractional float", value: 2.5, ok: false},
		{name: "numeric string", value: " 4 ", expected: 4, ok: true},
		{name: "non-numeric string", value: "N/A", ok: false},
		{name: "nil", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecord()
			r.Set("v", tt.value)
			got, ok := r.Int("v")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestRecord_IsEmpty(t *testing.T) {
	r := NewRecord()
	r.Set("blank", "   ")
	r.Set("nil", nil)
	r.Set("value", "x")

	assert.True(t, r.IsEmpty("blank"))
	assert.True(t, r.IsEmpty("nil"))
	assert.True(t, r.IsEmpty("absent"))
	assert.False(t, r.IsEmpty("value"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "text", FormatValue("text"))
	assert.Equal(t, "3", FormatValue(int64(3)))
	assert.Equal(t, "3", FormatValue(3.0))
	assert.Equal(t, "3.5", FormatValue(3.5))
	assert.Equal(t, "true", FormatValue(true))
}

func TestResolveColumns_Aliases(t *testing.T) {
	table := NewTable([]string{"Operating Scenario", "S", "E", "C", "Hazard"})
	cols := ResolveColumns(table)

	os, err := cols.Require(ColOperatingScenario)
	require.NoError(t, err)
	assert.Equal(t, "Operating Scenario", os)

	sev, ok := cols.Column(ColSeverity)
	require.True(t, ok)
	assert.Equal(t, "S", sev)

	exp, ok := cols.Column(ColExposure)
	require.True(t, ok)
	assert.Equal(t, "E", exp)

	assert.Empty(t, cols.Diagnostics())
}

func TestResolveColumns_AmbiguityKeepsFirstInHeaderOrder(t *testing.T) {
	table := NewTable([]string{"Severity", "S"})
	cols := ResolveColumns(table)

	sev, ok := cols.Column(ColSeverity)
	require.True(t, ok)
	assert.Equal(t, "Severity", sev)
	require.Len(t, cols.Diagnostics(), 1)
	assert.Contains(t, cols.Diagnostics()[0], "Severity")
}

func TestResolveColumns_DiagnosticsOrderIsDeterministic(t *testing.T) {
	table := NewTable([]string{"Severity", "S", "Controllability", "C"})

	first := ResolveColumns(table).Diagnostics()
	require.Len(t, first, 2)
	assert.Contains(t, first[0], ColSeverity)
	assert.Contains(t, first[1], ColControllability)

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ResolveColumns(table).Diagnostics())
	}
}

func TestResolveColumns_MissingColumnIsConfigurationError(t *testing.T) {
	table := NewTable([]string{"Hazard"})
	cols := ResolveColumns(table)

	_, err := cols.Require(ColOperatingScenario)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), ColOperatingScenario)
}

func TestHazardColumns(t *testing.T) {
	table := NewTable([]string{"Operating Scenario", "Hazard 1", "Hazard 2", "E", "Notes"})
	cols := ResolveColumns(table)

	assert.Equal(t, []string{"Hazard 1", "Hazard 2"}, HazardColumns(table, cols))
}

func TestTable_HeaderIsACopy(t *testing.T) {
	table := NewTable([]string{"a", "b"})
	h := table.Header()
	h[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, table.Header())
}
