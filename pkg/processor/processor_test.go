package processor

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthmani8045/hara-tool/pkg/asil"
	"github.com/jayanthmani8045/hara-tool/pkg/matching"
	"github.com/jayanthmani8045/hara-tool/pkg/scenario"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func buildTable(header []string, rows ...[]any) *tabular.Table {
	t := tabular.NewTable(header)
	for _, values := range rows {
		r := tabular.NewRecord()
		for i, col := range header {
			r.Set(col, values[i])
		}
		t.Append(r)
	}
	return t
}

func scenarioTable() *tabular.Table {
	return buildTable([]string{"Operating Scenario", "E", "Hazard"},
		[]any{"Highway driving at speed", "3", "rear collision"},
		[]any{"Parking maneuver", "", "crush"},
		[]any{"", "2", "ignored"},
	)
}

func riskTable() *tabular.Table {
	return buildTable([]string{"Operating Scenario", "Hazard", "S", "C"},
		[]any{"Highway driving at speed", "rear collision", "3", "3"},
		[]any{"Parking maneuver", "crush", "1", "1"},
	)
}

func TestProcess_EndToEnd(t *testing.T) {
	p := New(testLogger(), matching.DefaultSettings())

	result, err := p.Process(context.Background(), scenarioTable(), riskTable(), nil)
	require.NoError(t, err)
	assert.False(t, result.Cancelled)

	// the empty-scenario row was dropped during normalization
	require.Equal(t, 2, result.Table.Len())
	assert.Equal(t, 2, result.Stats.ExactMatches)

	first := result.Table.Row(0)
	assert.Equal(t, "Highway driving at speed", first.String(scenario.ColOperatingScenario))
	assert.Equal(t, "C", first.String(asil.ColASIL)) // S3 C3 E3

	second := result.Table.Row(1)
	assert.Equal(t, "QM", second.String(asil.ColASIL))

	// skipped-row diagnostic surfaced in the aggregate
	assert.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, map[asil.Level]int{asil.LevelC: 1, asil.QM: 1}, result.Distribution)
}

func TestProcess_MissingScenarioColumnAborts(t *testing.T) {
	p := New(testLogger(), matching.DefaultSettings())

	bad := buildTable([]string{"Notes"}, []any{"x"})
	_, err := p.Process(context.Background(), bad, riskTable(), nil)
	require.Error(t, err)
	assert.True(t, tabular.IsConfigurationError(err))
}

func TestProcess_CancellationYieldsPartialResult(t *testing.T) {
	p := New(testLogger(), matching.DefaultSettings())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Process(ctx, scenarioTable(), riskTable(), nil)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 0, result.Stats.RowsProcessed)
}

func TestProcess_DoesNotMutateInputs(t *testing.T) {
	p := New(testLogger(), matching.DefaultSettings())

	scenarios := scenarioTable()
	risks := riskTable()
	scenarioHeader := scenarios.Header()
	riskHeader := risks.Header()

	_, err := p.Process(context.Background(), scenarios, risks, nil)
	require.NoError(t, err)

	assert.Equal(t, scenarioHeader, scenarios.Header())
	assert.Equal(t, riskHeader, risks.Header())
	assert.False(t, risks.Row(0).Has(asil.ColASIL))
	assert.False(t, scenarios.Row(0).Has(matching.ColMatched))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Row: 3, Reason: "exposure out of range"}
	assert.Equal(t, "row 3: exposure out of range", err.Error())
}
