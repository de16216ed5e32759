package tableio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

func TestReadCSV(t *testing.T) {
	input := "Operating Scenario,E,Hazard\nHighway driving,3,collision\nParking maneuver,2,crush\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Operating Scenario", "E", "Hazard"}, table.Header())
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Highway driving", table.Row(0).String("Operating Scenario"))
	assert.Equal(t, "crush", table.Row(1).String("Hazard"))
}

func TestReadCSV_EmptyInputIsError(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadCSV_HeaderOnlyIsEmptyTable(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestReadCSV_ShortRowsArePadded(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "2", table.Row(0).String("b"))
	assert.Equal(t, "", table.Row(0).String("c"))
	assert.True(t, table.Row(0).Has("c"))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table := tabular.NewTable([]string{"Operating Scenario", "E", "ASIL"})
	row := tabular.NewRecord()
	row.Set("Operating Scenario", "Highway driving")
	row.Set("E", int64(3))
	row.Set("ASIL", "D")
	table.Append(row)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Len())
	assert.Equal(t, table.Header(), parsed.Header())
	assert.Equal(t, "3", parsed.Row(0).String("E"))
	assert.Equal(t, "D", parsed.Row(0).String("ASIL"))
}

func TestWriteCSV_MissingFieldsWriteEmpty(t *testing.T) {
	table := tabular.NewTable([]string{"a", "b"})
	row := tabular.NewRecord()
	row.Set("a", "1")
	table.Append(row)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.Equal(t, "a,b\n1,\n", buf.String())
}
