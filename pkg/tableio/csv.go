// Package tableio reads and writes tables as CSV.
package tableio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// ReadCSV parses CSV input into a table. The first record is the header; a
// file without one is an error, never an empty table.
func ReadCSV(r io.Reader) (*tabular.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	table := tabular.NewTable(header)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		row := tabular.NewRecord()
		for i, field := range header {
			if i < len(record) {
				row.Set(field, record[i])
			} else {
				row.Set(field, "")
			}
		}
		table.Append(row)
	}
	return table, nil
}

// ReadFile reads a CSV file into a table.
func ReadFile(path string) (*tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// WriteCSV writes the table as CSV, header first. Values are formatted the
// same way the engine renders them for matching.
func WriteCSV(w io.Writer, t *tabular.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	record := make([]string, len(t.Header()))
	for _, row := range t.Rows() {
		for i, field := range t.Header() {
			record[i] = row.String(field)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes the table to a CSV file, replacing any existing content.
func WriteFile(path string, t *tabular.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
