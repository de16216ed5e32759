// Package tabular provides the in-memory table model shared by every pipeline
// stage. Tables are read once from an ingestion collaborator and transformed
// purely; no stage mutates a table it was given.
package tabular

import (
	"strconv"
	"strings"
)

// Record is an ordered mapping from field name to a scalar value
// (string, int64, float64, or nil for absent cells).
type Record struct {
	fields []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{
		values: make(map[string]any),
	}
}

// Set stores a value under the given field, preserving insertion order.
// Setting an existing field overwrites the value without reordering.
func (r *Record) Set(field string, value any) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the raw value for a field and whether the field exists.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Has reports whether the field exists, even if its value is nil.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// String returns the field value formatted as a string. Absent fields and nil
// values format as the empty string; numbers use locale-independent decimal
// formatting.
func (r *Record) String(field string) string {
	v, ok := r.values[field]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// IsEmpty reports whether the field is absent, nil, or formats to only
// whitespace.
func (r *Record) IsEmpty(field string) bool {
	return strings.TrimSpace(r.String(field)) == ""
}

// Int parses the field as an integer. Float values are accepted when they are
// whole numbers (spreadsheet ingestion often widens integer cells to floats).
func (r *Record) Int(field string) (int, bool) {
	v, ok := r.values[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
		return 0, false
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, f := range r.fields {
		out.Set(f, r.values[f])
	}
	return out
}

// FormatValue converts a scalar value to its string form. nil formats as "".
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
