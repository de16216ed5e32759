package tabular

import (
	"fmt"
	"strings"
)

// Canonical column names recognized by the pipeline. Input sheets use a wide
// variety of spellings; resolution happens once per table via ResolveColumns.
const (
	ColOperatingScenario        = "operating_scenario"
	ColHazard                   = "hazard"
	ColHazardousEvent           = "hazardous_event"
	ColDetails                  = "details"
	ColPeopleAtRisk             = "people_at_risk"
	ColDeltaV                   = "delta_v"
	ColSeverity                 = "severity"
	ColExposure                 = "exposure"
	ColControllability          = "controllability"
	ColSeverityRationale        = "severity_rationale"
	ColControllabilityRationale = "controllability_rationale"
)

// aliases maps each canonical column to its accepted spellings, compared
// case-insensitively after trimming.
var aliases = map[string][]string{
	ColOperatingScenario:        {"operating scenario", "os", "scenario", "operating_scenario", "operating scenarios"},
	ColHazard:                   {"hazard", "hazards"},
	ColHazardousEvent:           {"hazardous event", "he", "hazardous_event"},
	ColDetails:                  {"details of hazardous event", "details", "he_details"},
	ColPeopleAtRisk:             {"people at risk", "people", "persons_at_risk"},
	ColDeltaV:                   {"δv", "deltav", "Δv", "delta_v"},
	ColSeverity:                 {"s", "severity", "severity rating", "severity level"},
	ColExposure:                 {"e", "exposure", "exposure rating", "exposure level"},
	ColControllability:          {"c", "controllability", "controllability rating", "controllability level"},
	ColSeverityRationale:        {"severity rational", "severity_rationale", "s_rationale", "severity rationale"},
	ColControllabilityRationale: {"controllability rational", "controllability_rationale", "c_rationale", "controllability rationale"},
}

// canonicalOrder fixes the resolution order so diagnostics are deterministic.
var canonicalOrder = []string{
	ColOperatingScenario,
	ColHazard,
	ColHazardousEvent,
	ColDetails,
	ColPeopleAtRisk,
	ColDeltaV,
	ColSeverity,
	ColExposure,
	ColControllability,
	ColSeverityRationale,
	ColControllabilityRationale,
}

// ColumnSet holds the resolved header name for each canonical column of one
// table, plus diagnostics recorded during resolution (ambiguous aliases).
type ColumnSet struct {
	resolved    map[string]string
	diagnostics []string
}

// ResolveColumns matches the table header against the alias sets once. If
// multiple header columns satisfy the same alias set, the first in header
// order wins and a diagnostic is recorded; that is never an error.
func ResolveColumns(t *Table) *ColumnSet {
	cs := &ColumnSet{resolved: make(map[string]string)}

	for _, canonical := range canonicalOrder {
		names := aliases[canonical]
		for _, col := range t.Header() {
			if !matchesAlias(col, names) {
				continue
			}
			if existing, ok := cs.resolved[canonical]; ok {
				cs.diagnostics = append(cs.diagnostics, fmt.Sprintf(
					"column %q also matches %s; keeping first match %q", col, canonical, existing))
				continue
			}
			cs.resolved[canonical] = col
		}
	}

	return cs
}

func matchesAlias(header string, names []string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, n := range names {
		if h == strings.ToLower(n) {
			return true
		}
	}
	return false
}

// Column returns the header name resolved for a canonical column.
func (c *ColumnSet) Column(canonical string) (string, bool) {
	col, ok := c.resolved[canonical]
	return col, ok
}

// Require returns the resolved header name or a ConfigurationError when the
// canonical column is absent from the table schema.
func (c *ColumnSet) Require(canonical string) (string, error) {
	col, ok := c.resolved[canonical]
	if !ok {
		return "", &ConfigurationError{Column: canonical}
	}
	return col, nil
}

// Diagnostics returns resolution diagnostics in the order they were recorded.
func (c *ColumnSet) Diagnostics() []string {
	return c.diagnostics
}

// HazardColumns returns every header column whose name contains "hazard",
// excluding the resolved operating scenario column. Scenario sheets commonly
// spread hazards across several columns.
func HazardColumns(t *Table, cs *ColumnSet) []string {
	osCol, _ := cs.Column(ColOperatingScenario)
	var out []string
	for _, col := range t.Header() {
		if col == osCol {
			continue
		}
		if strings.Contains(strings.ToLower(col), "hazard") {
			out = append(out, col)
		}
	}
	return out
}
