package models

import (
	"encoding/json"
	"time"
)

// RunStatus is the lifecycle state of an assessment run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// AssessmentRun is one execution of the pipeline over an uploaded
// scenario/risk table pair
type AssessmentRun struct {
	ID           string          `db:"id" json:"id"`
	Status       RunStatus       `db:"status" json:"status"`
	Settings     json.RawMessage `db:"settings" json:"settings,omitempty"`
	Stats        json.RawMessage `db:"stats" json:"stats,omitempty"`
	Distribution json.RawMessage `db:"distribution" json:"distribution,omitempty"`
	Diagnostics  json.RawMessage `db:"diagnostics" json:"diagnostics,omitempty"`
	Error        string          `db:"error" json:"error,omitempty"`
	RowCount     int             `db:"row_count" json:"row_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// RunRow is one classified output row of a run, stored as JSON keyed by the
// output column names
type RunRow struct {
	RunID    string          `db:"run_id" json:"run_id"`
	RowIndex int             `db:"row_index" json:"row_index"`
	Data     json.RawMessage `db:"data" json:"data"`
}
