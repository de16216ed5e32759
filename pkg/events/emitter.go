// Package events handles event emission for assessment run lifecycle changes
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/asil"
	"github.com/jayanthmani8045/hara-tool/pkg/kafka"
	"github.com/jayanthmani8045/hara-tool/pkg/matching"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// EventType defines the type of run event
type EventType string

const (
	EventTypeRunStarted   EventType = "run.started"
	EventTypeRunCompleted EventType = "run.completed"
	EventTypeRunFailed    EventType = "run.failed"
	EventTypeRunCancelled EventType = "run.cancelled"
)

// RunSummary is the payload of completion events
type RunSummary struct {
	SchemaVersion string              `json:"schema_version"`
	Stats         matching.AlignStats `json:"stats"`
	Distribution  map[asil.Level]int  `json:"distribution,omitempty"`
	Diagnostics   int                 `json:"diagnostics"`
	Duration      time.Duration       `json:"duration_ms"`
}

// Emitter handles run lifecycle event emission
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRunStarted emits a run started event
func (e *Emitter) EmitRunStarted(ctx context.Context, runID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunStarted")
	defer span.End()

	event := &kafka.RunEvent{
		EventType: string(EventTypeRunStarted),
		RunID:     runID,
		Status:    "running",
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.started event")
		return err
	}

	return nil
}

// EmitRunCompleted emits a run completed event with the run summary
func (e *Emitter) EmitRunCompleted(ctx context.Context, runID string, summary RunSummary) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCompleted")
	defer span.End()

	summary.SchemaVersion = SchemaVersion
	data, _ := json.Marshal(summary)

	event := &kafka.RunEvent{
		EventType: string(EventTypeRunCompleted),
		RunID:     runID,
		Status:    "completed",
		Data:      data,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.completed event")
		return err
	}

	return nil
}

// EmitRunCancelled emits a run cancelled event with the partial summary
func (e *Emitter) EmitRunCancelled(ctx context.Context, runID string, summary RunSummary) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunCancelled")
	defer span.End()

	summary.SchemaVersion = SchemaVersion
	data, _ := json.Marshal(summary)

	event := &kafka.RunEvent{
		EventType: string(EventTypeRunCancelled),
		RunID:     runID,
		Status:    "cancelled",
		Data:      data,
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.cancelled event")
		return err
	}

	return nil
}

// EmitRunFailed emits a run failed event
func (e *Emitter) EmitRunFailed(ctx context.Context, runID string, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRunFailed")
	defer span.End()

	event := &kafka.RunEvent{
		EventType: string(EventTypeRunFailed),
		RunID:     runID,
		Status:    "failed",
		Error:     runErr.Error(),
	}

	if err := e.producer.PublishRunEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit run.failed event")
		return err
	}

	return nil
}
