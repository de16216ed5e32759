// Package assessmentrun persists assessment runs and their classified rows.
package assessmentrun

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/jayanthmani8045/hara-tool/internal/database"
	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/models"
)

// Repository handles assessment run persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new assessment run repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new assessment run in pending state
func (r *Repository) Create(ctx context.Context, run *models.AssessmentRun) (*models.AssessmentRun, error) {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.Create")
	defer span.End()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now().UTC()
	run.UpdatedAt = run.CreatedAt
	if run.Status == "" {
		run.Status = models.RunStatusPending
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("assessment_runs")
	sb.Cols("id", "status", "settings", "created_at", "updated_at")
	sb.Values(run.ID, run.Status, run.Settings, run.CreatedAt, run.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID}).Error("Failed to create assessment run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create assessment run")
	}

	return run, nil
}

// Get retrieves an assessment run by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.AssessmentRun, error) {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "status", "settings", "stats", "distribution", "diagnostics", "error", "row_count", "created_at", "updated_at", "completed_at")
	sb.From("assessment_runs")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var run models.AssessmentRun
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("assessment run %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get assessment run")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get assessment run")
	}

	return &run, nil
}

// List retrieves recent assessment runs, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]models.AssessmentRun, error) {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "status", "settings", "stats", "distribution", "diagnostics", "error", "row_count", "created_at", "updated_at", "completed_at")
	sb.From("assessment_runs")
	sb.OrderBy("created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var runs []models.AssessmentRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list assessment runs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list assessment runs")
	}

	return runs, nil
}

// UpdateStatus transitions a run to the given status
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.RunStatus) error {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.UpdateStatus")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("assessment_runs")
	sb.Set(
		sb.Assign("status", status),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": id, "status": status}).Error("Failed to update run status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update run status")
	}

	return nil
}

// Fail records a run failure with the error message
func (r *Repository) Fail(ctx context.Context, id string, runErr error) error {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.Fail")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("assessment_runs")
	sb.Set(
		sb.Assign("status", models.RunStatusFailed),
		sb.Assign("error", runErr.Error()),
		sb.Assign("completed_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": id}).Error("Failed to mark run as failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark run as failed")
	}

	return nil
}

// CompleteWithRows records the run outcome and its classified rows in one
// transaction, so a failed row insert never leaves a completed run without
// its rows.
func (r *Repository) CompleteWithRows(ctx context.Context, run *models.AssessmentRun, rows []models.RunRow) error {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.CompleteWithRows")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if len(rows) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("assessment_run_rows")
		sb.Cols("run_id", "row_index", "data")
		for _, row := range rows {
			sb.Values(run.ID, row.RowIndex, row.Data)
		}
		query, args := sb.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID, "count": len(rows)}).Error("Failed to save run rows")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save run rows")
		}
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("assessment_runs")
	sb.Set(
		sb.Assign("status", run.Status),
		sb.Assign("stats", run.Stats),
		sb.Assign("distribution", run.Distribution),
		sb.Assign("diagnostics", run.Diagnostics),
		sb.Assign("row_count", run.RowCount),
		sb.Assign("completed_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(sb.Equal("id", run.ID))

	query, args := sb.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"run_id": run.ID}).Error("Failed to complete assessment run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete assessment run")
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit transaction")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"run_id": run.ID, "count": len(rows)}).Debug("Completed run with rows")
	return nil
}

// GetRows retrieves the classified rows of a run in row order
func (r *Repository) GetRows(ctx context.Context, runID string) ([]models.RunRow, error) {
	ctx, span := tracing.StartSpan(ctx, "assessmentrun.Repository.GetRows")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("run_id", "row_index", "data")
	sb.From("assessment_run_rows")
	sb.Where(sb.Equal("run_id", runID))
	sb.OrderBy("row_index ASC")

	query, args := sb.Build()
	var rows []models.RunRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get run rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get run rows")
	}

	return rows, nil
}
