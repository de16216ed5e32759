// Package run exposes the assessment run API.
package run

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/jayanthmani8045/hara-tool/config"
	"github.com/jayanthmani8045/hara-tool/internal/appcontext"
	"github.com/jayanthmani8045/hara-tool/internal/repositories/assessmentrun"
	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/events"
	"github.com/jayanthmani8045/hara-tool/pkg/matching"
	"github.com/jayanthmani8045/hara-tool/pkg/models"
	"github.com/jayanthmani8045/hara-tool/pkg/processor"
	"github.com/jayanthmani8045/hara-tool/pkg/tableio"
	"github.com/jayanthmani8045/hara-tool/pkg/tabular"
)

// Handler handles assessment run endpoints
type Handler struct {
	cfg     *config.Config
	repo    *assessmentrun.Repository
	emitter *events.Emitter
	logger  ectologger.Logger
}

// NewHandler creates a new run handler. The emitter may be nil when event
// emission is disabled.
func NewHandler(cfg *config.Config, repo *assessmentrun.Repository, emitter *events.Emitter, logger ectologger.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		repo:    repo,
		emitter: emitter,
		logger:  logger,
	}
}

// RegisterRoutes registers run routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	runs := g.Group("/runs")
	runs.POST("", h.Create)
	runs.GET("", h.List)
	runs.GET("/:id", h.Get)
	runs.GET("/:id/rows", h.GetRows)
}

// RunResponse is the API shape of one run with its outcome
type RunResponse struct {
	Run         models.AssessmentRun `json:"run"`
	Stats       *matching.AlignStats `json:"stats,omitempty"`
	Diagnostics []string             `json:"diagnostics,omitempty"`
	Cancelled   bool                 `json:"cancelled,omitempty"`
}

// Create handles POST /runs: uploads a scenario and a risk assessment CSV,
// runs the pipeline synchronously and persists the classified rows.
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Create")
	defer span.End()

	scenarios, err := h.readTable(c, "scenarios")
	if err != nil {
		return err
	}
	risks, err := h.readTable(c, "risks")
	if err != nil {
		return err
	}

	settings, err := h.requestSettings(c)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	run, err := h.repo.Create(ctx, &models.AssessmentRun{Settings: settingsJSON})
	if err != nil {
		return err
	}

	ctx = appcontext.SetRunID(ctx, run.ID)
	c.SetRequest(c.Request().WithContext(ctx))

	if err := h.repo.UpdateStatus(ctx, run.ID, models.RunStatusRunning); err != nil {
		return err
	}

	if h.emitter != nil {
		if err := h.emitter.EmitRunStarted(ctx, run.ID); err != nil {
			h.logger.WithContext(ctx).WithError(err).Warn("Run started event not emitted")
		}
	}

	proc := processor.New(h.logger, settings)
	result, procErr := proc.Process(ctx, scenarios, risks, nil)
	switch {
	case procErr == nil:
		run.Status = models.RunStatusCompleted
	case processor.IsCancelled(procErr):
		run.Status = models.RunStatusCancelled
	default:
		_ = h.repo.Fail(ctx, run.ID, procErr)
		if h.emitter != nil {
			_ = h.emitter.EmitRunFailed(ctx, run.ID, procErr)
		}
		if tabular.IsConfigurationError(procErr) {
			return httperror.NewHTTPError(http.StatusBadRequest, procErr.Error())
		}
		return procErr
	}

	if err := h.persistResult(c, run, result); err != nil {
		return err
	}

	h.emitOutcome(ctx, run, result)

	return c.JSON(http.StatusCreated, RunResponse{
		Run:         *run,
		Stats:       &result.Stats,
		Diagnostics: result.Diagnostics,
		Cancelled:   result.Cancelled,
	})
}

// Get handles GET /runs/:id
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.Get")
	defer span.End()

	run, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RunResponse{Run: *run})
}

// List handles GET /runs
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.List")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	runs, err := h.repo.List(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"items": runs, "count": len(runs)})
}

// GetRows handles GET /runs/:id/rows
func (h *Handler) GetRows(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.GetRows")
	defer span.End()

	id := c.Param("id")
	if _, err := h.repo.Get(ctx, id); err != nil {
		return err
	}

	rows, err := h.repo.GetRows(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

func (h *Handler) readTable(c echo.Context, field string) (*tabular.Table, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, field+" file is required")
	}
	return parseUpload(file, field)
}

func parseUpload(file *multipart.FileHeader, field string) (*tabular.Table, error) {
	src, err := file.Open()
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "failed to open "+field+" file")
	}
	defer src.Close()

	table, err := tableio.ReadCSV(src)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, field+": "+err.Error())
	}
	return table, nil
}

// requestSettings applies per-request overrides on top of the configured
// matching defaults.
func (h *Handler) requestSettings(c echo.Context) (matching.Settings, error) {
	settings, err := h.cfg.EngineSettings()
	if err != nil {
		return matching.Settings{}, err
	}

	if v := c.FormValue("fuzzy_enabled"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.FuzzyEnabled = enabled
	}
	if v := c.FormValue("threshold"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.Threshold = threshold
	}
	if v := c.FormValue("algorithm"); v != "" {
		algorithm, err := matching.ParseAlgorithm(v)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.Algorithm = algorithm
	}
	if v := c.FormValue("case_sensitive"); v != "" {
		sensitive, err := strconv.ParseBool(v)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.CaseSensitive = sensitive
	}
	if v := c.FormValue("strip_whitespace"); v != "" {
		strip, err := strconv.ParseBool(v)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.StripWhitespace = strip
	}
	if v := c.FormValue("os_weight"); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.PrimaryWeight = weight
	}
	if v := c.FormValue("hazard_weight"); v != "" {
		weight, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return matching.Settings{}, err
		}
		settings.SecondaryWeight = weight
	}

	return settings, nil
}

func (h *Handler) persistResult(c echo.Context, run *models.AssessmentRun, result *processor.Result) error {
	ctx := c.Request().Context()

	rows := make([]models.RunRow, 0, result.Table.Len())
	for i, row := range result.Table.Rows() {
		data := make(map[string]any, len(row.Fields()))
		for _, field := range row.Fields() {
			v, _ := row.Get(field)
			data[field] = v
		}
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		rows = append(rows, models.RunRow{RunID: run.ID, RowIndex: i, Data: encoded})
	}
	run.Stats, _ = json.Marshal(result.Stats)
	run.Distribution, _ = json.Marshal(result.Distribution)
	run.Diagnostics, _ = json.Marshal(result.Diagnostics)
	run.RowCount = result.Table.Len()
	return h.repo.CompleteWithRows(ctx, run, rows)
}

func (h *Handler) emitOutcome(ctx context.Context, run *models.AssessmentRun, result *processor.Result) {
	if h.emitter == nil {
		return
	}

	summary := events.RunSummary{
		Stats:        result.Stats,
		Distribution: result.Distribution,
		Diagnostics:  len(result.Diagnostics),
	}

	var err error
	if result.Cancelled {
		err = h.emitter.EmitRunCancelled(ctx, run.ID, summary)
	} else {
		err = h.emitter.EmitRunCompleted(ctx, run.ID, summary)
	}
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("Run outcome event not emitted")
	}
}
