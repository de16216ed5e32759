// Package classify exposes standalone ASIL determination.
package classify

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jayanthmani8045/hara-tool/internal/tracing"
	"github.com/jayanthmani8045/hara-tool/pkg/asil"
)

var validate = validator.New()

// Handler handles classification endpoints
type Handler struct{}

// NewHandler creates a new classify handler
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers classification routes
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/classify", h.Classify)
}

// Request is one set of hazardous event ratings
type Request struct {
	Severity        string `json:"severity" validate:"required"`
	Controllability string `json:"controllability" validate:"required"`
	Exposure        int    `json:"exposure" validate:"min=0,max=4"`
}

// Response carries the determined level, or the diagnostic when the ratings
// do not classify
type Response struct {
	Level      string `json:"level,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Classify handles POST /classify
func (h *Handler) Classify(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "classify_handler.Classify")
	defer span.End()

	var req Request
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	exposure := req.Exposure
	if exposure == 0 {
		// omitted exposure assumes worst case
		exposure = 4
	}

	result := asil.Classify(asil.Input{
		Severity:        req.Severity,
		Controllability: req.Controllability,
		Exposure:        exposure,
	})

	if !result.Classified() {
		return c.JSON(http.StatusUnprocessableEntity, Response{Diagnostic: result.Diagnostic})
	}

	return c.JSON(http.StatusOK, Response{Level: string(result.Level)})
}
