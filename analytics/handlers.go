package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SummaryPath is where the summary is served.
const SummaryPath = "/api/analytics"

// Handler handles analytics HTTP requests.
type Handler struct {
	service *Service
	timeout time.Duration
}

// NewHandler creates a new analytics handler. Summary requests are bounded by
// a 10 second timeout.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
		timeout: 10 * time.Second,
	}
}

// ErrorResponse is the JSON body returned when the summary cannot be produced.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetSummary returns the aggregated analytics as JSON.
func (h *Handler) GetSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		c.Logger().Errorf("Failed to get analytics summary: %v", err)
		h.service.metrics.SummaryRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to fetch analytics",
			Details: err.Error(),
		})
	}

	h.service.metrics.SummaryRequests.WithLabelValues("ok").Inc()
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, summary)
}

// RegisterRoutes registers analytics routes with the Echo router.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET(SummaryPath, h.GetSummary)
}
