package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"cap-dashboard/internal/errors"
	"cap-dashboard/internal/models"
	"cap-dashboard/internal/observability"
	"cap-dashboard/internal/services"
	"cap-dashboard/internal/ui/templates"
	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

// query resolves the request's criteria and runs them. Invalid filters are
// reported to the page through the error banner; ok is false when nothing
// else should be sent.
func (h *SSEHandlers) query(sse *datastar.ServerSentEventGenerator, r *http.Request) (models.AggregateResult, bool) {
	requestID := observability.GetRequestID(r.Context())

	criteria, err := criteriaFromRequest(r, h.dashboard.Options())
	if err == nil {
		var result models.AggregateResult
		if result, err = h.dashboard.Query(r.Context(), criteria); err == nil {
			h.patchBanner(sse, r, "")
			return result, true
		}
	}

	h.logger.Warn("dashboard query rejected", "error", err, "request_id", requestID)
	message := "Unable to apply filters"
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		if appErr.Details != "" {
			message += ": " + appErr.Details
		}
	}
	h.patchBanner(sse, r, message)
	return models.AggregateResult{}, false
}

func (h *SSEHandlers) patchBanner(sse *datastar.ServerSentEventGenerator, r *http.Request, message string) {
	html, err := renderComponent(r.Context(), templates.ErrorBanner(message))
	if err != nil {
		h.logger.Error("render error banner", "error", err)
		return
	}
	sse.PatchElements(html)
}

func (h *SSEHandlers) patchMetrics(sse *datastar.ServerSentEventGenerator, r *http.Request, result models.AggregateResult) bool {
	html, err := renderComponent(r.Context(), templates.MetricCards(result))
	if err != nil {
		h.logger.Error("render metric cards", "error", err)
		return false
	}
	sse.PatchElements(html)
	return true
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return false
	}
	sse.PatchSignals(jsonData)
	return true
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	result, ok := h.query(sse, r)
	if ok {
		h.patchMetrics(sse, r, result)
	}
	flush(w)
}

func (h *SSEHandlers) HandleRevenueByDate(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if result, ok := h.query(sse, r); ok {
		h.patchSignals(sse, map[string]any{"revenueByDate": result.RevenueByDate})
	}
	flush(w)
}

func (h *SSEHandlers) HandleQuantityByCategory(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if result, ok := h.query(sse, r); ok {
		h.patchSignals(sse, map[string]any{"quantityByCategory": result.QuantityByCategory})
	}
	flush(w)
}

func (h *SSEHandlers) HandleRevenueByPayment(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	if result, ok := h.query(sse, r); ok {
		h.patchSignals(sse, map[string]any{"revenueByPayment": result.RevenueByPayment})
	}
	flush(w)
}

// HandleRefreshAll sends the metric cards and all chart series in one
// response.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	result, ok := h.query(sse, r)
	if !ok {
		flush(w)
		return
	}
	if !h.patchMetrics(sse, r, result) {
		return
	}
	h.patchSignals(sse, map[string]any{
		"revenueByDate":      result.RevenueByDate,
		"quantityByCategory": result.QuantityByCategory,
		"revenueByPayment":   result.RevenueByPayment,
	})
	flush(w)
}
