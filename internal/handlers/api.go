package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cap-dashboard/internal/errors"
	"cap-dashboard/internal/export"
	"cap-dashboard/internal/models"
	"cap-dashboard/internal/observability"
	"cap-dashboard/internal/services"
)

const (
	defaultRecordLimit = 100
	maxRecordLimit     = 5000
	cacheMaxAge        = "public, max-age=300"
)

var cacheHeaders = map[string]string{"Cache-Control": cacheMaxAge}

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// Summary is the metric-card view of an aggregate.
type Summary struct {
	TotalQuantity      int                   `json:"total_quantity"`
	TotalRevenue       int                   `json:"total_revenue"`
	AverageUnitValue   float64               `json:"average_unit_value"`
	DistinctCategories int                   `json:"distinct_categories"`
	RecordCount        int                   `json:"record_count"`
	Period             models.Period         `json:"period"`
	Criteria           models.FilterCriteria `json:"criteria"`
}

type RecordsPage struct {
	Records  []models.Record `json:"records"`
	Total    int             `json:"total"`
	Returned int             `json:"returned"`
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// query parses the request criteria and runs them. On failure the error
// response is already written and ok is false.
func (h *APIHandlers) query(w http.ResponseWriter, r *http.Request) (criteria models.FilterCriteria, result models.AggregateResult, ok bool) {
	criteria, err := CriteriaFromQuery(r.URL.Query(), h.dashboard.Options())
	if err != nil {
		h.writeError(w, r, err)
		return criteria, result, false
	}
	result, err = h.dashboard.Query(r.Context(), criteria)
	if err != nil {
		h.writeError(w, r, err)
		return criteria, result, false
	}
	return criteria, result, true
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), cacheHeaders)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	criteria, result, ok := h.query(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, Summary{
		TotalQuantity:      result.TotalQuantity,
		TotalRevenue:       result.TotalRevenue,
		AverageUnitValue:   result.AverageUnitValue,
		DistinctCategories: result.DistinctCategories,
		RecordCount:        result.RecordCount,
		Period:             result.Period,
		Criteria:           criteria,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleRevenueByDate(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.query(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, result.RevenueByDate, cacheHeaders)
}

func (h *APIHandlers) HandleQuantityByCategory(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.query(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, result.QuantityByCategory, cacheHeaders)
}

func (h *APIHandlers) HandleRevenueByPayment(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.query(w, r)
	if !ok {
		return
	}
	errors.WriteSuccessWithHeaders(w, result.RevenueByPayment, cacheHeaders)
}

func (h *APIHandlers) filtered(w http.ResponseWriter, r *http.Request) ([]models.Record, bool) {
	criteria, err := CriteriaFromQuery(r.URL.Query(), h.dashboard.Options())
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	records, _, err := h.dashboard.Filter(r.Context(), criteria)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return records, true
}

// HandleRecords returns the filtered rows, at most limit of them.
func (h *APIHandlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, r, errors.BadRequest("Invalid limit").WithDetails("limit must be a positive integer, got %q", raw))
			return
		}
		limit = min(parsed, maxRecordLimit)
	}

	records, ok := h.filtered(w, r)
	if !ok {
		return
	}

	page := RecordsPage{Records: records, Total: len(records)}
	if len(page.Records) > limit {
		page.Records = page.Records[:limit]
	}
	page.Returned = len(page.Records)
	errors.WriteSuccessWithHeaders(w, page, cacheHeaders)
}

func (h *APIHandlers) HandleRecordsCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cap_sales.csv"`)
	if err := export.WriteRecordsCSV(w, records); err != nil {
		h.logger.Error("write records csv", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
