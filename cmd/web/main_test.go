package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"cap-dashboard/internal/config"
	"cap-dashboard/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestDashboard(t *testing.T) *services.Dashboard {
	t.Helper()
	spec, err := services.Variant(services.VariantCaps)
	if err != nil {
		t.Fatal(err)
	}
	dashboard := services.NewDashboard(testLogger())
	dashboard.Generate(spec)
	return dashboard
}

func newTestHandler(t *testing.T) http.Handler {
	cfg := config.Default()
	cfg.Security.EnableRateLimit = false
	return newHandler(cfg, newTestDashboard(t), testLogger())
}

func TestServer_Routes(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/api/summary", http.StatusOK, "application/json"},
		{"/api/revenue-by-date", http.StatusOK, "application/json"},
		{"/api/quantity-by-category?category=Snapback", http.StatusOK, "application/json"},
		{"/api/revenue-by-payment?frequent=yes", http.StatusOK, "application/json"},
		{"/api/summary?start=2025-02-01&end=2025-01-01", http.StatusBadRequest, "application/json"},
		{"/health", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			ct := w.Header().Get("Content-Type")
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}

			if w.Header().Get("X-Request-ID") == "" {
				t.Error("middleware chain should set X-Request-ID")
			}

			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

// The synthesized caps dataset has one record per day and category, so the
// unfiltered summary counts every pair.
func TestServer_SummaryCoversDataset(t *testing.T) {
	handler := newTestHandler(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/summary", nil))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			RecordCount        int `json:"record_count"`
			DistinctCategories int `json:"distinct_categories"`
			Period             struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"period"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}

	spec, _ := services.Variant(services.VariantCaps)
	days := int(spec.End.Sub(spec.Start.Time).Hours()/24) + 1
	want := days * len(spec.Categories)

	if !response.Success {
		t.Error("expected success=true in response")
	}
	if response.Data.RecordCount != want {
		t.Errorf("record_count = %d, want %d", response.Data.RecordCount, want)
	}
	if response.Data.DistinctCategories != len(spec.Categories) {
		t.Errorf("distinct_categories = %d, want %d", response.Data.DistinctCategories, len(spec.Categories))
	}
	if response.Data.Period.Start != spec.Start.String() || response.Data.Period.End != spec.End.String() {
		t.Errorf("period = %+v", response.Data.Period)
	}
}

func TestServer_SSERoutes(t *testing.T) {
	handler := newTestHandler(t)

	sseRoutes := []string{
		"/sse/metrics",
		"/sse/revenue-by-date",
		"/sse/quantity-by-category",
		"/sse/revenue-by-payment",
		"/sse/refresh-all",
	}

	for _, route := range sseRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", route, nil)

			handler.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("content-type = %q, should contain 'text/event-stream'", ct)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
				t.Errorf("cache-control = %q, want 'no-cache'", cc)
			}
		})
	}
}

func TestServer_ErrorHandling(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/summary", http.StatusMethodNotAllowed},
		{"PUT", "/", http.StatusMethodNotAllowed},
		{"DELETE", "/health", http.StatusMethodNotAllowed},
		{"PATCH", "/sse/refresh-all", http.StatusMethodNotAllowed},
		{"GET", "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, tt.path, nil)

			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestDashboardPage(t *testing.T) {
	dashboard := newTestDashboard(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	handleDashboard(dashboard, testLogger())(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	expected := []string{
		pageTitle,
		`id="metrics"`,
		`id="revenue-by-date"`,
		`id="quantity-by-category"`,
		`id="revenue-by-payment"`,
		`data-init="@get('/sse/refresh-all')"`,
	}
	expected = append(expected, dashboard.Options().Categories...)

	for _, component := range expected {
		if !strings.Contains(body, component) {
			t.Errorf("dashboard should contain %q", component)
		}
	}
}
