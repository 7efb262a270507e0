package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"cap-dashboard/internal/config"
	"cap-dashboard/internal/models"
	"cap-dashboard/internal/observability"
)

// Dashboard holds one loaded dataset and answers filter queries against it.
// It is safe for concurrent use.
type Dashboard struct {
	mu       sync.RWMutex
	records  []models.Record
	options  models.Options
	source   string
	loadedAt time.Time

	queries atomic.Int64
	logger  *slog.Logger
}

func NewDashboard(logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{logger: logger}
}

// NewDashboardFromConfig loads the dataset described by cfg: the CSV file
// when one is configured, otherwise the synthesized variant.
func NewDashboardFromConfig(ctx context.Context, cfg config.DatasetConfig, logger *slog.Logger) (*Dashboard, error) {
	d := NewDashboard(logger)

	if cfg.CSVFile != "" {
		loader := NewLoader(d.logger, ".cache")
		if err := d.LoadFromCSV(ctx, loader, cfg.CSVFile); err != nil {
			return nil, err
		}
		return d, nil
	}

	spec, err := SpecFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	d.Generate(spec)
	return d, nil
}

// SpecFromConfig resolves the configured variant, seed and period override.
func SpecFromConfig(cfg config.DatasetConfig) (models.DatasetSpec, error) {
	spec, err := Variant(cfg.Variant)
	if err != nil {
		return models.DatasetSpec{}, err
	}
	spec.Seed = cfg.Seed

	if cfg.Start != "" {
		if spec.Start, err = models.ParseDay(cfg.Start); err != nil {
			return models.DatasetSpec{}, fmt.Errorf("dataset start: %w", err)
		}
	}
	if cfg.End != "" {
		if spec.End, err = models.ParseDay(cfg.End); err != nil {
			return models.DatasetSpec{}, fmt.Errorf("dataset end: %w", err)
		}
	}
	if spec.End.Before(spec.Start) {
		return models.DatasetSpec{}, fmt.Errorf("dataset start %s is after end %s", spec.Start, spec.End)
	}
	return spec, nil
}

// Generate replaces the dataset with records synthesized from spec.
func (d *Dashboard) Generate(spec models.DatasetSpec) int {
	start := time.Now()
	records := Synthesize(spec, NewRand(spec.Seed))
	d.SetData(records, fmt.Sprintf("synthetic:%s", spec.Name))

	d.logger.Info("dataset synthesized",
		"variant", spec.Name,
		"seed", spec.Seed,
		"start", spec.Start.String(),
		"end", spec.End.String(),
		"records", len(records),
		"duration", time.Since(start))
	return len(records)
}

func (d *Dashboard) LoadFromCSV(ctx context.Context, loader *Loader, path string) error {
	records, err := loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load csv: %w", err)
	}
	d.SetData(records, "csv:"+path)
	return nil
}

// SetData swaps in a new dataset. The slice is owned by the dashboard
// afterwards.
func (d *Dashboard) SetData(records []models.Record, source string) {
	options := deriveOptions(records)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = records
	d.options = options
	d.source = source
	d.loadedAt = time.Now()
}

// Records returns a copy of the whole dataset.
func (d *Dashboard) Records() []models.Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Record(nil), d.records...)
}

func (d *Dashboard) Options() models.Options {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return models.Options{
		Categories:     append([]string(nil), d.options.Categories...),
		PaymentMethods: append([]string(nil), d.options.PaymentMethods...),
		Start:          d.options.Start,
		End:            d.options.End,
	}
}

// DefaultCriteria selects the whole dataset: every category and payment
// method, the full period, any customer.
func (d *Dashboard) DefaultCriteria() models.FilterCriteria {
	opts := d.Options()
	return models.FilterCriteria{
		Start:          opts.Start,
		End:            opts.End,
		Categories:     opts.Categories,
		PaymentMethods: opts.PaymentMethods,
		Frequent:       models.FrequentAny,
	}
}

// Filter returns the records matching criteria and the clamped period.
func (d *Dashboard) Filter(ctx context.Context, criteria models.FilterCriteria) ([]models.Record, models.Period, error) {
	_, span := observability.StartSpan(ctx, "dashboard.filter")
	defer span.End(d.logger)

	d.mu.RLock()
	records := d.records
	d.mu.RUnlock()

	filtered, period, err := Filter(records, criteria)
	if err != nil {
		span.SetError(err)
		return nil, models.Period{}, err
	}
	span.SetTag("input", strconv.Itoa(len(records)))
	span.SetTag("matched", strconv.Itoa(len(filtered)))
	return filtered, period, nil
}

// Query validates, filters and aggregates in one step. The result's period
// is the clamped range that was applied, which can be empty when the
// request lies outside the dataset.
func (d *Dashboard) Query(ctx context.Context, criteria models.FilterCriteria) (models.AggregateResult, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.query")
	defer span.End(d.logger)
	d.queries.Add(1)

	filtered, period, err := d.Filter(ctx, criteria)
	if err != nil {
		span.SetError(err)
		return models.AggregateResult{}, err
	}

	_, aggSpan := observability.StartSpan(ctx, "dashboard.aggregate")
	result := Aggregate(filtered)
	aggSpan.SetTag("records", strconv.Itoa(result.RecordCount))
	aggSpan.End(d.logger)

	result.Period = period
	return result, nil
}

func (d *Dashboard) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]any{
		"record_count":    len(d.records),
		"query_count":     d.queries.Load(),
		"source":          d.source,
		"loaded_at":       d.loadedAt,
		"start":           d.options.Start.String(),
		"end":             d.options.End.String(),
		"categories":      len(d.options.Categories),
		"payment_methods": len(d.options.PaymentMethods),
	}
}

func deriveOptions(records []models.Record) models.Options {
	var opts models.Options
	seenCategory := make(map[string]bool)
	seenPayment := make(map[string]bool)
	for _, r := range records {
		if !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			opts.Categories = append(opts.Categories, r.Category)
		}
		if !seenPayment[r.PaymentMethod] {
			seenPayment[r.PaymentMethod] = true
			opts.PaymentMethods = append(opts.PaymentMethods, r.PaymentMethod)
		}
	}
	opts.Start, opts.End, _ = Bounds(records)
	return opts
}
