// Package templates holds the browser dashboard's templ components.
package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"cap-dashboard/internal/format"
	"cap-dashboard/internal/models"
	"github.com/a-h/templ"
)

const (
	datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	chartScript    = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"
)

// PageView is everything the first render of the page needs.
type PageView struct {
	Title    string
	Options  models.Options
	Criteria models.FilterCriteria
	Result   models.AggregateResult
}

// pageWriter keeps the first write error so markup can be emitted without
// checking every call.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) rawf(layout string, args ...any) {
	p.raw(fmt.Sprintf(layout, args...))
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

// Dashboard renders the full page: sidebar filters, metric cards and the
// three charts. Filters live in Datastar signals; every change asks
// /sse/refresh-all for new metrics and chart data.
func Dashboard(view PageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := initialSignals(view)
		if err != nil {
			return err
		}

		p := &pageWriter{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(view.Title)
		p.raw(`</title>`)
		p.rawf(`<script type="module" src="%s"></script>`, datastarScript)
		p.rawf(`<script src="%s"></script>`, chartScript)
		p.raw(`<style>` + pageStyle + `</style>`)
		p.raw(`</head><body data-signals="`)
		p.text(signals)
		p.raw(`" data-init="@get('/sse/refresh-all')">`)

		p.raw(`<aside class="sidebar"><h2>Filters</h2><form id="filters" data-on:change="@get('/sse/refresh-all')">`)
		writePeriod(p, view)
		writeChecklist(p, "Categories", "categories", view.Options.Categories, view.Criteria.Categories)
		writeChecklist(p, "Payment method", "payments", view.Options.PaymentMethods, view.Criteria.PaymentMethods)
		writeFrequent(p, view.Criteria.Frequent)
		p.raw(`</form></aside>`)

		p.raw(`<main><h1>`)
		p.text(view.Title)
		p.raw(`</h1><div id="filter-error"></div>`)
		if p.err == nil {
			p.err = MetricCards(view.Result).Render(ctx, w)
		}

		writeChart(p, "revenue-by-date", "Revenue over time", "line", "revenueByDate", "date", "revenue")
		writeChart(p, "quantity-by-category", "Quantity by category", "bar", "quantityByCategory", "category", "quantity")
		writeChart(p, "revenue-by-payment", "Revenue by payment method", "pie", "revenueByPayment", "payment_method", "revenue")
		p.raw(`</main>`)

		p.raw(`<script>` + chartRuntime + `</script>`)
		p.raw(`</body></html>`)
		return p.err
	})
}

// MetricCards renders the four headline numbers. SSE responses patch this
// element by its id.
func MetricCards(result models.AggregateResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<section id="metrics" class="metrics">`)
		card := func(label, value string) {
			p.raw(`<div class="metric"><span class="label">`)
			p.text(label)
			p.raw(`</span><span class="value">`)
			p.text(value)
			p.raw(`</span></div>`)
		}
		card("Total quantity", format.Integer(result.TotalQuantity))
		card("Revenue", format.MoneyInt(result.TotalRevenue))
		card("Average unit value", format.Money(result.AverageUnitValue))
		card("Categories", format.Integer(result.DistinctCategories))
		p.raw(`<p class="period">`)
		if result.RecordCount == 0 {
			p.raw(`No records match the selected filters.`)
		} else {
			p.text(fmt.Sprintf("%s records from %s to %s", format.Integer(result.RecordCount), result.Period.Start, result.Period.End))
		}
		p.raw(`</p></section>`)
		return p.err
	})
}

// ErrorBanner replaces the filter error slot; an empty message clears it.
func ErrorBanner(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		if message == "" {
			p.raw(`<div id="filter-error"></div>`)
			return p.err
		}
		p.raw(`<div id="filter-error" class="error" role="alert">`)
		p.text(message)
		p.raw(`</div>`)
		return p.err
	})
}

func initialSignals(view PageView) (string, error) {
	frequent, _ := models.ParseFrequentFilter(string(view.Criteria.Frequent))
	signals := map[string]any{
		"start":              view.Criteria.Start.String(),
		"end":                view.Criteria.End.String(),
		"categories":         nonNil(view.Criteria.Categories),
		"payments":           nonNil(view.Criteria.PaymentMethods),
		"frequent":           string(frequent),
		"revenueByDate":      view.Result.RevenueByDate,
		"quantityByCategory": view.Result.QuantityByCategory,
		"revenueByPayment":   view.Result.RevenueByPayment,
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return "", fmt.Errorf("marshal signals: %w", err)
	}
	return string(data), nil
}

func writePeriod(p *pageWriter, view PageView) {
	first, last := view.Options.Start.String(), view.Options.End.String()
	p.raw(`<fieldset><legend>Period</legend>`)
	for _, field := range []string{"start", "end"} {
		p.rawf(`<label>%s <input type="date" name="%s" data-bind:%s min="`, field, field, field)
		p.text(first)
		p.raw(`" max="`)
		p.text(last)
		p.raw(`"></label>`)
	}
	p.raw(`</fieldset>`)
}

func writeChecklist(p *pageWriter, legend, signal string, options, selected []string) {
	p.raw(`<fieldset><legend>`)
	p.text(legend)
	p.raw(`</legend>`)
	for _, option := range options {
		p.rawf(`<label><input type="checkbox" data-bind:%s value="`, signal)
		p.text(option)
		p.raw(`"`)
		if slices.Contains(selected, option) {
			p.raw(` checked`)
		}
		p.raw(`> `)
		p.text(option)
		p.raw(`</label>`)
	}
	p.raw(`</fieldset>`)
}

func writeFrequent(p *pageWriter, current models.FrequentFilter) {
	current, _ = models.ParseFrequentFilter(string(current))
	p.raw(`<fieldset><legend>Frequent customer?</legend><select data-bind:frequent>`)
	for _, opt := range []struct {
		value models.FrequentFilter
		label string
	}{
		{models.FrequentAny, "All"},
		{models.FrequentYes, "Yes"},
		{models.FrequentNo, "No"},
	} {
		p.rawf(`<option value="%s"`, opt.value)
		if opt.value == current {
			p.raw(` selected`)
		}
		p.rawf(`>%s</option>`, opt.label)
	}
	p.raw(`</select></fieldset>`)
}

func writeChart(p *pageWriter, id, title, kind, signal, labelKey, valueKey string) {
	p.raw(`<section class="chart"><h3>`)
	p.text(title)
	p.rawf(`</h3><canvas id="%s" data-effect="capCharts.render('%s', '%s', $%s, '%s', '%s')"></canvas></section>`,
		id, id, kind, signal, labelKey, valueKey)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

const pageStyle = `
body{margin:0;display:flex;font-family:system-ui,sans-serif;background:#f5f6f8;color:#222}
.sidebar{width:260px;padding:1rem;background:#fff;border-right:1px solid #ddd;min-height:100vh}
fieldset{border:0;margin:0 0 1rem;padding:0}legend{font-weight:600;margin-bottom:.25rem}
label{display:block;margin:.2rem 0}main{flex:1;padding:1.5rem}
.metrics{display:grid;grid-template-columns:repeat(4,1fr);gap:1rem;margin-bottom:1rem}
.metric{background:#fff;border-radius:8px;padding:1rem;box-shadow:0 1px 2px rgba(0,0,0,.08)}
.metric .label{display:block;font-size:.85rem;color:#666}.metric .value{font-size:1.6rem;font-weight:700}
.period{grid-column:1/-1;color:#666;margin:0}.chart{background:#fff;border-radius:8px;padding:1rem;margin-bottom:1rem}
.error{background:#fdecea;color:#8a1c1c;padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
`

const chartRuntime = `
window.capCharts = {
  charts: {},
  render(id, kind, rows, labelKey, valueKey) {
    const canvas = document.getElementById(id);
    if (!canvas || !window.Chart) return;
    const labels = (rows || []).map(r => r[labelKey]);
    const values = (rows || []).map(r => r[valueKey]);
    const existing = this.charts[id];
    if (existing) {
      existing.data.labels = labels;
      existing.data.datasets[0].data = values;
      existing.update();
      return;
    }
    this.charts[id] = new Chart(canvas, {
      type: kind,
      data: { labels, datasets: [{ label: valueKey, data: values }] },
      options: { animation: false, plugins: { legend: { display: kind === 'pie' } } },
    });
  },
};
`
