package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"cap-dashboard/internal/models"
	"cap-dashboard/internal/services"
)

func init() {
	color.NoColor = true
	pterm.DisableColor()
}

func testResult() models.AggregateResult {
	jan := models.NewDay(2025, time.January, 15)
	feb := models.NewDay(2025, time.February, 3)
	return services.Aggregate([]models.Record{
		models.NewRecord(jan, "Snapback", 1000, 2, "Pix", true),
		models.NewRecord(jan, "Trucker", 500, 1, "Cash", false),
		models.NewRecord(feb, "Snapback", 250, 2, "Pix", false),
	})
}

func render(fn func(c *Console)) string {
	var buf bytes.Buffer
	fn(New(&buf))
	return pterm.RemoveColorFromString(buf.String())
}

func TestConsole_Metrics(t *testing.T) {
	out := render(func(c *Console) { c.Metrics(testResult()) })

	for _, want := range []string{"Summary", "1,750", "R$ 3,000.00", "R$ 1.71", "Top category", "Snapback", "2025-01-15 to 2025-02-03"} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestConsole_MetricsEmpty(t *testing.T) {
	out := render(func(c *Console) { c.Dashboard(services.Aggregate(nil)) })

	if !strings.Contains(out, "No records match") {
		t.Errorf("empty result should warn, got %q", out)
	}
	if strings.Contains(out, "Payment method") {
		t.Error("tables should be skipped for an empty result")
	}
}

func TestConsole_Tables(t *testing.T) {
	out := render(func(c *Console) {
		c.CategoryTable(testResult())
		c.PaymentTable(testResult())
	})

	for _, want := range []string{"Category", "1,250", "71.4%", "Payment method", "R$ 2,500.00", "83.3%", "Cash"} {
		if !strings.Contains(out, want) {
			t.Errorf("tables missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Snapback") > strings.Index(out, "Trucker") {
		t.Error("categories should be listed by quantity, highest first")
	}
}

func TestConsole_MonthlyRevenueBars(t *testing.T) {
	out := render(func(c *Console) { c.MonthlyRevenueBars(testResult()) })

	lines := strings.Split(out, "\n")
	var jan, feb string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "2025-01"):
			jan = line
		case strings.Contains(line, "2025-02"):
			feb = line
		}
	}
	if strings.Count(jan, "█") != barWidth {
		t.Errorf("best month should have a full bar: %q", jan)
	}
	if got := strings.Count(feb, "█"); got != 500*barWidth/2500 {
		t.Errorf("february bar = %d blocks, want %d", got, 500*barWidth/2500)
	}
}

func TestConsole_Banner(t *testing.T) {
	out := render(func(c *Console) { c.Banner("Cap Sales Dashboard", "synthetic:caps") })

	if !strings.Contains(out, "Cap Sales Dashboard") || !strings.Contains(out, "Source: synthetic:caps") {
		t.Errorf("banner = %q", out)
	}
}
