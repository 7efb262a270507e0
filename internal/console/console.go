// Package console renders dashboard results for a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"cap-dashboard/internal/export"
	"cap-dashboard/internal/format"
	"cap-dashboard/internal/models"
	"cap-dashboard/internal/services"
)

const barWidth = 40

var (
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	BrightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Console writes pterm tables and panels to an io.Writer.
type Console struct {
	out io.Writer
}

func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) LogInfo(format string, a ...any) {
	fmt.Fprint(c.out, pterm.Info.Sprintfln(format, a...))
}

func (c *Console) LogWarning(format string, a ...any) {
	fmt.Fprint(c.out, pterm.Warning.Sprintfln(format, a...))
}

func (c *Console) LogSuccess(format string, a ...any) {
	fmt.Fprint(c.out, pterm.Success.Sprintfln(format, a...))
}

// Banner prints the application name and the data source in use.
func (c *Console) Banner(title, source string) {
	fmt.Fprintln(c.out, BrightCyan(title))
	fmt.Fprintln(c.out, "Source: "+BrightYellow(source))
}

func renderTable(data pterm.TableData) string {
	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data)

	rendered, _ := table.Srender()
	return rendered
}

func panel(title, body string) string {
	return pterm.DefaultBox.
		WithTitle(title).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(body)
}

// Metrics prints the four headline figures plus the top category.
func (c *Console) Metrics(result models.AggregateResult) {
	if result.RecordCount == 0 {
		c.LogWarning("No records match the selected filters.")
		return
	}

	lines := []string{
		fmt.Sprintf("Total quantity      %s", BrightGreen(format.Integer(result.TotalQuantity))),
		fmt.Sprintf("Revenue             %s", BrightGreen(format.MoneyInt(result.TotalRevenue))),
		fmt.Sprintf("Average unit value  %s", BrightGreen(format.Money(result.AverageUnitValue))),
		fmt.Sprintf("Categories          %s", BrightGreen(format.Integer(result.DistinctCategories))),
	}
	if top, ok := services.TopCategory(result); ok {
		lines = append(lines, fmt.Sprintf("Top category        %s (%s units)", top.Category, format.Integer(top.Quantity)))
	}
	lines = append(lines, fmt.Sprintf("Period              %s to %s", result.Period.Start, result.Period.End))

	fmt.Fprintln(c.out, panel("Summary", strings.Join(lines, "\n")))
}

func (c *Console) CategoryTable(result models.AggregateResult) {
	data := pterm.TableData{{"Category", "Quantity", "Share"}}
	for _, row := range result.QuantityByCategory {
		share := 0.0
		if result.TotalQuantity > 0 {
			share = float64(row.Quantity) / float64(result.TotalQuantity)
		}
		data = append(data, []string{row.Category, format.Integer(row.Quantity), format.Percent(share)})
	}
	fmt.Fprintln(c.out, renderTable(data))
}

func (c *Console) PaymentTable(result models.AggregateResult) {
	shares := services.PaymentShare(result)
	data := pterm.TableData{{"Payment method", "Revenue", "Share"}}
	for _, row := range result.RevenueByPayment {
		data = append(data, []string{row.PaymentMethod, format.MoneyInt(row.Revenue), format.Percent(shares[row.PaymentMethod])})
	}
	fmt.Fprintln(c.out, renderTable(data))
}

// MonthlyRevenueBars draws one bar per month scaled to the best month.
func (c *Console) MonthlyRevenueBars(result models.AggregateResult) {
	months := export.RevenueByMonth(result.RevenueByDate)

	best := 0
	for _, m := range months {
		best = max(best, m.Revenue)
	}
	if best == 0 {
		c.LogWarning("No revenue in the selected period")
		return
	}

	data := pterm.TableData{{"Month", "Revenue", ""}}
	for _, m := range months {
		bar := strings.Repeat("█", m.Revenue*barWidth/best)
		data = append(data, []string{m.Month, format.MoneyInt(m.Revenue), pterm.FgBlue.Sprint(bar)})
	}

	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	fmt.Fprintln(c.out, "\n"+panel("Revenue by month", table))
}

// Dashboard prints the full terminal view of one query.
func (c *Console) Dashboard(result models.AggregateResult) {
	c.Metrics(result)
	if result.RecordCount == 0 {
		return
	}
	c.CategoryTable(result)
	c.PaymentTable(result)
	c.MonthlyRevenueBars(result)
}
