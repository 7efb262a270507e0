package export

import (
	"fmt"

	"cap-dashboard/internal/format"
	"cap-dashboard/internal/models"
	"github.com/jung-kurt/gofpdf"
)

var (
	headerColor     = [3]int{40, 40, 40}
	headerTextColor = [3]int{255, 255, 255}
	bodyTextColor   = [3]int{50, 50, 50}
	lineColor       = [3]int{200, 200, 200}
	barColor        = [3]int{52, 120, 200}
)

// MonthRevenue is revenue rolled up to a calendar month (YYYY-MM).
type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue int    `json:"revenue"`
}

// RevenueByMonth folds a date-ascending revenue series into months, keeping
// the ascending order.
func RevenueByMonth(series []models.DateRevenue) []MonthRevenue {
	var months []MonthRevenue
	for _, d := range series {
		month := d.Date.Format("2006-01")
		if n := len(months); n > 0 && months[n-1].Month == month {
			months[n-1].Revenue += d.Revenue
			continue
		}
		months = append(months, MonthRevenue{Month: month, Revenue: d.Revenue})
	}
	return months
}

func renderPDF(report Report) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	res := report.Result

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Generated by capdash | %s", report.GeneratedAt.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 10, tr(footer), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  "+report.Title), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	subtitle := fmt.Sprintf("  Period: %s to %s   Source: %s", res.Period.Start, res.Period.End, report.Source)
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}
	table := func(headers [2]string, rows [][2]string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(120, 7, tr(headers[0]), "B", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, tr(headers[1]), "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, row := range rows {
			pdf.CellFormat(120, 6, tr(row[0]), "", 0, "L", false, 0, "")
			pdf.CellFormat(70, 6, tr(row[1]), "", 1, "R", false, 0, "")
		}
		pdf.Ln(8)
	}

	section("Summary")
	table([2]string{"Metric", "Value"}, [][2]string{
		{"Total quantity", format.Integer(res.TotalQuantity)},
		{"Total revenue", format.MoneyInt(res.TotalRevenue)},
		{"Average unit value", format.Money(res.AverageUnitValue)},
		{"Distinct categories", format.Integer(res.DistinctCategories)},
		{"Records", format.Integer(res.RecordCount)},
	})

	section("Quantity by category")
	drawBars(pdf, tr, res.QuantityByCategory)

	section("Revenue by payment method")
	paymentRows := make([][2]string, 0, len(res.RevenueByPayment))
	for _, p := range res.RevenueByPayment {
		paymentRows = append(paymentRows, [2]string{p.PaymentMethod, format.MoneyInt(p.Revenue)})
	}
	table([2]string{"Payment method", "Revenue"}, paymentRows)

	section("Revenue by month")
	monthRows := [][2]string{}
	for _, m := range RevenueByMonth(res.RevenueByDate) {
		monthRows = append(monthRows, [2]string{m.Month, format.MoneyInt(m.Revenue)})
	}
	table([2]string{"Month", "Revenue"}, monthRows)

	return pdf
}

func drawBars(pdf *gofpdf.Fpdf, tr func(string) string, rows []models.CategoryQuantity) {
	if len(rows) == 0 {
		pdf.Cell(0, 6, "No data")
		pdf.Ln(10)
		return
	}

	const labelWidth, maxBar = 50.0, 110.0
	top := rows[0].Quantity
	for _, row := range rows {
		pdf.CellFormat(labelWidth, 6, tr(row.Category), "", 0, "L", false, 0, "")
		width := 0.0
		if top > 0 {
			width = maxBar * float64(row.Quantity) / float64(top)
		}
		x, y := pdf.GetX(), pdf.GetY()
		pdf.SetFillColor(barColor[0], barColor[1], barColor[2])
		pdf.Rect(x, y+1, width, 4, "F")
		pdf.SetX(x + maxBar + 2)
		pdf.CellFormat(28, 6, format.Integer(row.Quantity), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)
}
