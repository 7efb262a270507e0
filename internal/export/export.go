// Package export writes dashboard reports and datasets to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"cap-dashboard/internal/models"
)

const (
	TypeCSV  = "csv"
	TypeJSON = "json"
	TypePDF  = "pdf"
)

var recordColumns = []string{
	"date", "category", "quantity", "unit_price", "revenue", "payment_method", "frequent_customer",
}

// Report is one aggregate together with the selection that produced it.
type Report struct {
	Title       string                 `json:"title"`
	Source      string                 `json:"source"`
	GeneratedAt time.Time              `json:"generated_at"`
	Criteria    models.FilterCriteria  `json:"criteria"`
	Result      models.AggregateResult `json:"result"`
}

func NewReport(title, source string, criteria models.FilterCriteria, result models.AggregateResult) Report {
	return Report{
		Title:       title,
		Source:      source,
		GeneratedAt: time.Now(),
		Criteria:    criteria,
		Result:      result,
	}
}

// Exporter writes reports into Dir, one timestamped file per format.
type Exporter struct {
	Dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// ParseTypes validates a list of report types such as "csv,pdf".
func ParseTypes(values []string) ([]string, error) {
	var types []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			t := strings.ToLower(strings.TrimSpace(part))
			if t == "" {
				continue
			}
			switch t {
			case TypeCSV, TypeJSON, TypePDF:
			default:
				return nil, fmt.Errorf("unsupported report type %q (want csv, json or pdf)", t)
			}
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no report type given")
	}
	return types, nil
}

// Export writes report once per type and returns the absolute paths.
func (e *Exporter) Export(report Report, name string, types []string) ([]string, error) {
	var paths []string
	for _, t := range types {
		var (
			path string
			err  error
		)
		switch t {
		case TypeCSV:
			path, err = e.ExportCSV(report, name)
		case TypeJSON:
			path, err = e.ExportJSON(report, name)
		case TypePDF:
			path, err = e.ExportPDF(report, name)
		default:
			err = fmt.Errorf("unsupported report type %q", t)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Exporter) ExportCSV(report Report, name string) (string, error) {
	outputFilename, err := generateFilename(name, e.Dir, TypeCSV)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteReportCSV(file, report); err != nil {
		return "", err
	}
	return filepath.Abs(outputFilename)
}

func (e *Exporter) ExportJSON(report Report, name string) (string, error) {
	outputFilename, err := generateFilename(name, e.Dir, TypeJSON)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportRecords writes the dataset rows themselves, not an aggregate.
func (e *Exporter) ExportRecords(records []models.Record, name string) (string, error) {
	outputFilename, err := generateFilename(name, e.Dir, TypeCSV)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteRecordsCSV(file, records); err != nil {
		return "", err
	}
	return filepath.Abs(outputFilename)
}

// WriteRecordsCSV writes records in the same layout the dataset loader
// reads.
func WriteRecordsCSV(w io.Writer, records []models.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(recordColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Date.String(),
			r.Category,
			strconv.Itoa(r.Quantity),
			strconv.Itoa(r.UnitPrice),
			strconv.Itoa(r.Revenue),
			r.PaymentMethod,
			strconv.FormatBool(r.FrequentCustomer),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteReportCSV writes the metrics and the three tables as one sectioned
// CSV: section, label, value.
func WriteReportCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	res := report.Result

	rows := [][]string{
		{"section", "label", "value"},
		{"summary", "period_start", res.Period.Start.String()},
		{"summary", "period_end", res.Period.End.String()},
		{"summary", "records", strconv.Itoa(res.RecordCount)},
		{"summary", "total_quantity", strconv.Itoa(res.TotalQuantity)},
		{"summary", "total_revenue", strconv.Itoa(res.TotalRevenue)},
		{"summary", "average_unit_value", strconv.FormatFloat(res.AverageUnitValue, 'f', 2, 64)},
		{"summary", "distinct_categories", strconv.Itoa(res.DistinctCategories)},
	}
	for _, d := range res.RevenueByDate {
		rows = append(rows, []string{"revenue_by_date", d.Date.String(), strconv.Itoa(d.Revenue)})
	}
	for _, c := range res.QuantityByCategory {
		rows = append(rows, []string{"quantity_by_category", c.Category, strconv.Itoa(c.Quantity)})
	}
	for _, p := range res.RevenueByPayment {
		rows = append(rows, []string{"revenue_by_payment_method", p.PaymentMethod, strconv.Itoa(p.Revenue)})
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write report csv: %w", err)
	}
	return nil
}

func (e *Exporter) ExportPDF(report Report, name string) (string, error) {
	outputFilename, err := generateFilename(name, e.Dir, TypePDF)
	if err != nil {
		return "", err
	}

	pdf := renderPDF(report)
	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// generateFilename builds a timestamped file name in dir, creating dir when
// needed. An empty dir means the working directory.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
