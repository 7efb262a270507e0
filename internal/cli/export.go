package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"cap-dashboard/internal/export"
)

const defaultReportName = "cap_sales_report"

func newExportCmd(app *App) *cobra.Command {
	var (
		filters     filterFlags
		reportTypes []string
		dir         string
		reportName  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered aggregate as CSV, JSON or PDF reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := export.ParseTypes(reportTypes)
			if err != nil {
				return err
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			s, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			criteria, err := filters.criteria(cmd, s.dashboard.Options())
			if err != nil {
				return err
			}
			result, err := s.dashboard.Query(cmd.Context(), criteria)
			if err != nil {
				return err
			}

			source, _ := s.dashboard.Stats()["source"].(string)
			report := export.NewReport("Cap Sales Report", source, criteria, result)
			paths, err := export.NewExporter(absDir).Export(report, reportName, types)
			for _, path := range paths {
				s.console.LogSuccess("Report saved to %s", path)
			}
			return err
		},
	}

	filters.register(cmd)
	cmd.Flags().StringSliceVarP(&reportTypes, "report-type", "y", []string{export.TypeCSV}, "Report types: csv, json, pdf")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the report files")
	cmd.Flags().StringVarP(&reportName, "report-name", "n", defaultReportName, "Base name for the report files (without extension)")
	return cmd
}
