package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"cap-dashboard/internal/export"
)

func newDatasetCmd(app *App) *cobra.Command {
	var (
		dir    string
		name   string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Write every record of the dataset as CSV",
		Long: "Write every record of the dataset as CSV. The output can be fed back\n" +
			"with --csv, which is how a synthesized dataset is pinned for later runs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession(cmd)
			if err != nil {
				return err
			}
			records := s.dashboard.Records()

			if stdout {
				return export.WriteRecordsCSV(cmd.OutOrStdout(), records)
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			path, err := export.NewExporter(absDir).ExportRecords(records, name)
			if err != nil {
				return err
			}
			s.console.LogSuccess("%d records saved to %s", len(records), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the CSV file")
	cmd.Flags().StringVarP(&name, "report-name", "n", "cap_sales", "Base name for the CSV file (without extension)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the CSV to standard output instead of a file")
	return cmd
}
