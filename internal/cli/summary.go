package cli

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print metrics, category and payment tables and monthly revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			s.console.Banner("Cap Sales Dashboard", source)
			s.console.Dashboard(result)
			return nil
		},
	}
	filters.register(cmd)
	return cmd
}
