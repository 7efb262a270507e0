package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cap-dashboard/internal/models"
)

type filterFlags struct {
	start      string
	end        string
	categories []string
	payments   []string
	frequent   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.start, "start", "", "First day to include (YYYY-MM-DD, default: first day of the data)")
	flags.StringVar(&f.end, "end", "", "Last day to include (YYYY-MM-DD, default: last day of the data)")
	flags.StringSliceVar(&f.categories, "category", nil, "Categories to include (comma-separated, default: all)")
	flags.StringSliceVar(&f.payments, "payment", nil, "Payment methods to include (comma-separated, default: all)")
	flags.StringVar(&f.frequent, "frequent", string(models.FrequentAny), "Frequent customers: any, yes or no")
}

// criteria turns the flags into a selection. An unset list flag selects
// every option; --category "" selects none.
func (f *filterFlags) criteria(cmd *cobra.Command, opts models.Options) (models.FilterCriteria, error) {
	var c models.FilterCriteria
	var err error

	if c.Start, err = parseDayFlag("start", f.start); err != nil {
		return c, err
	}
	if c.End, err = parseDayFlag("end", f.end); err != nil {
		return c, err
	}

	c.Categories = listFlag(cmd, "category", f.categories, opts.Categories)
	c.PaymentMethods = listFlag(cmd, "payment", f.payments, opts.PaymentMethods)
	c.Frequent = models.FrequentFilter(f.frequent)
	return c, nil
}

func parseDayFlag(name, value string) (models.Day, error) {
	if strings.TrimSpace(value) == "" {
		return models.Day{}, nil
	}
	d, err := models.ParseDay(strings.TrimSpace(value))
	if err != nil {
		return models.Day{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func listFlag(cmd *cobra.Command, name string, values, all []string) []string {
	if !cmd.Flags().Changed(name) {
		return append([]string{}, all...)
	}
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
