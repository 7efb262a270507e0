// Package cli is the capdash command tree: a terminal view of the dashboard
// and report export.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cap-dashboard/internal/config"
	"cap-dashboard/internal/console"
	"cap-dashboard/internal/observability"
	"cap-dashboard/internal/services"
)

// App owns the root command and the flags shared by every subcommand.
type App struct {
	rootCmd *cobra.Command
	version string

	configFile string
	variant    string
	seed       uint64
	csvFile    string
	verbose    bool
}

func NewApp(version string) *App {
	app := &App{version: version}

	rootCmd := &cobra.Command{
		Use:           "capdash",
		Short:         "Cap sales dashboard in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "capdash version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&app.configFile, "config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringVar(&app.variant, "variant", "", "Synthetic dataset variant: caps or customers")
	flags.Uint64Var(&app.seed, "seed", services.DefaultSeed, "Random seed for the synthetic dataset")
	flags.StringVar(&app.csvFile, "csv", "", "Load records from this CSV file instead of synthesizing them")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Log dataset loading and query timings to stderr")

	rootCmd.AddCommand(
		newSummaryCmd(app),
		newExportCmd(app),
		newDatasetCmd(app),
	)

	app.rootCmd = rootCmd
	return app
}

func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func (a *App) ExecuteContext(ctx context.Context) error {
	return a.rootCmd.ExecuteContext(ctx)
}

// Root exposes the command so callers can redirect output and arguments.
func (a *App) Root() *cobra.Command {
	return a.rootCmd
}

// loadConfig layers command-line flags over the file and environment
// configuration.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configFile != "" {
		cfg, err = config.LoadWithFile(a.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("variant") {
		cfg.Dataset.Variant = a.variant
	}
	if flags.Changed("seed") {
		cfg.Dataset.Seed = a.seed
	}
	if flags.Changed("csv") {
		cfg.Dataset.CSVFile = a.csvFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *App) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logCfg := cfg.Logger
	logCfg.Format = "text"
	logCfg.Level = "warn"
	if a.verbose {
		logCfg.Level = "debug"
	}
	return observability.NewLoggerTo(cmd.ErrOrStderr(), logCfg)
}

// session is what every subcommand works with: a loaded dashboard and a
// console bound to the command's output.
type session struct {
	dashboard *services.Dashboard
	console   *console.Console
	logger    *slog.Logger
}

func (a *App) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := a.logger(cmd, cfg)

	dashboard, err := services.NewDashboardFromConfig(cmd.Context(), cfg.Dataset, logger)
	if err != nil {
		return nil, err
	}
	return &session{
		dashboard: dashboard,
		console:   console.New(cmd.OutOrStdout()),
		logger:    logger,
	}, nil
}
