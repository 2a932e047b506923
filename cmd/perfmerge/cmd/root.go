// Package cmd provides the CLI commands for perfmerge.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"perfmerge/internal/config"
	"perfmerge/internal/infrastructure"
	"perfmerge/pkg/contracts"
)

// rootOptions carries what the persistent flags and PersistentPreRunE
// produce to the subcommands.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

// NewRootCmd creates the root command for the perfmerge CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "perfmerge",
		Short: "Consolidate performance test reports into one comparison workbook",
		Long: `perfmerge merges the timing reports of several load test runs into a
single workbook keyed on the first report's transactions, derives variance
columns between runs and highlights slow transactions.

Reports are read from a directory in file name order: the first file is the
base report and the last one is the latest run.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("perfmerge version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return opts.setup()
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return infrastructure.CloseLogFile()
	}

	cmd.AddCommand(newConsolidateCmd(opts))
	cmd.AddCommand(newFilterCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command, cancelling the run on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// setup loads the configuration and starts the logger. Subcommand flags are
// applied later, in each RunE, on top of the loaded config.
func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	if cfg.Logging.Output != "console" {
		cfg.Logging.FilePath = paths.LogFile
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.cfg = cfg
	o.paths = paths
	o.logger = logger
	paths.LogPathResolution(logger)
	return nil
}
