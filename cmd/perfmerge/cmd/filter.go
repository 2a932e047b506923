package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"perfmerge/internal/services"
)

func newFilterCmd(root *rootOptions) *cobra.Command {
	var (
		in, pattern, out string
		bom              bool
	)

	cmd := &cobra.Command{
		Use:   "filter [report files...]",
		Short: "List slow transactions of every report in one CSV file",
		Long: `For each report, write the transactions between the warn and severe
thresholds and those at or above the severe threshold to one CSV file.
Thresholds come from pipeline.warn_threshold and pipeline.severe_threshold
(1.8 and 2 seconds by default).`,
		Example: `  perfmerge filter --in reports --out slow.csv
  perfmerge filter --in reports --pattern "*.xlsx" --bom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("in") {
				cfg.Paths.InputDir = in
			}
			if cmd.Flags().Changed("pattern") {
				cfg.Paths.Pattern = pattern
			}
			if cmd.Flags().Changed("out") {
				cfg.Paths.FilterOutput = out
			}
			if cmd.Flags().Changed("bom") {
				cfg.Paths.FilterBOM = bom
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			paths, err := cfg.ResolvePaths()
			if err != nil {
				return err
			}

			svc := services.NewConsolidationService(cfg, root.logger)
			result, err := svc.Filter(cmd.Context(), services.FilterRequest{
				InputDir:   paths.InputDir,
				Pattern:    cfg.Paths.Pattern,
				Sources:    sourcesFromArgs(args),
				OutputPath: paths.FilterOutput,
				BOM:        cfg.Paths.FilterBOM,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d report(s), %d warn row(s), %d severe row(s)\n",
				result.OutputPath, result.Reports, result.Warn, result.Severe)
			return err
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Directory holding the report files")
	cmd.Flags().StringVar(&pattern, "pattern", "", `Glob selecting report files in --in, e.g. "*.xlsx"`)
	cmd.Flags().StringVar(&out, "out", "", "CSV file to write")
	cmd.Flags().BoolVar(&bom, "bom", false, "Start the CSV with a UTF-8 byte order mark for Excel")

	return cmd
}
