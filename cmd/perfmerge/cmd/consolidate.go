package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"perfmerge/internal/config"
	"perfmerge/internal/services"
	"perfmerge/pkg/contracts/domain"
)

type consolidateFlags struct {
	in          string
	pattern     string
	out         string
	mode        string
	pairs       string
	chart       string
	layout      string
	arrows      bool
	variance    bool
	metricsFile string
	jsonOutput  bool
}

func newConsolidateCmd(root *rootOptions) *cobra.Command {
	f := &consolidateFlags{}

	cmd := &cobra.Command{
		Use:   "consolidate [report files...]",
		Short: "Merge reports into one workbook with variance columns",
		Long: `Merge the reports in --in (or the files given as arguments, in that
order) into one workbook. The first report decides which transactions are
listed and in what order. Variance columns compare runs pairwise:

  latest               latest run against every earlier one
  consecutive          every run against its predecessor
  latest+consecutive   both, without repeating a pair
  none                 no variance columns`,
		Example: `  perfmerge consolidate --in reports --out merged.xlsx
  perfmerge consolidate --mode absolute --pairs consecutive --chart embedded-image
  perfmerge consolidate --in reports --pattern "perf_*.xlsx"
  perfmerge consolidate run1.xlsx run2.xlsx run3.csv --out compare.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cmd, root.cfg); err != nil {
				return err
			}
			return runConsolidate(cmd, root, f, args)
		},
	}

	cmd.Flags().StringVar(&f.in, "in", "", "Directory holding the report files")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", `Glob selecting report files in --in, e.g. "*.xlsx"`)
	cmd.Flags().StringVar(&f.out, "out", "", "Workbook to write (.xlsx)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Variance mode: absolute or relative-percent")
	cmd.Flags().StringVar(&f.pairs, "pairs", "", "Pair preset: latest, consecutive, latest+consecutive or none")
	cmd.Flags().StringVar(&f.chart, "chart", "", "Charts: none, embedded-image or native-chart")
	cmd.Flags().StringVar(&f.layout, "layout", "", "Sheet layout: single or multi")
	cmd.Flags().BoolVar(&f.arrows, "arrows", true, "Show trend arrows on variance cells")
	cmd.Flags().BoolVar(&f.variance, "variance", true, "Derive variance columns")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the run summary as JSON")

	return cmd
}

// apply lays the flags the user actually set over the loaded config and
// validates the result.
func (f *consolidateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("in") {
		cfg.Paths.InputDir = f.in
	}
	if flags.Changed("pattern") {
		cfg.Paths.Pattern = f.pattern
	}
	if flags.Changed("out") {
		cfg.Paths.OutputFile = f.out
	}
	if flags.Changed("metrics-file") {
		cfg.Paths.MetricsFile = f.metricsFile
	}
	if flags.Changed("mode") {
		cfg.Pipeline.VarianceMode = f.mode
	}
	if flags.Changed("pairs") {
		cfg.Pipeline.Pairs = f.pairs
		// A preset on the command line replaces pairs listed in the file.
		cfg.Pipeline.ExplicitPairs = nil
	}
	if flags.Changed("chart") {
		cfg.Pipeline.ChartOutput = f.chart
	}
	if flags.Changed("layout") {
		cfg.Pipeline.SheetLayout = f.layout
	}
	if flags.Changed("arrows") {
		cfg.Pipeline.Arrows = f.arrows
	}
	if flags.Changed("variance") {
		cfg.Pipeline.IncludeVariance = f.variance
	}
	return cfg.Validate()
}

func runConsolidate(cmd *cobra.Command, root *rootOptions, f *consolidateFlags, args []string) error {
	paths, err := root.cfg.ResolvePaths()
	if err != nil {
		return err
	}

	svc := services.NewConsolidationService(root.cfg, root.logger)
	result, err := svc.Consolidate(cmd.Context(), services.ConsolidateRequest{
		InputDir:    paths.InputDir,
		Pattern:     root.cfg.Paths.Pattern,
		Sources:     sourcesFromArgs(args),
		OutputPath:  paths.OutputFile,
		Options:     root.cfg.ToPipelineOptions(),
		MetricsFile: paths.MetricsFile,
	})
	if err != nil {
		return err
	}

	if f.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printRunSummary(cmd.OutOrStdout(), result)
}

func sourcesFromArgs(args []string) []domain.Source {
	if len(args) == 0 {
		return nil
	}
	sources := make([]domain.Source, len(args))
	for i, a := range args {
		sources[i] = domain.Source{Name: filepath.Base(a), Path: a}
	}
	return sources
}

func printRunSummary(w io.Writer, r *services.RunResult) error {
	fmt.Fprintf(w, "Wrote %s\n", r.OutputPath)
	for i, name := range r.Reports {
		fmt.Fprintf(w, "  R%d  %s\n", i+1, name)
	}
	fmt.Fprintf(w, "Transactions: %d, variance columns: %d\n", r.Rows, r.VarianceColumns)
	fmt.Fprintf(w, "Slow cells: %d warn, %d severe\n",
		r.Severity[domain.SeverityWarn], r.Severity[domain.SeveritySevere])
	if r.Dropped > 0 {
		fmt.Fprintf(w, "Dropped rows without a transaction name: %d\n", r.Dropped)
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(w, "Repeated transaction names (last value kept): %d\n", r.Duplicates)
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(w, "Skipped %s: %v\n", s.Source.Name, s.Err)
	}
	_, err := fmt.Fprintf(w, "Run %s finished in %s\n", r.RunID, r.Duration.Round(time.Millisecond))
	return err
}
