package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/genbalog/atlas/internal/config"
	"github.com/genbalog/atlas/internal/loader"
	"github.com/genbalog/atlas/internal/merge"
	"github.com/genbalog/atlas/internal/output"
	"github.com/genbalog/atlas/internal/ui"
)

// mergeOptions holds CLI flags for merge.
type mergeOptions struct {
	dataDir string
	pack    string
	manual  string
	outDir  string
	source  string
}

// newMergeCmd creates the merge command.
func newMergeCmd() *cobra.Command {
	var opts mergeOptions

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge an incoming pack into the corpus",
		Long: `Merge an incoming pack file into the validated base corpus.

Exact matches (by id or normalized term/alias) are folded into existing
entries with the base values winning. Uncertain matches are classified
as ambiguous and left for a human; records without terms are appended
as new and flagged. The run never fails on data quality: everything
lands in the report.

Outputs (written to --out-dir):
  converted_pack.json   the incoming pack in canonical form
  merged.json           the merged corpus
  merge_report.json     the classification report

Examples:
  atlas merge --pack new_tools.json
  atlas merge --pack new_tools.json --manual manual.json --out-dir merged`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dataDir, "data", "d", "", "Data directory holding the base corpus (default from config)")
	cmd.Flags().StringVarP(&opts.pack, "pack", "p", "", "Incoming pack file (required)")
	cmd.Flags().StringVarP(&opts.manual, "manual", "m", "", "Manual overrides file for previously ambiguous records")
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "merge_out", "Directory for merge artifacts")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Provenance tag recorded on touched entries (default: pack file name)")
	_ = cmd.MarkFlagRequired("pack")

	return cmd
}

func runMerge(cmd *cobra.Command, opts mergeOptions) error {
	dataDir, err := resolveDataDir(opts.dataDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	source := opts.source
	if source == "" {
		source = filepath.Base(opts.pack)
	}
	slog.Info("merge_started",
		slog.String("data_dir", dataDir),
		slog.String("pack", opts.pack),
		slog.String("source", source))

	base, err := loader.Load(dataDir)
	if err != nil {
		return fmt.Errorf("load base corpus: %w", err)
	}
	incoming, err := loader.ReadPack(opts.pack)
	if err != nil {
		return fmt.Errorf("read pack: %w", err)
	}
	manual, err := merge.ReadManual(opts.manual)
	if err != nil {
		return fmt.Errorf("read manual overrides: %w", err)
	}

	mergeOpts := merge.Options{
		Source:         source,
		SubstringFloor: cfg.Merge.SubstringFloor,
		PrefixFloor:    cfg.Merge.PrefixFloor,
		PrefixRatio:    cfg.Merge.PrefixRatio,
		NearMatchLimit: cfg.Merge.NearMatchLimit,
		Manual:         manual,
	}
	result := merge.Merge(base, incoming, mergeOpts)

	if err := merge.WriteArtifacts(opts.outDir, result); err != nil {
		return err
	}
	slog.Info("merge_complete",
		slog.Int("pack_count", result.Report.PackCount),
		slog.Int("added", result.Report.AddedAsNew),
		slog.Int("merged", result.Report.MergedIntoExisting),
		slog.Int("ambiguous", len(result.Report.Ambiguous)))

	printMergeSummary(cmd, opts.outDir, result.Report)
	return nil
}

// printMergeSummary renders the report counters for the terminal.
func printMergeSummary(cmd *cobra.Command, outDir string, report merge.Report) {
	out := output.New(cmd.OutOrStdout())
	styles := ui.StylesFor(cmd.OutOrStdout())

	out.Status("", styles.Header.Render("Merge summary"))
	out.Statusf("", "Pack records:       %d", report.PackCount)
	out.Statusf("", "Base entries:       %d", report.BasicCount)
	out.Status("", styles.Success.Render(fmt.Sprintf("Added as new:       %d", report.AddedAsNew)))
	out.Statusf("", "Merged into base:   %d", report.MergedIntoExisting)
	out.Statusf("", "Exact duplicates:   %d", len(report.DuplicatesExact))
	if report.ManualAsNewApplied+report.ManualMergeApplied > 0 {
		out.Statusf("", "Manual overrides:   %d as-new, %d merge",
			report.ManualAsNewApplied, report.ManualMergeApplied)
	}
	if n := len(report.Ambiguous); n > 0 {
		out.Status("", styles.Warning.Render(fmt.Sprintf("Ambiguous:          %d (resolve via --manual)", n)))
	}
	if n := len(report.PackNeedsManual); n > 0 {
		out.Status("", styles.Warning.Render(fmt.Sprintf("Needs manual:       %d", n)))
	}
	if n := len(report.FinalIDDuplicates); n > 0 {
		out.Status("", styles.Error.Render(fmt.Sprintf("Final id duplicates: %d %v", n, report.FinalIDDuplicates)))
	}
	out.Newline()
	out.Successf("Artifacts written to %s", outDir)
}
