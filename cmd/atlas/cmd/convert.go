package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/genbalog/atlas/internal/loader"
	"github.com/genbalog/atlas/internal/output"
	"github.com/genbalog/atlas/internal/tsvpack"
)

// convertOptions holds CLI flags for convert.
type convertOptions struct {
	tsv     string
	out     string
	dataDir string
	dryRun  bool
}

// newConvertCmd creates the convert command.
func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a TSV source file into a pack",
		Long: `Convert a tab-separated source file into a JSON pack.

The TSV must carry a header with at least id, term_ja, term_en and
category columns; hint_text is optional. When --data is given, category
values are checked against the vocabulary declared in index.json.

Examples:
  atlas convert --tsv tools.tsv --out pack.json
  atlas convert --tsv tools.tsv --data ./data --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tsv, "tsv", "t", "", "TSV source file (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "pack.json", "Output pack file")
	cmd.Flags().StringVarP(&opts.dataDir, "data", "d", "", "Data directory; enables category vocabulary checks")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and validate without writing the pack")
	_ = cmd.MarkFlagRequired("tsv")

	return cmd
}

func runConvert(cmd *cobra.Command, opts convertOptions) error {
	out := output.New(cmd.OutOrStdout())
	slog.Info("convert_started", slog.String("tsv", opts.tsv))

	data, err := os.ReadFile(opts.tsv)
	if err != nil {
		return err
	}
	rows, err := tsvpack.Parse(string(data))
	if err != nil {
		return err
	}

	// Category checks only apply when a data directory was named.
	var allowed map[string]struct{}
	if opts.dataDir != "" {
		manifest, err := loader.LoadManifest(opts.dataDir)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}
		if ids := manifest.CategoryIDs(); len(ids) > 0 {
			allowed = ids
		}
	}

	entries, err := tsvpack.Convert(rows, allowed)
	if err != nil {
		return err
	}
	slog.Info("convert_complete", slog.Int("entries", len(entries)))

	if opts.dryRun {
		out.Successf("%d row(s) would convert cleanly (dry run)", len(entries))
		return nil
	}

	encoded, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	if err := os.WriteFile(opts.out, encoded, 0o644); err != nil {
		return err
	}
	out.Successf("Wrote %d entries to %s", len(entries), opts.out)
	return nil
}
