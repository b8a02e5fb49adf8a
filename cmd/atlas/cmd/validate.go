package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/genbalog/atlas/internal/config"
	"github.com/genbalog/atlas/internal/loader"
	"github.com/genbalog/atlas/internal/output"
)

// newValidateCmd creates the validate command.
func newValidateCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the data directory",
		Long: `Validate index.json and every referenced data pack.

All packs are checked; issues are collected rather than stopping at the
first problem. Warnings go to stdout, errors to stderr, and the command
exits non-zero when any error was found.

Examples:
  atlas validate
  atlas validate --data ./data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := resolveDataDir(dataDir)
			if err != nil {
				return err
			}
			return runValidate(cmd, dir)
		},
	}

	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "Data directory (default from config)")

	return cmd
}

func runValidate(cmd *cobra.Command, dataDir string) error {
	slog.Info("validate_started", slog.String("data_dir", dataDir))

	advisory := loader.Advise(dataDir)
	advisory.Report(cmd.OutOrStdout(), cmd.ErrOrStderr())

	out := output.New(cmd.OutOrStdout())
	slog.Info("validate_complete",
		slog.Int("packs", advisory.PackCount),
		slog.Int("entries", advisory.EntryCount),
		slog.Int("errors", len(advisory.Errors)),
		slog.Int("warnings", len(advisory.Warnings)))

	if advisory.Failed() {
		return fmt.Errorf("%d validation error(s) in %s", len(advisory.Errors), dataDir)
	}
	out.Successf("%d entries across %d pack(s) are valid (%d warning(s))",
		advisory.EntryCount, advisory.PackCount, len(advisory.Warnings))
	return nil
}

// resolveDataDir picks the data directory: the flag when given, the
// project config otherwise.
func resolveDataDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load(".")
	if err != nil {
		return "", err
	}
	return cfg.DataDir, nil
}
