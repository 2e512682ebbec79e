package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nvannier/gosum/internal/verify"
	"github.com/nvannier/gosum/pkg/logger"
)

var (
	autoRecursive     bool
	autoCrossValidate bool
)

var autoCmd = &cobra.Command{
	Use:   "auto [directory]",
	Short: "Verify checksum manifests found in a directory",
	Long: `Discover checksum manifests (MD5SUMS, SHA256SUMS, *.sha256, CHECKSUMS,
BSD-style digest files) in the directory, recompute each listed digest and
report a per-entry verdict. The directory defaults to the current one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuto,
}

func init() {
	rootCmd.AddCommand(autoCmd)
	autoCmd.Flags().BoolVarP(&autoRecursive, "recursive", "r", false, "descend into subdirectories")
	autoCmd.Flags().BoolVar(&autoCrossValidate, "cross-validate", false, "compute every enabled algorithm per target")
}

func runAuto(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	ctx, cancel := runContext()
	defer cancel()

	orch := verify.NewOrchestrator(newEngine(cfg), verify.Options{
		Enabled:       cfg.Enabled,
		Workers:       cfg.Performance.Workers,
		Recursive:     cfg.FileHandling.Recursive || autoRecursive,
		Exclude:       cfg.FileHandling.Exclude,
		CrossValidate: cfg.Verification.CrossValidate || autoCrossValidate,
	})

	report, err := orch.VerifyDirectory(ctx, dir)
	if err != nil {
		return err
	}
	if len(report.Manifests) == 0 {
		logger.Info("no checksum manifests found", "dir", dir)
	}

	if err := newPrinter(cfg).Report(report); err != nil {
		return err
	}
	if !report.Ok() {
		return errChecksFailed
	}
	return nil
}
