package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvannier/gosum/internal/verify"
	"github.com/nvannier/gosum/pkg/fileglob"
)

var compareCmd = &cobra.Command{
	Use:   "compare <path or glob>...",
	Short: "Compare files against the first",
	Long: `Compute digests for every file and compare each against the first one
listed. The reference is always the first argument after glob expansion,
never filesystem order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := fileglob.Expand(args)
	if err != nil {
		return err
	}

	ctx, cancel := runContext()
	defer cancel()

	orch := verify.NewOrchestrator(newEngine(cfg), verify.Options{
		Enabled: cfg.Enabled,
		Workers: cfg.Performance.Workers,
	})

	cmp, err := orch.Compare(ctx, files)
	if errors.Is(err, verify.ErrNotEnoughFiles) {
		return fmt.Errorf("%w: need at least two files, got %d", errChecksFailed, len(files))
	}
	if err != nil {
		return err
	}

	if err := newPrinter(cfg).Comparison(cmp); err != nil {
		return err
	}
	if !cmp.AllMatch() {
		return errChecksFailed
	}
	return nil
}
