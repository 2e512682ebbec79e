package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/pkg/fileglob"
)

var infoCmd = &cobra.Command{
	Use:   "info <path or glob>...",
	Short: "Compute digests for files",
	Long: `Compute every enabled digest for each file. Arguments may be literal
paths or glob patterns, including ** for recursive matching.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := fileglob.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no files matched", errChecksFailed)
	}

	ctx, cancel := runContext()
	defer cancel()

	printer := newPrinter(cfg)
	computed, failed, err := hashEach(ctx, newEngine(cfg), cfg.Enabled, files,
		func(path string, digests map[digest.Algorithm]string, elapsed time.Duration) error {
			return printer.Digests(path, digests, elapsed)
		})
	if err != nil {
		return err
	}

	if cfg.Output.GenerateHashFile && len(computed) > 0 {
		if err := writeBatchManifests(cfg, files, computed); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return errChecksFailed
	}
	if failed && !cfg.FileHandling.IgnoreErrors {
		return errChecksFailed
	}
	return nil
}
