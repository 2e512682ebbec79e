package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvannier/gosum/internal/config"
	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/manifest"
	"github.com/nvannier/gosum/pkg/fileglob"
	"github.com/nvannier/gosum/pkg/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate <path or glob>...",
	Short: "Write checksum manifests for files",
	Long: `Compute every enabled digest and write batch manifests (MD5SUMS,
SHA256SUMS, ...) next to the files, one manifest per algorithm per
directory, in GNU or BSD layout per output.hash_file_format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
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

	computed, failed, err := hashEach(ctx, newEngine(cfg), cfg.Enabled, files, nil)
	if err != nil {
		return err
	}
	if len(computed) == 0 {
		return errChecksFailed
	}
	if err := writeBatchManifests(cfg, files, computed); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return errChecksFailed
	}
	if failed && !cfg.FileHandling.IgnoreErrors {
		return errChecksFailed
	}
	return nil
}

// writeBatchManifests groups the computed files by directory and writes one
// batch manifest per enabled algorithm into each, listing files by their
// base name so the manifests verify in place.
func writeBatchManifests(cfg *config.Config, order []string, computed map[string]map[digest.Algorithm]string) error {
	byDir := map[string][]string{}
	var dirs []string
	for _, path := range order {
		if _, ok := computed[path]; !ok {
			continue
		}
		dir := filepath.Dir(path)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], path)
	}

	for _, dir := range dirs {
		for _, algo := range cfg.Enabled {
			entries := make([]manifest.BatchEntry, 0, len(byDir[dir]))
			for _, path := range byDir[dir] {
				entries = append(entries, manifest.BatchEntry{
					Filename: filepath.Base(path),
					Digest:   computed[path][algo],
				})
			}
			written, err := manifest.WriteBatch(dir, cfg.ManifestFormat, algo, entries)
			if err != nil {
				return fmt.Errorf("%w: %v", errChecksFailed, err)
			}
			logger.Info("manifest written", "path", written, "entries", len(entries))
		}
	}
	return nil
}
