// Package cmd wires the gosum CLI: configuration loading, shared engine
// setup and one file per subcommand.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nvannier/gosum/internal/config"
	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/output"
	"github.com/nvannier/gosum/internal/verify"
	"github.com/nvannier/gosum/pkg/logger"
)

var (
	cfgFile    string
	formatFlag string

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// errChecksFailed signals a non-zero exit after results were already
// printed; it carries no message of its own.
var errChecksFailed = errors.New("checks failed")

var rootCmd = &cobra.Command{
	Use:   "gosum",
	Short: "Compute, compare and verify file digests",
	Long: `gosum computes cryptographic digests of files, compares files against
each other, and verifies checksum manifests (MD5SUMS, SHA256SUMS,
*.sha256, BSD-style digest files) found in a directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./gosum.yaml)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "output format: default, json or csv")
}

// Execute runs the CLI and returns the process exit code: 0 on success,
// 1 when any check failed, 2 on configuration or usage errors.
func Execute(version, commit, date string) int {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if err != errChecksFailed {
		fmt.Fprintln(os.Stderr, "gosum:", err)
	}
	if errors.Is(err, config.ErrInvalid) || errors.Is(err, verify.ErrDirectoryUnlistable) {
		return 2
	}
	return 1
}

// loadConfig builds a fresh viper instance per run, reads gosum.yaml from
// the usual locations and applies flag overrides on top.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("gosum")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(userConfigDir + "/gosum")
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(homeDir)
		}
	}
	v.SetEnvPrefix("GOSUM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading %s: %v", config.ErrInvalid, v.ConfigFileUsed(), err)
		}
		// No config file is fine; defaults cover everything.
	} else {
		logger.Debug("using config file", "path", v.ConfigFileUsed())
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if formatFlag != "" {
		switch formatFlag {
		case "default", "json", "csv":
			cfg.Output.Format = formatFlag
		default:
			return nil, fmt.Errorf("%w: --format %q (want default, json or csv)", config.ErrInvalid, formatFlag)
		}
	}

	if err := logger.Configure(cfg.Logging.Enabled, cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("%w: logging.file: %v", config.ErrInvalid, err)
	}
	if !cfg.Output.Color {
		color.NoColor = true
	}
	return cfg, nil
}

// progressThreshold keeps the bar away from files that hash instantly.
const progressThreshold = 32 * 1024 * 1024

func newEngine(cfg *config.Config) *digest.Engine {
	retry := digest.RetryPolicy{
		MaxRetries:      cfg.FileHandling.RetryCount,
		InitialInterval: digest.DefaultRetryPolicy.InitialInterval,
	}
	engine := digest.NewEngine(cfg.BufferBytes, cfg.Performance.UseMmap, retry)

	if cfg.Output.ProgressBar && cfg.Output.Format == "default" {
		engine.WrapReader = func(r io.Reader, size int64) (io.Reader, func()) {
			if size < progressThreshold {
				return r, func() {}
			}
			bar := pb.New64(size).SetUnits(pb.U_BYTES)
			bar.Output = os.Stderr
			bar.Start()
			return bar.NewProxyReader(r), func() { bar.Finish() }
		}
	}
	return engine
}

func newPrinter(cfg *config.Config) *output.Printer {
	return &output.Printer{
		Out:             os.Stdout,
		Format:          cfg.Output.Format,
		Algorithms:      cfg.Enabled,
		ShowTime:        cfg.Output.ShowTime,
		MatchMessage:    cfg.Comparison.MatchMessage,
		MismatchMessage: cfg.Comparison.MismatchMessage,
	}
}

// runContext cancels on SIGINT/SIGTERM so long runs stop between files and
// report what completed.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// hashEach computes the enabled digests for every file in order. An
// unreadable file is logged and skipped, never aborting the batch; failed
// reports whether any file was skipped. onFile runs after each successful
// computation and its error, unlike a file error, stops the run.
func hashEach(ctx context.Context, engine *digest.Engine, algos []digest.Algorithm, files []string,
	onFile func(path string, digests map[digest.Algorithm]string, elapsed time.Duration) error,
) (computed map[string]map[digest.Algorithm]string, failed bool, err error) {
	computed = map[string]map[digest.Algorithm]string{}
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		digests, cerr := engine.Compute(ctx, path, algos)
		if cerr != nil {
			failed = true
			logger.Error("cannot hash file", "path", path, "err", cerr)
			continue
		}
		computed[path] = digests
		if onFile != nil {
			if err := onFile(path, digests, time.Since(start)); err != nil {
				return computed, failed, err
			}
		}
	}
	return computed, failed, nil
}
