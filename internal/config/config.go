// Package config loads and validates the gosum configuration. Every other
// package receives an already-validated *Config; nothing reads viper (or
// any other ambient state) after Load returns.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/manifest"
	"github.com/nvannier/gosum/pkg/bytesize"
)

// ErrInvalid marks configuration errors; they are fatal before any file is
// touched.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Algorithms   []string           `mapstructure:"algorithms"`
	Performance  PerformanceConfig  `mapstructure:"performance"`
	Output       OutputConfig       `mapstructure:"output"`
	FileHandling FileHandlingConfig `mapstructure:"file_handling"`
	Comparison   ComparisonConfig   `mapstructure:"comparison"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Verification VerificationConfig `mapstructure:"verification"`

	// Derived, populated by Load after validation.
	Enabled        []digest.Algorithm `mapstructure:"-"`
	BufferBytes    int                `mapstructure:"-"`
	ManifestFormat manifest.Format    `mapstructure:"-"`
}

type PerformanceConfig struct {
	BufferSize string `mapstructure:"buffer_size"`
	UseMmap    bool   `mapstructure:"use_mmap"`
	Workers    int    `mapstructure:"workers"`
}

type OutputConfig struct {
	Color            bool   `mapstructure:"color"`
	ProgressBar      bool   `mapstructure:"progress_bar"`
	ShowTime         bool   `mapstructure:"show_time"`
	Format           string `mapstructure:"format"`
	GenerateHashFile bool   `mapstructure:"generate_hash_file"`
	HashFileFormat   string `mapstructure:"hash_file_format"`
}

type FileHandlingConfig struct {
	Recursive    bool     `mapstructure:"recursive"`
	RetryCount   int      `mapstructure:"retry_count"`
	IgnoreErrors bool     `mapstructure:"ignore_errors"`
	Exclude      []string `mapstructure:"exclude"`
}

type ComparisonConfig struct {
	MatchMessage    string `mapstructure:"match_message"`
	MismatchMessage string `mapstructure:"mismatch_message"`
}

type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	// File appends log lines to a file instead of stderr when set.
	File string `mapstructure:"file"`
}

type VerificationConfig struct {
	CrossValidate bool `mapstructure:"cross_validate"`
}

// SetDefaults registers every default on the given viper instance. The
// defaults mirror a plain md5sum/sha1sum/sha256sum workflow.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("algorithms", []string{"MD5", "SHA1", "SHA256"})
	v.SetDefault("performance.buffer_size", "8MB")
	v.SetDefault("performance.use_mmap", false)
	v.SetDefault("performance.workers", 4)
	v.SetDefault("output.color", true)
	v.SetDefault("output.progress_bar", true)
	v.SetDefault("output.show_time", false)
	v.SetDefault("output.format", "default")
	v.SetDefault("output.generate_hash_file", false)
	v.SetDefault("output.hash_file_format", "GNU")
	v.SetDefault("file_handling.recursive", false)
	v.SetDefault("file_handling.retry_count", 3)
	v.SetDefault("file_handling.ignore_errors", false)
	v.SetDefault("file_handling.exclude", []string{})
	v.SetDefault("comparison.match_message", "All files are identical")
	v.SetDefault("comparison.mismatch_message", "Digest mismatch detected")
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("verification.cross_validate", false)
}

// Load unmarshals and validates the configuration from the given viper
// instance. Out-of-range values fail here, before any file is touched.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("%w: no algorithms enabled", ErrInvalid)
	}
	seen := map[digest.Algorithm]bool{}
	for _, name := range c.Algorithms {
		a, ok := digest.ParseAlgorithm(name)
		if !ok {
			return fmt.Errorf("%w: unknown algorithm %q", ErrInvalid, name)
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		c.Enabled = append(c.Enabled, a)
	}

	if c.Performance.Workers < 1 {
		return fmt.Errorf("%w: performance.workers must be at least 1, got %d", ErrInvalid, c.Performance.Workers)
	}

	size, err := bytesize.Parse(c.Performance.BufferSize)
	if err != nil {
		return fmt.Errorf("%w: performance.buffer_size: %v", ErrInvalid, err)
	}
	if size < 1 {
		return fmt.Errorf("%w: performance.buffer_size must be positive", ErrInvalid)
	}
	c.BufferBytes = int(size)

	if c.FileHandling.RetryCount < 0 {
		return fmt.Errorf("%w: file_handling.retry_count must not be negative", ErrInvalid)
	}

	switch c.Output.Format {
	case "default", "json", "csv":
	default:
		return fmt.Errorf("%w: output.format %q (want default, json or csv)", ErrInvalid, c.Output.Format)
	}

	format, err := manifest.ParseFormat(c.Output.HashFileFormat)
	if err != nil {
		return fmt.Errorf("%w: output.hash_file_format: %v", ErrInvalid, err)
	}
	c.ManifestFormat = format

	return nil
}
