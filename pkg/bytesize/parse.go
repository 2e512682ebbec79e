// Package bytesize parses human-friendly byte sizes like "8MB" or "64KB".
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var multipliers = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// suffixes ordered longest-first so "KB" is not read as "B".
var suffixes = []string{"TB", "GB", "MB", "KB", "B"}

// Parse converts a size string to bytes. Units are 1024-based and
// case-insensitive; a bare number is taken as bytes.
//
//	Parse("8MB")   // 8388608
//	Parse("1.5GB") // 1610612736
//	Parse("4096")  // 4096
func Parse(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	unit := ""
	value := s
	for _, u := range suffixes {
		if strings.HasSuffix(s, u) {
			unit = u
			value = strings.TrimSpace(strings.TrimSuffix(s, u))
			break
		}
	}
	if unit == "" {
		unit = "B"
	}
	if value == "" {
		return 0, fmt.Errorf("invalid size %q: missing numeric value", s)
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", s)
	}

	result := n * float64(multipliers[unit])
	if result > math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return int64(result), nil
}

// Format renders a byte count with its largest whole-ish unit, for logs
// and progress output.
func Format(n int64) string {
	switch {
	case n >= 1<<40:
		return fmt.Sprintf("%.1fTB", float64(n)/float64(1<<40))
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGB", float64(n)/float64(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
