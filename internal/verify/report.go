// Package verify drives manifest discovery, digest recomputation and
// verdict aggregation for a single run.
package verify

import (
	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/manifest"
)

// Status classifies the outcome for one manifest entry.
type Status int

const (
	StatusMatch Status = iota
	StatusMismatch
	StatusMissingTarget
	StatusUnreadable
	StatusUnknownAlgorithm
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusMismatch:
		return "mismatch"
	case StatusMissingTarget:
		return "missing target"
	case StatusUnreadable:
		return "unreadable"
	case StatusUnknownAlgorithm:
		return "unknown algorithm"
	case StatusAmbiguous:
		return "ambiguous resolution"
	default:
		return "unknown"
	}
}

// EntryResult is the verdict for one manifest entry.
type EntryResult struct {
	Manifest string
	Entry    manifest.Entry
	Status   Status

	// Target is the resolved path; empty for missing targets.
	Target string
	// Rule is the resolution rule that found the target (1, 2 or 3).
	Rule int
	// Candidates lists every content match for ambiguous resolutions.
	Candidates []string

	Expected string
	Actual   string

	// Digests holds every algorithm computed for the target, which is more
	// than the entry's own when cross-validation is on.
	Digests map[digest.Algorithm]string

	Err error
}

// ManifestResult groups one manifest's verdicts in entry order.
type ManifestResult struct {
	Path     string
	Dialect  manifest.Dialect
	Entries  []EntryResult
	Warnings []manifest.Warning

	// Err is set when the manifest file itself could not be read.
	Err error
}

// Report aggregates every manifest's verdicts for one run. It is built
// once, in discovery order, and never mutated afterwards.
type Report struct {
	Directory string
	Manifests []ManifestResult

	// Partial is true when cancellation cut the run short; verdicts that
	// completed before the cut are still present.
	Partial bool
}

// Counts tallies verdicts by status.
type Counts struct {
	Match      int
	Mismatch   int
	Missing    int
	Unreadable int
	Unknown    int
	Ambiguous  int
	Warnings   int
}

// Counts walks the report once and tallies verdicts and parse warnings.
func (r *Report) Counts() Counts {
	var c Counts
	for _, m := range r.Manifests {
		c.Warnings += len(m.Warnings)
		for _, e := range m.Entries {
			switch e.Status {
			case StatusMatch:
				c.Match++
			case StatusMismatch:
				c.Mismatch++
			case StatusMissingTarget:
				c.Missing++
			case StatusUnreadable:
				c.Unreadable++
			case StatusUnknownAlgorithm:
				c.Unknown++
			case StatusAmbiguous:
				c.Ambiguous++
			}
		}
	}
	return c
}

// Ok reports whether every entry matched and no manifest failed to read.
func (r *Report) Ok() bool {
	if r.Partial {
		return false
	}
	for _, m := range r.Manifests {
		if m.Err != nil {
			return false
		}
		for _, e := range m.Entries {
			if e.Status != StatusMatch {
				return false
			}
		}
	}
	return true
}
