// Package manifest parses checksum manifest files in their common dialects
// and resolves each entry to a target file on disk.
package manifest

import (
	"github.com/nvannier/gosum/internal/digest"
)

// Dialect is the text layout of a manifest file.
type Dialect int

const (
	DialectUnknown Dialect = iota
	// DialectGNU is the md5sum/sha*sum layout: "<hex> [*]<filename>".
	DialectGNU
	// DialectBSD is the OpenSSL dgst layout: "ALGO (<filename>) = <hex>".
	DialectBSD
	// DialectBare is a file whose lines are nothing but hex digests.
	DialectBare
	// DialectMulti is GNU line grammar inside a batch file whose own name
	// carries no algorithm hint (CHECKSUMS and friends).
	DialectMulti
)

func (d Dialect) String() string {
	switch d {
	case DialectGNU:
		return "gnu"
	case DialectBSD:
		return "bsd"
	case DialectBare:
		return "bare"
	case DialectMulti:
		return "multi-entry"
	default:
		return "unknown"
	}
}

// Entry is one parsed manifest line.
type Entry struct {
	// Algorithm may be digest.Unspecified when neither the line nor the
	// manifest name identifies it and the digest length is ambiguous.
	Algorithm digest.Algorithm

	// ExpectedDigest is lowercase hex.
	ExpectedDigest string

	// Filename is the target named on the line; empty for bare-hash lines.
	Filename string

	// Binary records the GNU "*" marker. Files are always hashed as raw
	// bytes; the flag is kept for round-trip fidelity.
	Binary bool

	// Line is the 1-based manifest line number, for diagnostics.
	Line int
}

// Warning records a line that could not be parsed under any dialect, or a
// digest whose length contradicts its algorithm. Warnings never abort a run.
type Warning struct {
	Line    int
	Text    string
	Message string
}

// File is a parsed manifest.
type File struct {
	Path     string
	Dialect  Dialect
	Entries  []Entry
	Warnings []Warning
}

// ResolvedTarget is the outcome of resolving one entry.
type ResolvedTarget struct {
	Entry *Entry

	// Path is empty when resolution failed.
	Path string

	// Rule is the priority rule (1, 2 or 3) that produced the match.
	Rule int

	// Candidates holds every digest-matching file when rule 3 finds more
	// than one; such a resolution is ambiguous, not a match.
	Candidates []string
}

// Ambiguous reports whether rule 3 matched multiple files.
func (r ResolvedTarget) Ambiguous() bool { return len(r.Candidates) > 1 }

// Resolved reports whether the entry maps to exactly one file.
func (r ResolvedTarget) Resolved() bool { return r.Path != "" }
