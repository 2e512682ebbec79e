package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nvannier/gosum/internal/digest"
)

// Format selects the layout for generated manifests.
type Format int

const (
	// FormatGNU writes "<hex> *<filename>".
	FormatGNU Format = iota
	// FormatBSD writes "ALGO (<filename>) = <hex>".
	FormatBSD
)

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "GNU", "gnu":
		return FormatGNU, nil
	case "BSD", "bsd":
		return FormatBSD, nil
	default:
		return FormatGNU, fmt.Errorf("unknown manifest format %q (want GNU or BSD)", s)
	}
}

// WriteEntry emits one manifest line. Output round-trips through Parse:
// the GNU layout carries the binary marker, the BSD layout the algorithm
// name, exactly as the parser consumes them.
func WriteEntry(w io.Writer, format Format, algo digest.Algorithm, hexDigest, filename string) error {
	var err error
	switch format {
	case FormatBSD:
		_, err = fmt.Fprintf(w, "%s (%s) = %s\n", algo, filename, hexDigest)
	default:
		_, err = fmt.Fprintf(w, "%s *%s\n", hexDigest, filename)
	}
	return err
}

// BatchEntry is one line of a generated batch manifest.
type BatchEntry struct {
	Filename string
	Digest   string
}

// WriteBatch writes a conventional batch manifest (MD5SUMS, SHA256SUMS)
// into dir, one line per entry in the given order, and returns its path.
// An existing file is overwritten.
func WriteBatch(dir string, format Format, algo digest.Algorithm, entries []BatchEntry) (string, error) {
	path := filepath.Join(dir, BatchName(algo))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, e := range entries {
		if err := WriteEntry(w, format, algo, e.Digest, e.Filename); err != nil {
			f.Close()
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
