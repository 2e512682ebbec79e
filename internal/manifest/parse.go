package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nvannier/gosum/internal/digest"
)

// Line grammars, tried in priority order. The BSD form names its algorithm;
// the GNU form is "<hex> [*]<filename>" with the filename free to contain
// spaces; a bare line is nothing but hex.
var (
	bsdLineRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*) ?\((.+)\) ?= ?([0-9A-Fa-f]+)$`)
	gnuLineRe = regexp.MustCompile(`^\\?([0-9A-Fa-f]{16,})[ \t]+(\*?)(\S.*?)\s*$`)
)

// validHexLens are the output lengths of the supported algorithms.
var validHexLens = map[int]bool{32: true, 40: true, 64: true, 96: true, 128: true}

// ParseOptions tunes algorithm inference for lines that do not name one.
type ParseOptions struct {
	// Enabled constrains digest-length inference; inference fails when two
	// enabled algorithms share the digest's length.
	Enabled []digest.Algorithm
}

// Parse turns a manifest's raw text into structured entries, detecting the
// dialect per line. Malformed lines are recorded as warnings and skipped; a
// manifest with zero parseable lines yields an empty entry list, not an
// error, so callers can distinguish "no entries" from "unreadable".
func Parse(raw []byte, path string, opts ParseOptions) *File {
	mf := &File{Path: path}

	nameAlgo, nameHasAlgo := AlgorithmFromName(filepath.Base(path))

	sawBSD, sawGNU, sawBare := false, false, false

	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case bsdLineRe.MatchString(line):
			m := bsdLineRe.FindStringSubmatch(line)
			algo, _ := digest.ParseAlgorithm(m[1])
			entry := Entry{
				Algorithm:      algo,
				ExpectedDigest: strings.ToLower(m[3]),
				Filename:       m[2],
				Line:           lineNo,
			}
			if w, ok := checkLength(entry, lineNo, line); !ok {
				mf.Warnings = append(mf.Warnings, w)
				continue
			}
			sawBSD = true
			mf.Entries = append(mf.Entries, entry)

		case gnuLineRe.MatchString(line):
			m := gnuLineRe.FindStringSubmatch(line)
			entry := Entry{
				ExpectedDigest: strings.ToLower(m[1]),
				Filename:       m[3],
				Binary:         m[2] == "*",
				Line:           lineNo,
			}
			entry.Algorithm = inferAlgorithm(entry.ExpectedDigest, nameAlgo, nameHasAlgo, opts.Enabled)
			if w, ok := checkLength(entry, lineNo, line); !ok {
				mf.Warnings = append(mf.Warnings, w)
				continue
			}
			sawGNU = true
			mf.Entries = append(mf.Entries, entry)

		case digest.IsHex(line):
			if !validHexLens[len(line)] {
				mf.Warnings = append(mf.Warnings, Warning{
					Line:    lineNo,
					Text:    line,
					Message: fmt.Sprintf("hex string of length %d matches no supported algorithm", len(line)),
				})
				continue
			}
			entry := Entry{
				ExpectedDigest: strings.ToLower(line),
				Line:           lineNo,
			}
			entry.Algorithm = inferAlgorithm(entry.ExpectedDigest, nameAlgo, nameHasAlgo, opts.Enabled)
			if w, ok := checkLength(entry, lineNo, line); !ok {
				mf.Warnings = append(mf.Warnings, w)
				continue
			}
			sawBare = true
			mf.Entries = append(mf.Entries, entry)

		default:
			mf.Warnings = append(mf.Warnings, Warning{
				Line:    lineNo,
				Text:    line,
				Message: "line matches no known manifest dialect",
			})
		}
	}

	mf.Dialect = classify(sawBSD, sawGNU, sawBare, nameHasAlgo)
	return mf
}

func inferAlgorithm(hexDigest string, nameAlgo digest.Algorithm, nameHasAlgo bool, enabled []digest.Algorithm) digest.Algorithm {
	if nameHasAlgo {
		return nameAlgo
	}
	if a, ok := digest.FromHexLen(len(hexDigest), enabled); ok {
		return a
	}
	return digest.Unspecified
}

// checkLength enforces the invariant that a known algorithm's digest has
// the right length. Violations are parse errors, not verification failures.
func checkLength(e Entry, lineNo int, line string) (Warning, bool) {
	if e.Algorithm == digest.Unspecified {
		return Warning{}, true
	}
	if len(e.ExpectedDigest) == e.Algorithm.HexLen() {
		return Warning{}, true
	}
	return Warning{
		Line: lineNo,
		Text: line,
		Message: fmt.Sprintf("digest length %d does not match %s (want %d)",
			len(e.ExpectedDigest), e.Algorithm, e.Algorithm.HexLen()),
	}, false
}

// classify picks the file-level dialect. Mixed files are rare; the dominant
// style wins, with bare outranked by anything that names a file.
func classify(sawBSD, sawGNU, sawBare, nameHasAlgo bool) Dialect {
	switch {
	case sawBSD:
		return DialectBSD
	case sawGNU && nameHasAlgo:
		return DialectGNU
	case sawGNU:
		return DialectMulti
	case sawBare:
		return DialectBare
	default:
		return DialectUnknown
	}
}
