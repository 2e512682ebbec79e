// Package output renders digest results, comparisons and verification
// reports in the configured format. The engine hands over structured
// values; everything presentational lives here.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/verify"
)

const separator = "--------------------------------------"

// Printer renders results to a single writer.
type Printer struct {
	Out        io.Writer
	Format     string // default, json or csv
	Algorithms []digest.Algorithm
	ShowTime   bool

	MatchMessage    string
	MismatchMessage string
}

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

// fileDigests is the serializable form of one file's digest set.
type fileDigests struct {
	File    string            `json:"file"`
	Digests map[string]string `json:"digests"`
	Error   string            `json:"error,omitempty"`
}

func toSerializable(path string, digests map[digest.Algorithm]string, err error) fileDigests {
	out := fileDigests{File: path, Digests: map[string]string{}}
	for a, d := range digests {
		out.Digests[a.String()] = d
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// Digests prints one file's digest table.
func (p *Printer) Digests(path string, digests map[digest.Algorithm]string, elapsed time.Duration) error {
	switch p.Format {
	case "json":
		return p.writeJSON(toSerializable(path, digests, nil))
	case "csv":
		w := csv.NewWriter(p.Out)
		for _, a := range p.Algorithms {
			if d, ok := digests[a]; ok {
				if err := w.Write([]string{path, a.String(), d}); err != nil {
					return err
				}
			}
		}
		w.Flush()
		return w.Error()
	}

	fmt.Fprintln(p.Out)
	bold.Fprintf(p.Out, "File: %s\n", filepath.Base(path))
	fmt.Fprintln(p.Out, separator)
	for _, a := range p.Algorithms {
		if d, ok := digests[a]; ok {
			fmt.Fprintf(p.Out, "%-10s %s\n", a.String()+":", d)
		}
	}
	fmt.Fprintln(p.Out, separator)
	if p.ShowTime && elapsed > 0 {
		fmt.Fprintf(p.Out, "elapsed: %s\n", elapsed.Round(time.Millisecond))
	}
	return nil
}

// Comparison prints per-file digests followed by one summary line: either
// the match message or the mismatch message plus every differing filename,
// in input order.
func (p *Printer) Comparison(cmp *verify.Comparison) error {
	if p.Format == "json" {
		type comparisonJSON struct {
			Files     []fileDigests `json:"files"`
			Different []string      `json:"different"`
			AllMatch  bool          `json:"all_match"`
			Partial   bool          `json:"partial,omitempty"`
		}
		out := comparisonJSON{Different: names(cmp.Different), AllMatch: cmp.AllMatch(), Partial: cmp.Partial}
		for _, f := range cmp.Files {
			out.Files = append(out.Files, toSerializable(f.Path, f.Digests, f.Err))
		}
		return p.writeJSON(out)
	}

	if p.Format == "csv" {
		w := csv.NewWriter(p.Out)
		for _, f := range cmp.Files {
			for _, a := range p.Algorithms {
				if d, ok := f.Digests[a]; ok {
					if err := w.Write([]string{f.Path, a.String(), d}); err != nil {
						return err
					}
				}
			}
		}
		w.Flush()
		return w.Error()
	}

	for _, f := range cmp.Files {
		if f.Err != nil {
			red.Fprintf(p.Out, "\n%s: %v\n", f.Path, f.Err)
			continue
		}
		if err := p.Digests(f.Path, f.Digests, 0); err != nil {
			return err
		}
	}

	fmt.Fprintln(p.Out)
	if cmp.AllMatch() {
		green.Fprintln(p.Out, p.MatchMessage)
		return nil
	}
	red.Fprintln(p.Out, p.MismatchMessage)
	if len(cmp.Different) > 0 {
		ref := filepath.Base(cmp.Files[0].Path)
		fmt.Fprintf(p.Out, "files differing from %q:", ref)
		for _, d := range cmp.Different {
			fmt.Fprintf(p.Out, " %s", filepath.Base(d))
		}
		fmt.Fprintln(p.Out)
	}
	if cmp.Partial {
		yellow.Fprintln(p.Out, "run was cancelled before all files were read")
	}
	return nil
}

// Report prints every manifest's verdicts and a final summary.
func (p *Printer) Report(report *verify.Report) error {
	if p.Format == "json" {
		return p.writeJSON(reportJSON(report))
	}
	if p.Format == "csv" {
		return p.reportCSV(report)
	}

	for _, m := range report.Manifests {
		fmt.Fprintln(p.Out)
		bold.Fprintf(p.Out, "Manifest: %s (%s)\n", m.Path, m.Dialect)
		if m.Err != nil {
			red.Fprintf(p.Out, "  error: %v\n", m.Err)
			continue
		}
		if len(m.Entries) == 0 {
			yellow.Fprintln(p.Out, "  no entries found")
		}
		for _, e := range m.Entries {
			p.printVerdict(e)
		}
		for _, w := range m.Warnings {
			yellow.Fprintf(p.Out, "  line %d skipped: %s\n", w.Line, w.Message)
		}
	}

	c := report.Counts()
	fmt.Fprintln(p.Out)
	if report.Ok() {
		green.Fprintf(p.Out, "all %d entries verified\n", c.Match)
	} else {
		red.Fprintf(p.Out, "%d ok, %d mismatched, %d missing, %d unreadable, %d unknown algorithm, %d ambiguous, %d lines skipped\n",
			c.Match, c.Mismatch, c.Missing, c.Unreadable, c.Unknown, c.Ambiguous, c.Warnings)
	}
	if report.Partial {
		yellow.Fprintln(p.Out, "run was cancelled; results above are partial")
	}
	return nil
}

func (p *Printer) printVerdict(e verify.EntryResult) {
	name := e.Entry.Filename
	if name == "" && e.Target != "" {
		name = filepath.Base(e.Target)
	}
	if name == "" {
		name = "(unnamed)"
	}

	switch e.Status {
	case verify.StatusMatch:
		green.Fprintf(p.Out, "  OK    %s (%s)\n", name, e.Entry.Algorithm)
	case verify.StatusMismatch:
		red.Fprintf(p.Out, "  FAIL  %s (%s)\n", name, e.Entry.Algorithm)
		fmt.Fprintf(p.Out, "        expected %s\n", e.Expected)
		fmt.Fprintf(p.Out, "        actual   %s\n", e.Actual)
	case verify.StatusAmbiguous:
		yellow.Fprintf(p.Out, "  ??    digest matches %d files:", len(e.Candidates))
		for _, c := range e.Candidates {
			fmt.Fprintf(p.Out, " %s", filepath.Base(c))
		}
		fmt.Fprintln(p.Out)
	default:
		yellow.Fprintf(p.Out, "  %-5s %s (%s)\n", statusTag(e.Status), name, e.Entry.Algorithm)
	}
}

func statusTag(s verify.Status) string {
	switch s {
	case verify.StatusMissingTarget:
		return "GONE"
	case verify.StatusUnreadable:
		return "ERR"
	case verify.StatusUnknownAlgorithm:
		return "ALGO?"
	default:
		return "?"
	}
}

type entryJSON struct {
	Manifest   string   `json:"manifest"`
	File       string   `json:"file,omitempty"`
	Algorithm  string   `json:"algorithm"`
	Status     string   `json:"status"`
	Expected   string   `json:"expected,omitempty"`
	Actual     string   `json:"actual,omitempty"`
	Rule       int      `json:"resolution_rule,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

func reportJSON(report *verify.Report) any {
	type manifestJSON struct {
		Path     string      `json:"path"`
		Dialect  string      `json:"dialect"`
		Error    string      `json:"error,omitempty"`
		Entries  []entryJSON `json:"entries"`
		Warnings int         `json:"lines_skipped,omitempty"`
	}
	type rootJSON struct {
		Directory string         `json:"directory"`
		Manifests []manifestJSON `json:"manifests"`
		Ok        bool           `json:"ok"`
		Partial   bool           `json:"partial,omitempty"`
	}

	root := rootJSON{Directory: report.Directory, Ok: report.Ok(), Partial: report.Partial}
	for _, m := range report.Manifests {
		mj := manifestJSON{Path: m.Path, Dialect: m.Dialect.String(), Warnings: len(m.Warnings)}
		if m.Err != nil {
			mj.Error = m.Err.Error()
		}
		for _, e := range m.Entries {
			mj.Entries = append(mj.Entries, entryJSON{
				Manifest:   e.Manifest,
				File:       e.Target,
				Algorithm:  e.Entry.Algorithm.String(),
				Status:     e.Status.String(),
				Expected:   e.Expected,
				Actual:     e.Actual,
				Rule:       e.Rule,
				Candidates: e.Candidates,
			})
		}
		root.Manifests = append(root.Manifests, mj)
	}
	return root
}

func (p *Printer) reportCSV(report *verify.Report) error {
	w := csv.NewWriter(p.Out)
	for _, m := range report.Manifests {
		for _, e := range m.Entries {
			row := []string{m.Path, e.Target, e.Entry.Algorithm.String(), e.Status.String(), e.Expected, e.Actual}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func (p *Printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func names(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
