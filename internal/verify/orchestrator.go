package verify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nvannier/gosum/internal/digest"
	"github.com/nvannier/gosum/internal/manifest"
	"github.com/nvannier/gosum/pkg/logger"
)

// ErrDirectoryUnlistable is the only fatal verification error: the root
// directory itself cannot be read. Everything below it degrades to
// per-entry or per-manifest statuses.
var ErrDirectoryUnlistable = errors.New("directory unlistable")

// Options configures one verification run.
type Options struct {
	// Enabled is the algorithm set used for length inference and
	// cross-validation.
	Enabled []digest.Algorithm

	// Workers bounds parallel digest jobs. The unit of parallelism is one
	// file's full multi-algorithm computation.
	Workers int

	// Recursive extends manifest discovery into subdirectories.
	Recursive bool

	// Exclude patterns (doublestar syntax) skip matching candidates.
	Exclude []string

	// CrossValidate additionally computes every enabled algorithm for each
	// resolved target in the same read pass. The extra digests are
	// informational; the verdict compares only the entry's algorithm.
	CrossValidate bool
}

// Orchestrator discovers manifests and verifies their entries.
type Orchestrator struct {
	engine *digest.Engine
	opts   Options
}

func NewOrchestrator(engine *digest.Engine, opts Options) *Orchestrator {
	return &Orchestrator{engine: engine, opts: opts}
}

// VerifyDirectory runs discovery, parsing, resolution, recomputation and
// aggregation for every manifest under dir. Per-entry failures become
// verdicts; only an unlistable root directory is fatal.
func (o *Orchestrator) VerifyDirectory(ctx context.Context, dir string) (*Report, error) {
	candidates, err := o.discover(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{Directory: dir}
	listings := map[string][]string{}

	for _, path := range candidates {
		if ctx.Err() != nil {
			report.Partial = true
			break
		}
		report.Manifests = append(report.Manifests, o.verifyManifest(ctx, path, listings, report))
	}
	if ctx.Err() != nil {
		report.Partial = true
	}
	return report, nil
}

func (o *Orchestrator) verifyManifest(ctx context.Context, path string, listings map[string][]string, report *Report) ManifestResult {
	result := ManifestResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", digest.ErrUnreadableFile, err)
		logger.Warn("manifest unreadable", "path", path, "err", err)
		return result
	}

	mf := manifest.Parse(raw, path, manifest.ParseOptions{Enabled: o.opts.Enabled})
	result.Dialect = mf.Dialect
	result.Warnings = mf.Warnings
	for _, w := range mf.Warnings {
		logger.Debug("manifest line skipped", "path", path, "line", w.Line, "reason", w.Message)
	}
	if len(mf.Entries) == 0 {
		return result
	}

	listing, err := o.listing(filepath.Dir(path), listings)
	if err != nil {
		result.Err = err
		return result
	}

	resolver := &manifest.Resolver{ComputeDigest: o.digestOne}
	targets := make([]manifest.ResolvedTarget, len(mf.Entries))
	for i := range mf.Entries {
		targets[i] = resolver.Resolve(ctx, &mf.Entries[i], mf, listing)
	}

	// Digest recomputation is the only parallel phase; resolution above
	// runs on the coordinating goroutine.
	jobs := make([]func(context.Context) EntryResult, len(targets))
	for i := range targets {
		tgt := targets[i]
		entry := mf.Entries[i]
		jobs[i] = func(jctx context.Context) EntryResult {
			return o.verdict(jctx, path, entry, tgt)
		}
	}
	verdicts, done := runParallel(ctx, o.opts.Workers, jobs)

	for i, ok := range done {
		if !ok {
			report.Partial = true
			continue
		}
		result.Entries = append(result.Entries, verdicts[i])
	}
	return result
}

// verdict recomputes and compares one resolved entry.
func (o *Orchestrator) verdict(ctx context.Context, manifestPath string, entry manifest.Entry, tgt manifest.ResolvedTarget) EntryResult {
	res := EntryResult{
		Manifest:   manifestPath,
		Entry:      entry,
		Target:     tgt.Path,
		Rule:       tgt.Rule,
		Candidates: tgt.Candidates,
		Expected:   entry.ExpectedDigest,
	}

	if tgt.Ambiguous() {
		res.Status = StatusAmbiguous
		return res
	}
	if !tgt.Resolved() {
		if entry.Algorithm == digest.Unspecified {
			res.Status = StatusUnknownAlgorithm
			return res
		}
		res.Status = StatusMissingTarget
		return res
	}
	if entry.Algorithm == digest.Unspecified {
		res.Status = StatusUnknownAlgorithm
		return res
	}

	// Rule 3 already proved the content matches; recomputing would read
	// the file a second time for the same answer.
	if tgt.Rule == 3 {
		res.Status = StatusMatch
		res.Actual = entry.ExpectedDigest
		return res
	}

	algos := []digest.Algorithm{entry.Algorithm}
	if o.opts.CrossValidate {
		algos = unionAlgorithms(entry.Algorithm, o.opts.Enabled)
	}

	digests, err := o.engine.Compute(ctx, tgt.Path, algos)
	if err != nil {
		res.Err = err
		switch {
		case errors.Is(err, digest.ErrUnsupportedAlgorithm):
			res.Status = StatusUnknownAlgorithm
		default:
			res.Status = StatusUnreadable
		}
		return res
	}

	res.Digests = digests
	res.Actual = digests[entry.Algorithm]
	if strings.EqualFold(res.Actual, entry.ExpectedDigest) {
		res.Status = StatusMatch
	} else {
		res.Status = StatusMismatch
	}
	return res
}

func (o *Orchestrator) digestOne(ctx context.Context, path string, algo digest.Algorithm) (string, error) {
	digests, err := o.engine.Compute(ctx, path, []digest.Algorithm{algo})
	if err != nil {
		return "", err
	}
	return digests[algo], nil
}

// discover returns candidate manifest paths in deterministic lexical
// order. Only the root directory's unreadability is fatal.
func (o *Orchestrator) discover(dir string) ([]string, error) {
	if !o.opts.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnlistable, dir, err)
		}
		var out []string
		for _, e := range entries {
			if e.IsDir() || !manifest.IsManifestName(e.Name()) || o.excluded(e.Name()) {
				continue
			}
			out = append(out, filepath.Join(dir, e.Name()))
		}
		return out, nil
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("%w: %s: %v", ErrDirectoryUnlistable, dir, err)
			}
			logger.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			rel = d.Name()
		}
		if !manifest.IsManifestName(d.Name()) || o.excluded(rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range o.opts.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, filepath.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// listing returns the non-directory names in dir, cached per run.
func (o *Orchestrator) listing(dir string, cache map[string][]string) ([]string, error) {
	if names, ok := cache[dir]; ok {
		return names, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDirectoryUnlistable, dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	cache[dir] = names
	return names, nil
}

func unionAlgorithms(first digest.Algorithm, enabled []digest.Algorithm) []digest.Algorithm {
	out := []digest.Algorithm{first}
	for _, a := range enabled {
		if a != first {
			out = append(out, a)
		}
	}
	return out
}
