package verify

import (
	"context"
	"errors"

	"github.com/nvannier/gosum/internal/digest"
)

// ErrNotEnoughFiles is returned when compare mode receives fewer than two
// existing files after glob expansion.
var ErrNotEnoughFiles = errors.New("compare mode needs at least two files")

// FileDigests pairs a file with its computed digest set.
type FileDigests struct {
	Path    string
	Digests map[digest.Algorithm]string
	Err     error
}

// Comparison is the outcome of comparing every input against the first.
type Comparison struct {
	// Files holds per-file digests in input order; Files[0] is the
	// reference.
	Files []FileDigests

	// Different lists, in input order, every file whose digest set differs
	// from the reference in at least one algorithm.
	Different []string

	// Partial is set when cancellation skipped some files.
	Partial bool
}

// AllMatch reports whether every readable file agreed with the reference.
func (c *Comparison) AllMatch() bool {
	return !c.Partial && len(c.Different) == 0 && noErrors(c.Files)
}

func noErrors(files []FileDigests) bool {
	for _, f := range files {
		if f.Err != nil {
			return false
		}
	}
	return true
}

// Compare computes the enabled digests for every file on the worker pool
// and flags each file differing from the first. The reference is the first
// listed file — input argument order, never filesystem order.
func (o *Orchestrator) Compare(ctx context.Context, files []string) (*Comparison, error) {
	if len(files) < 2 {
		return nil, ErrNotEnoughFiles
	}

	jobs := make([]func(context.Context) FileDigests, len(files))
	for i, path := range files {
		path := path
		jobs[i] = func(jctx context.Context) FileDigests {
			digests, err := o.engine.Compute(jctx, path, o.opts.Enabled)
			return FileDigests{Path: path, Digests: digests, Err: err}
		}
	}
	results, done := runParallel(ctx, o.opts.Workers, jobs)

	cmp := &Comparison{}
	for i, ok := range done {
		if !ok {
			cmp.Partial = true
			continue
		}
		cmp.Files = append(cmp.Files, results[i])
	}
	if len(cmp.Files) == 0 {
		return cmp, nil
	}

	ref := cmp.Files[0]
	for _, f := range cmp.Files[1:] {
		if f.Err != nil || ref.Err != nil {
			continue
		}
		if differs(ref.Digests, f.Digests) {
			cmp.Different = append(cmp.Different, f.Path)
		}
	}
	return cmp, nil
}

func differs(ref, other map[digest.Algorithm]string) bool {
	for algo, want := range ref {
		if other[algo] != want {
			return true
		}
	}
	return false
}
