package manifest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nvannier/gosum/internal/digest"
)

// DigestFunc recomputes one digest of a file; the resolver needs it only
// for the rule-3 fallback, where candidacy is decided by content.
type DigestFunc func(ctx context.Context, path string, algo digest.Algorithm) (string, error)

// Resolver maps manifest entries to files in the manifest's own directory.
// It never recurses; recursive scanning is the orchestrator's concern.
type Resolver struct {
	// ComputeDigest backs the rule-3 content search. When nil, rule 3 is
	// skipped and unresolvable entries stay unresolved.
	ComputeDigest DigestFunc
}

// Resolve applies the priority rules, first match wins:
//
//  1. the filename declared on the manifest line, joined with the
//     manifest's directory (case-sensitive);
//  2. the manifest's own name with its algorithm suffix stripped
//     ("report.sha256" looks for "report", then "report.*");
//  3. a content search over every other file in the directory, which may
//     end ambiguous when several files carry the entry's digest.
func (r *Resolver) Resolve(ctx context.Context, entry *Entry, mf *File, listing []string) ResolvedTarget {
	dir := filepath.Dir(mf.Path)
	target := ResolvedTarget{Entry: entry}

	// Rule 1: the line names its target.
	if entry.Filename != "" {
		candidate := filepath.Join(dir, filepath.FromSlash(entry.Filename))
		if containsName(listing, entry.Filename) || fileExists(candidate) {
			target.Path = candidate
			target.Rule = 1
		}
		// A declared filename is authoritative; a miss is a missing
		// target, never a fallback to content search.
		return target
	}

	// Rule 2: derive the target from the manifest's own name.
	if base, ok := TargetFromName(filepath.Base(mf.Path)); ok {
		if containsName(listing, base) {
			target.Path = filepath.Join(dir, base)
			target.Rule = 2
			return target
		}
		if matches := prefixMatches(listing, base, filepath.Base(mf.Path)); len(matches) == 1 {
			target.Path = filepath.Join(dir, matches[0])
			target.Rule = 2
			return target
		} else if len(matches) > 1 {
			target.Rule = 2
			target.Candidates = joinAll(dir, matches)
			return target
		}
	}

	// Rule 3: content search, used only when nothing names the target.
	if r.ComputeDigest == nil || entry.Algorithm == digest.Unspecified {
		return target
	}
	var matches []string
	for _, name := range listing {
		if name == filepath.Base(mf.Path) || IsManifestName(name) {
			continue
		}
		path := filepath.Join(dir, name)
		actual, err := r.ComputeDigest(ctx, path, entry.Algorithm)
		if err != nil {
			continue
		}
		if strings.EqualFold(actual, entry.ExpectedDigest) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	switch len(matches) {
	case 0:
	case 1:
		target.Path = filepath.Join(dir, matches[0])
		target.Rule = 3
	default:
		target.Rule = 3
		target.Candidates = joinAll(dir, matches)
	}
	return target
}

// prefixMatches returns directory entries named base.<something>, excluding
// the manifest itself and other manifests (report.sha256 must not resolve
// to report.md5).
func prefixMatches(listing []string, base, manifestName string) []string {
	var out []string
	for _, name := range listing {
		if name == manifestName || IsManifestName(name) {
			continue
		}
		if strings.HasPrefix(name, base+".") {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func containsName(listing []string, name string) bool {
	for _, n := range listing {
		if n == name {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func joinAll(dir string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out
}
