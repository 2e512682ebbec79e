// Package fileglob expands CLI path arguments that may be literal paths or
// glob patterns, including ** recursion.
package fileglob

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves each argument to regular files. Literal paths pass
// through when they exist; patterns expand in sorted order. The result
// preserves argument order, de-duplicated, and silently drops patterns
// with no matches — callers decide whether zero files is an error.
func Expand(args []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}

	add := func(path string) {
		if seen[path] {
			return
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return
		}
		seen[path] = true
		out = append(out, path)
	}

	for _, arg := range args {
		if !hasMeta(arg) {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func hasMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
