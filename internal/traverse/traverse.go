// Package traverse discovers the candidate files for a run. It centralizes
// all path expansion and glob filtering so behavior stays consistent across
// platforms. No renaming or mutation is allowed here.
package traverse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Options controls how input paths expand into candidates.
type Options struct {
	Recursive bool
	Include   []string
	Exclude   []string

	// ExcludePaths are exact paths dropped unconditionally. The run's own
	// files (log, report, lock) go here so the tool never renames them.
	ExcludePaths []string
}

// Expand resolves files, directories, and glob patterns into a flat,
// deterministic candidate list. Directories expand to their files (the full
// walk under Recursive, direct children otherwise), patterns expand even
// when the shell did not, and paths that no longer exist are dropped
// silently. Directory listings come back sorted, so the same tree always
// yields the same order.
func Expand(fsys afero.Fs, paths []string, opts Options) ([]string, error) {
	var out []string
	for _, p := range paths {
		if strings.ContainsAny(p, "*?[") {
			matches, err := afero.Glob(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", p, err)
			}
			sort.Strings(matches)
			sub, err := Expand(fsys, matches, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}

		fi, err := fsys.Stat(p)
		if err != nil {
			continue
		}

		if fi.IsDir() {
			files, err := expandDir(fsys, p, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, files...)
			continue
		}

		if fi.Mode().IsRegular() && keep(p, opts) {
			out = append(out, filepath.Clean(p))
		}
	}
	return out, nil
}

func expandDir(fsys afero.Fs, dir string, opts Options) ([]string, error) {
	if opts.Recursive {
		var out []string
		err := afero.Walk(fsys, dir, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil // unreadable subtree; keep walking the rest
			}
			if !fi.Mode().IsRegular() {
				return nil
			}
			if keep(path, opts) {
				out = append(out, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", dir, err)
		}
		return out, nil
	}

	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var out []string
	for _, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}
		p := filepath.Join(dir, fi.Name())
		if keep(p, opts) {
			out = append(out, p)
		}
	}
	return out, nil
}

// keep applies the filters: exact excluded paths first, then exclude
// patterns, then include patterns (an empty include list matches all).
func keep(path string, opts Options) bool {
	clean := filepath.Clean(path)
	for _, ex := range opts.ExcludePaths {
		if ex != "" && filepath.Clean(ex) == clean {
			return false
		}
	}
	if len(opts.Exclude) > 0 && matchesAny(path, opts.Exclude) {
		return false
	}
	if len(opts.Include) > 0 && !matchesAny(path, opts.Include) {
		return false
	}
	return true
}

// matchesAny tests patterns against both the basename and the full path, so
// users can filter either way without platform surprises.
func matchesAny(path string, patterns []string) bool {
	name := filepath.Base(path)
	for _, pat := range patterns {
		if ok, err := filepath.Match(pat, name); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(pat, path); err == nil && ok {
			return true
		}
	}
	return false
}
