// Package resolve expands input specifications (glob patterns, file paths,
// directories) into the concrete, filtered, ordered FileSet that one
// invocation compiles. Resolution is a pure filesystem read: no side effects.
package resolve

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	sberrors "git.home.luguber.info/inful/stylebuild/internal/errors"
)

// StyleExtensions is the fixed set of recognized style-file suffixes.
// Directory expansion silently drops anything else (binary assets sitting
// next to style files, editor droppings, and so on).
var StyleExtensions = map[string]struct{}{
	".css":  {},
	".scss": {},
	".sass": {},
	".less": {},
	".styl": {},
}

// FileSet is the resolved input list plus the output target for one
// invocation. Invariants: Output never appears in Inputs, and every entry in
// Inputs carries a recognized style extension. The set is immutable for the
// lifetime of the orchestrator; watch mode reuses it and never re-globs.
type FileSet struct {
	Inputs []string
	Output string
}

// Resolve expands patterns into a FileSet targeting output.
//
// Each pattern is glob-expanded synchronously; a pattern without glob meta
// characters naming an existing path is taken literally. Matched directories
// are walked recursively (files only, all depths). The output path is removed
// by exact string match, then the list is filtered to recognized style
// extensions, preserving traversal order. Duplicate inputs passed in as such
// are kept.
func Resolve(patterns []string, output string) (FileSet, error) {
	if len(patterns) == 0 {
		return FileSet{}, sberrors.InputsNotFound()
	}

	var matched []string
	for _, pattern := range patterns {
		expanded, err := expandPattern(pattern)
		if err != nil {
			return FileSet{}, sberrors.NoMatchingFiles(patterns).WithContext("cause", err.Error())
		}
		matched = append(matched, expanded...)
	}
	if len(matched) == 0 {
		return FileSet{}, sberrors.NoMatchingFiles(patterns)
	}

	var inputs []string
	for _, path := range matched {
		info, err := os.Stat(path)
		if err != nil {
			// Matched a moment ago but gone now; treat like any other
			// non-style entry and drop it.
			continue
		}
		if info.IsDir() {
			files, err := walkFiles(path)
			if err != nil {
				return FileSet{}, sberrors.NoMatchingFiles(patterns).WithContext("dir", path).WithContext("cause", err.Error())
			}
			inputs = append(inputs, files...)
		} else {
			inputs = append(inputs, path)
		}
	}

	filtered := inputs[:0]
	for _, path := range inputs {
		if path == output {
			continue
		}
		if _, ok := StyleExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			continue
		}
		filtered = append(filtered, path)
	}
	if len(filtered) == 0 {
		return FileSet{}, sberrors.NoMatchingFiles(patterns)
	}

	return FileSet{Inputs: filtered, Output: output}, nil
}

// expandPattern glob-expands one pattern. Literal paths (no meta characters)
// that exist are returned as-is even when the glob machinery would not match
// them.
func expandPattern(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 && !containsGlobMeta(pattern) {
		if _, statErr := os.Stat(pattern); statErr == nil {
			matches = []string{pattern}
		}
	}
	return matches, nil
}

// walkFiles enumerates every file beneath dir, depth-first, in the child
// order the walk reports. No filtering happens here; extension filtering is
// applied by the caller over the combined list.
func walkFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func containsGlobMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
