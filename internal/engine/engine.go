// Package engine defines the style-processing boundary of the pipeline and
// provides the built-in CSS engine. The orchestrator only depends on the
// Engine interface; transformation internals stay behind it.
package engine

import "context"

// SourcemapOptions controls sourcemap emission during Process.
type SourcemapOptions struct {
	// Enabled turns mapping collection on.
	Enabled bool
	// Inline embeds the map as a base64 data URI comment instead of
	// producing a separate artifact.
	Inline bool
	// File is the map target path. In inline mode no file is written, but
	// the artifact name recorded inside the map is still derived from it.
	File string
}

// Options are the processing options for one orchestrator instance. The
// per-file source origin is deliberately NOT part of this struct: it is an
// explicit argument to Parse, so concurrent parse calls can never corrupt
// each other's attribution.
type Options struct {
	Minify    bool
	Sourcemap SourcemapOptions
}

// Result is the outcome of a successful Process call. Map is non-nil only
// when an external sourcemap was produced.
type Result struct {
	CSS []byte
	Map []byte
}

// Engine parses individual style files into syntax units and processes a
// merged unit into compiled output.
type Engine interface {
	// Parse turns one file's text into a Stylesheet. origin is the path the
	// file was read from and is retained on every node for sourcemap
	// attribution.
	Parse(ctx context.Context, src []byte, origin string) (*Stylesheet, error)

	// Process serializes the merged root into compiled CSS, optionally
	// minified and with sourcemap output per opts.
	Process(ctx context.Context, root *Stylesheet, opts Options) (*Result, error)
}
