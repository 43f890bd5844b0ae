// Package sourcemap builds Source Map revision 3 documents for compiled
// stylesheets. It covers the producer side only: position segments are
// collected during serialization and encoded as base64 VLQ mappings.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// mapV3 is the on-disk shape of a revision 3 source map.
type mapV3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

type segment struct {
	genLine int
	genCol  int
	source  int
	srcLine int
	srcCol  int
}

// Builder accumulates mapping segments and renders the final map document.
// All positions are zero-based. Segments must be added in generated-output
// order (line, then column).
type Builder struct {
	file     string
	sources  []string
	contents []string
	indexOf  map[string]int
	segments []segment
}

// NewBuilder creates a Builder for the given generated file name.
func NewBuilder(generatedFile string) *Builder {
	return &Builder{
		file:    generatedFile,
		indexOf: make(map[string]int),
	}
}

// AddSource registers an original source and its content, returning the
// source index to use in AddMapping. Registering the same path twice returns
// the existing index.
func (b *Builder) AddSource(path string, content []byte) int {
	if idx, ok := b.indexOf[path]; ok {
		return idx
	}
	idx := len(b.sources)
	b.indexOf[path] = idx
	b.sources = append(b.sources, filepath.ToSlash(path))
	b.contents = append(b.contents, string(content))
	return idx
}

// AddMapping records that generated position (genLine, genCol) originates at
// (srcLine, srcCol) in the source with index source.
func (b *Builder) AddMapping(genLine, genCol, source, srcLine, srcCol int) {
	b.segments = append(b.segments, segment{genLine, genCol, source, srcLine, srcCol})
}

// Encode renders the map as JSON.
func (b *Builder) Encode() ([]byte, error) {
	m := mapV3{
		Version:        3,
		File:           filepath.ToSlash(b.file),
		Sources:        b.sources,
		SourcesContent: b.contents,
		Names:          []string{},
		Mappings:       b.encodeMappings(),
	}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode source map: %w", err)
	}
	return data, nil
}

// encodeMappings produces the semicolon/comma separated VLQ mapping string.
// Columns reset per generated line; source index and original positions are
// relative to the previous segment across the whole document.
func (b *Builder) encodeMappings() string {
	var sb strings.Builder
	line := 0
	prevGenCol := 0
	prevSource := 0
	prevSrcLine := 0
	prevSrcCol := 0
	firstOnLine := true

	for _, s := range b.segments {
		for line < s.genLine {
			sb.WriteByte(';')
			line++
			prevGenCol = 0
			firstOnLine = true
		}
		if !firstOnLine {
			sb.WriteByte(',')
		}
		writeVLQ(&sb, s.genCol-prevGenCol)
		writeVLQ(&sb, s.source-prevSource)
		writeVLQ(&sb, s.srcLine-prevSrcLine)
		writeVLQ(&sb, s.srcCol-prevSrcCol)
		prevGenCol = s.genCol
		prevSource = s.source
		prevSrcLine = s.srcLine
		prevSrcCol = s.srcCol
		firstOnLine = false
	}
	return sb.String()
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// writeVLQ appends the base64 VLQ encoding of v. The least significant bit of
// the first digit carries the sign; each digit holds 5 value bits plus a
// continuation bit.
func writeVLQ(sb *strings.Builder, v int) {
	u := uint32(v) << 1
	if v < 0 {
		u = uint32(-v)<<1 | 1
	}
	for {
		digit := u & 0x1f
		u >>= 5
		if u > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Chars[digit])
		if u == 0 {
			return
		}
	}
}

// InlineComment returns the trailing stylesheet comment embedding the map as
// a base64 data URI.
func InlineComment(mapJSON []byte) string {
	return "/*# sourceMappingURL=data:application/json;base64," +
		base64.StdEncoding.EncodeToString(mapJSON) + " */"
}

// FileComment returns the trailing stylesheet comment referencing an external
// map file. Only the base name is referenced; the map sits next to the
// compiled artifact.
func FileComment(mapPath string) string {
	return "/*# sourceMappingURL=" + filepath.Base(mapPath) + " */"
}
