package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"

	"git.home.luguber.info/inful/stylebuild/internal/sourcemap"
)

// Process implements Engine. When a sourcemap is requested the compact
// serializer handles minification so recorded positions stay truthful; the
// tdewolff minifier is only used on the no-map path where positions do not
// matter.
func (e *CSSEngine) Process(ctx context.Context, root *Stylesheet, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !opts.Sourcemap.Enabled {
		css := serializePlain(root)
		if opts.Minify {
			minified, err := minifyCSS(css)
			if err != nil {
				return nil, err
			}
			return &Result{CSS: minified}, nil
		}
		return &Result{CSS: css}, nil
	}

	artifact := strings.TrimSuffix(opts.Sourcemap.File, ".map")
	builder := sourcemap.NewBuilder(artifact)
	srcIndex := make(map[string]int, len(root.Sources))
	for _, origin := range root.Origins() {
		srcIndex[origin] = builder.AddSource(origin, root.Sources[origin])
	}

	body := serializeMapped(root, opts.Minify, builder, srcIndex)

	mapJSON, err := builder.Encode()
	if err != nil {
		return nil, err
	}

	if opts.Sourcemap.Inline {
		css := body + "\n" + sourcemap.InlineComment(mapJSON) + "\n"
		return &Result{CSS: []byte(css)}, nil
	}
	css := body + "\n" + sourcemap.FileComment(opts.Sourcemap.File) + "\n"
	return &Result{CSS: []byte(css), Map: mapJSON}, nil
}

func minifyCSS(src []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	out, err := m.Bytes("text/css", src)
	if err != nil {
		return nil, fmt.Errorf("minify: %w", err)
	}
	return out, nil
}

// serializePlain emits node texts in order, one per line group, with a
// trailing newline. Rule order is exactly node order; that is the whole
// merge contract.
func serializePlain(root *Stylesheet) []byte {
	var sb strings.Builder
	for i, n := range root.Nodes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(n.Text)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// serializeMapped emits nodes while recording one mapping segment per node at
// the node's first generated byte. In minify mode comments are dropped and
// node text is compacted; either way generated positions are computed from
// what is actually written.
func serializeMapped(root *Stylesheet, compact bool, builder *sourcemap.Builder, srcIndex map[string]int) string {
	var sb strings.Builder
	genLine, genCol := 0, 0

	write := func(text string) {
		sb.WriteString(text)
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				genLine++
				genCol = 0
			} else {
				genCol++
			}
		}
	}

	first := true
	for _, n := range root.Nodes {
		text := n.Text
		if compact {
			if n.Kind == KindComment {
				continue
			}
			text = compactNode(text)
		}
		if !first {
			if compact {
				write("")
			} else {
				write("\n")
			}
		}
		builder.AddMapping(genLine, genCol, srcIndex[n.Origin], n.Pos.Line-1, n.Pos.Col)
		write(text)
		if !compact {
			write("\n")
		}
		first = false
	}
	return sb.String()
}

// compactNode collapses whitespace in a single node's text and removes the
// spaces that CSS grammar allows around structural punctuation. Quoted
// strings pass through untouched.
func compactNode(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	pendingSpace := false
	var quote byte

	flushSpace := func(next byte) {
		if !pendingSpace {
			return
		}
		pendingSpace = false
		if sb.Len() == 0 {
			return
		}
		prev := sb.String()[sb.Len()-1]
		if strings.IndexByte("{};:,>", prev) >= 0 || strings.IndexByte("{};:,>", next) >= 0 {
			return
		}
		sb.WriteByte(' ')
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				sb.WriteByte(text[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			flushSpace(c)
			quote = c
			sb.WriteByte(c)
		case ' ', '\t', '\r', '\n', '\f':
			pendingSpace = true
		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					i = len(text)
					continue
				}
				i += 2 + end + 1
				pendingSpace = true
				continue
			}
			flushSpace(c)
			sb.WriteByte(c)
		default:
			flushSpace(c)
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
