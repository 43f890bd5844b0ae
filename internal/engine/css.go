package engine

import (
	"context"
	"fmt"
)

// CSSEngine is the built-in engine. Parsing splits a file into raw top-level
// nodes with positions; it does not interpret selectors or declarations
// beyond what balanced-brace scanning requires.
type CSSEngine struct{}

// NewCSS returns the built-in CSS engine.
func NewCSS() *CSSEngine {
	return &CSSEngine{}
}

// Parse implements Engine.
func (e *CSSEngine) Parse(ctx context.Context, src []byte, origin string) (*Stylesheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := &scanner{src: src, origin: origin, line: 1}
	nodes, err := p.scanTopLevel()
	if err != nil {
		return nil, err
	}

	content := make([]byte, len(src))
	copy(content, src)
	return &Stylesheet{
		Nodes:   nodes,
		Sources: map[string][]byte{origin: content},
	}, nil
}

// scanner walks one source file byte-wise, tracking line/column.
type scanner struct {
	src    []byte
	origin string
	pos    int
	line   int
	col    int
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", s.origin, s.line, s.col, fmt.Sprintf(format, args...))
}

func (s *scanner) advance() {
	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	s.pos++
}

func (s *scanner) skipWhitespace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n', '\f':
			s.advance()
		default:
			return
		}
	}
}

func (s *scanner) scanTopLevel() ([]Node, error) {
	var nodes []Node
	for {
		s.skipWhitespace()
		if s.pos >= len(s.src) {
			return nodes, nil
		}

		start := s.pos
		startPos := Position{Line: s.line, Col: s.col}

		if s.hasPrefix("/*") {
			if err := s.scanComment(); err != nil {
				return nil, err
			}
			nodes = append(nodes, Node{
				Kind:   KindComment,
				Text:   string(s.src[start:s.pos]),
				Origin: s.origin,
				Pos:    startPos,
			})
			continue
		}

		kind := KindRule
		if s.src[s.pos] == '@' {
			kind = KindAtRule
		}
		if err := s.scanStatement(); err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{
			Kind:   kind,
			Text:   string(s.src[start:s.pos]),
			Origin: s.origin,
			Pos:    startPos,
		})
	}
}

func (s *scanner) hasPrefix(prefix string) bool {
	return s.pos+len(prefix) <= len(s.src) && string(s.src[s.pos:s.pos+len(prefix)]) == prefix
}

// scanComment consumes a /* ... */ comment including the terminator.
func (s *scanner) scanComment() error {
	s.advance() // '/'
	s.advance() // '*'
	for s.pos < len(s.src) {
		if s.hasPrefix("*/") {
			s.advance()
			s.advance()
			return nil
		}
		s.advance()
	}
	return s.errorf("unterminated comment")
}

// scanString consumes a quoted string including the closing quote. Backslash
// escapes the next byte; an unescaped newline terminates the string with an
// error, matching how CSS treats bad strings.
func (s *scanner) scanString(quote byte) error {
	s.advance() // opening quote
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '\\':
			s.advance()
			if s.pos < len(s.src) {
				s.advance()
			}
		case quote:
			s.advance()
			return nil
		case '\n':
			return s.errorf("unterminated string")
		default:
			s.advance()
		}
	}
	return s.errorf("unterminated string")
}

// scanStatement consumes one rule or at-rule: everything up to and including
// either a top-level ';' (blockless at-rule) or the '}' closing the outermost
// block. Nested blocks, strings and comments are tracked.
func (s *scanner) scanStatement() error {
	depth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '/':
			if s.hasPrefix("/*") {
				if err := s.scanComment(); err != nil {
					return err
				}
				continue
			}
			s.advance()
		case '"', '\'':
			if err := s.scanString(c); err != nil {
				return err
			}
		case '{':
			depth++
			s.advance()
		case '}':
			if depth == 0 {
				return s.errorf("unexpected '}'")
			}
			depth--
			s.advance()
			if depth == 0 {
				return nil
			}
		case ';':
			s.advance()
			if depth == 0 {
				return nil
			}
		default:
			s.advance()
		}
	}
	if depth > 0 {
		return s.errorf("unterminated block")
	}
	return s.errorf("unexpected end of file")
}
