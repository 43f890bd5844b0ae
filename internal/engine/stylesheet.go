package engine

// NodeKind classifies a top-level stylesheet node.
type NodeKind int

const (
	KindRule    NodeKind = iota // selector { declarations }
	KindAtRule                  // @media { ... }, @import ...;
	KindComment                 // /* ... */
)

// Position is a location in an original source file. Line is 1-based, Col is
// a 0-based byte column, matching what the sourcemap builder expects after
// line adjustment.
type Position struct {
	Line int
	Col  int
}

// Node is one top-level statement of a stylesheet. The raw text is kept
// verbatim; serializers decide how to re-emit it. Origin and Pos attribute
// the node to its source file for sourcemap segments.
type Node struct {
	Kind   NodeKind
	Text   string
	Origin string
	Pos    Position
}

// Stylesheet is an ordered sequence of top-level nodes plus the raw content
// of every contributing source file (needed for sourcesContent in emitted
// maps). A freshly parsed Stylesheet covers a single origin; merged roots
// cover many.
type Stylesheet struct {
	Nodes   []Node
	Sources map[string][]byte
}

// Clone returns a deep copy. Node values are copied so the result shares no
// mutable state with the receiver; merged roots must never alias per-file
// units.
func (s *Stylesheet) Clone() *Stylesheet {
	out := &Stylesheet{
		Nodes:   make([]Node, len(s.Nodes)),
		Sources: make(map[string][]byte, len(s.Sources)),
	}
	copy(out.Nodes, s.Nodes)
	for origin, content := range s.Sources {
		c := make([]byte, len(content))
		copy(c, content)
		out.Sources[origin] = c
	}
	return out
}

// Append clones other's nodes onto the receiver, in order, and merges its
// source contents. The argument is left untouched.
func (s *Stylesheet) Append(other *Stylesheet) {
	cloned := other.Clone()
	s.Nodes = append(s.Nodes, cloned.Nodes...)
	if s.Sources == nil {
		s.Sources = make(map[string][]byte, len(cloned.Sources))
	}
	for origin, content := range cloned.Sources {
		if _, exists := s.Sources[origin]; !exists {
			s.Sources[origin] = content
		}
	}
}

// Origins returns the distinct origin paths of the nodes, in first-appearance
// order. Used to register sourcemap sources deterministically.
func (s *Stylesheet) Origins() []string {
	seen := make(map[string]struct{}, len(s.Sources))
	var out []string
	for _, n := range s.Nodes {
		if _, ok := seen[n.Origin]; !ok {
			seen[n.Origin] = struct{}{}
			out = append(out, n.Origin)
		}
	}
	return out
}
