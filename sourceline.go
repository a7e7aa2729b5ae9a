package salad

import (
	"fmt"

	"github.com/saladtools/salad/doctree"
)

// SourceLine points at a key or index of a document node, plus the kind of
// value that was expected there. Rendering is lazy: the position is resolved
// from the node's recorded parse positions only when the error is printed,
// so SourceLines may be built for nodes that carry none.
type SourceLine struct {
	Node     any // *doctree.Map or *doctree.Seq; nil when unknown
	Key      any // string key or int index into Node
	Expected string
}

// NewSourceLine locates Key within node.
func NewSourceLine(node, key any) *SourceLine {
	return &SourceLine{Node: node, Key: key}
}

// Position resolves the source position of the referenced key or index.
func (s *SourceLine) Position() (doctree.Position, bool) {
	switch n := s.Node.(type) {
	case *doctree.Map:
		if k, ok := s.Key.(string); ok {
			if p, ok := n.KeyPos(k); ok {
				return p, true
			}
		}
		if p := n.Pos(); p.IsKnown() {
			return p, true
		}
	case *doctree.Seq:
		if i, ok := s.Key.(int); ok {
			if p, ok := n.ItemPos(i); ok {
				return p, true
			}
		}
		if p := n.Pos(); p.IsKnown() {
			return p, true
		}
	}
	return doctree.Position{}, false
}

func (s *SourceLine) String() string {
	if s == nil {
		return ""
	}
	if p, ok := s.Position(); ok {
		return p.String() + ":"
	}
	if s.Key != nil {
		return fmt.Sprintf("field %v:", s.Key)
	}
	return ""
}
