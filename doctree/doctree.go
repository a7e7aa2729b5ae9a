// Package doctree holds the generic document tree produced by parsing YAML or
// JSON text: scalars (nil/bool/int/float64/string), sequences (*Seq) and
// order-preserving mappings (*Map), each carrying the source position it was
// parsed from. Loaders consume these values and never touch the underlying
// yaml AST.
package doctree

import "fmt"

// Position locates a node in its source document. Line and Column are 1-based;
// a zero Position is unknown.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsKnown reports whether the position carries real line information.
func (p Position) IsKnown() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsKnown() {
		return p.File
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Map is a mapping that preserves key order and remembers, per key, where the
// key appeared in the source. Synthesized maps simply have unknown positions.
type Map struct {
	keys   []string
	values map[string]any
	keyPos map[string]Position
	pos    Position
}

// NewMap returns an empty mapping.
func NewMap() *Map {
	return &Map{values: map[string]any{}, keyPos: map[string]Position{}}
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in document order. The returned slice is shared; do
// not mutate it.
func (m *Map) Keys() []string { return m.keys }

// Get returns the value for key and whether the key is present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Value returns the value for key, or nil when absent.
func (m *Map) Value(key string) any { return m.values[key] }

// Set stores a value, appending the key if it is new.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetWithPos stores a value and records where its key appeared.
func (m *Map) SetWithPos(key string, value any, pos Position) {
	m.Set(key, value)
	m.keyPos[key] = pos
}

// Delete removes a key if present.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	delete(m.keyPos, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// KeyPos returns the recorded position of a key.
func (m *Map) KeyPos(key string) (Position, bool) {
	p, ok := m.keyPos[key]
	return p, ok
}

// Pos returns the position of the mapping itself.
func (m *Map) Pos() Position { return m.pos }

// SetPos records the position of the mapping itself.
func (m *Map) SetPos(p Position) { m.pos = p }

// Copy returns a shallow copy sharing values but not key bookkeeping, so the
// copy can gain or lose keys without disturbing the original. Key positions
// carry over, matching the way rewritten nodes keep their source locations.
func (m *Map) Copy() *Map {
	c := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]any, len(m.values)),
		keyPos: make(map[string]Position, len(m.keyPos)),
		pos:    m.pos,
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	for k, p := range m.keyPos {
		c.keyPos[k] = p
	}
	return c
}

// Seq is a sequence node with optional per-index source positions.
type Seq struct {
	items []any
	pos   Position
	itemP []Position
}

// NewSeq wraps items as a sequence node.
func NewSeq(items []any) *Seq { return &Seq{items: items} }

// Len returns the number of items.
func (s *Seq) Len() int { return len(s.items) }

// Index returns the i-th item.
func (s *Seq) Index(i int) any { return s.items[i] }

// Items returns the backing slice. Callers must not append through it.
func (s *Seq) Items() []any { return s.items }

// Append adds an item with an unknown position.
func (s *Seq) Append(v any) { s.items = append(s.items, v); s.itemP = append(s.itemP, Position{}) }

// AppendWithPos adds an item and records where it appeared.
func (s *Seq) AppendWithPos(v any, pos Position) {
	s.items = append(s.items, v)
	s.itemP = append(s.itemP, pos)
}

// ItemPos returns the recorded position of the i-th item.
func (s *Seq) ItemPos(i int) (Position, bool) {
	if i < 0 || i >= len(s.itemP) {
		return Position{}, false
	}
	p := s.itemP[i]
	return p, p.IsKnown()
}

// Pos returns the position of the sequence itself.
func (s *Seq) Pos() Position { return s.pos }

// SetPos records the position of the sequence itself.
func (s *Seq) SetPos(p Position) { s.pos = p }

// Resolve walks a structural path (string keys and int indexes) from root and
// returns the node it lands on, or nil when the path does not exist.
func Resolve(root any, path []any) any {
	node := root
	for _, step := range path {
		switch n := node.(type) {
		case *Map:
			k, ok := step.(string)
			if !ok {
				return nil
			}
			v, ok := n.Get(k)
			if !ok {
				return nil
			}
			node = v
		case *Seq:
			i, ok := step.(int)
			if !ok || i < 0 || i >= n.Len() {
				return nil
			}
			node = n.Index(i)
		case []any:
			i, ok := step.(int)
			if !ok || i < 0 || i >= len(n) {
				return nil
			}
			node = n[i]
		default:
			return nil
		}
	}
	return node
}
