package doctree

import (
	"bytes"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// MarshalJSON renders the mapping in document key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := gojson.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders the sequence items.
func (s *Seq) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(s.items)
}

// MarshalYAML renders the mapping as a yaml.v3 node preserving key order.
func (m *Map) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range m.keys {
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(m.values[k]); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &kn, &vn)
	}
	return n, nil
}

// MarshalYAML renders the sequence items.
func (s *Seq) MarshalYAML() (any, error) { return s.items, nil }

// Plain converts a document tree into plain Go values (map[string]any and
// []any), losing order and positions. Useful for order-insensitive
// comparisons.
func Plain(v any) any {
	switch n := v.(type) {
	case *Map:
		out := make(map[string]any, n.Len())
		for _, k := range n.Keys() {
			out[k] = Plain(n.Value(k))
		}
		return out
	case *Seq:
		out := make([]any, 0, n.Len())
		for _, it := range n.Items() {
			out = append(out, Plain(it))
		}
		return out
	case []any:
		out := make([]any, 0, len(n))
		for _, it := range n {
			out = append(out, Plain(it))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, it := range n {
			out[k] = Plain(it)
		}
		return out
	default:
		return v
	}
}
