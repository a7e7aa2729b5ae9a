package doctree

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Parse converts YAML or JSON text into a document tree, recording the source
// position of every mapping key and sequence item. file is stored in each
// position for rendering; pass the document URI.
//
// Only the first document of a multi-document stream is returned, matching
// the single-root wire shape.
func Parse(text []byte, file string) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	if root.Kind == 0 {
		return nil, nil
	}
	return fromNode(&root, file)
}

func fromNode(n *yaml.Node, file string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0], file)
	case yaml.AliasNode:
		return fromNode(n.Alias, file)
	case yaml.MappingNode:
		m := NewMap()
		m.SetPos(Position{File: file, Line: n.Line, Column: n.Column})
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			key, err := scalarKey(kn)
			if err != nil {
				return nil, err
			}
			v, err := fromNode(vn, file)
			if err != nil {
				return nil, err
			}
			m.SetWithPos(key, v, Position{File: file, Line: kn.Line, Column: kn.Column})
		}
		return m, nil
	case yaml.SequenceNode:
		s := &Seq{}
		s.SetPos(Position{File: file, Line: n.Line, Column: n.Column})
		for _, c := range n.Content {
			v, err := fromNode(c, file)
			if err != nil {
				return nil, err
			}
			s.AppendWithPos(v, Position{File: file, Line: c.Line, Column: c.Column})
		}
		return s, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	default:
		return nil, fmt.Errorf("parse %s: unsupported node kind %d at line %d", file, n.Kind, n.Line)
	}
}

func scalarKey(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("non-scalar mapping key at line %d", n.Line)
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

func scalarValue(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("bad bool %q at line %d", n.Value, n.Line)
		}
		return b, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int %q at line %d", n.Value, n.Line)
		}
		return int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %q at line %d", n.Value, n.Line)
		}
		return f, nil
	default:
		// !!str, !!timestamp and anything else stay as text.
		return n.Value, nil
	}
}
