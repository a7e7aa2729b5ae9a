package doctree_test

import (
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/saladtools/salad/doctree"
)

func TestParseScalarTyping(t *testing.T) {
	v, err := doctree.Parse([]byte("a: 1\nb: 1.5\nc: true\nd: null\ne: hi\n"), "doc.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := v.(*doctree.Map)
	if got := m.Value("a"); got != 1 {
		t.Fatalf("int: got %T %v", got, got)
	}
	if got := m.Value("b"); got != 1.5 {
		t.Fatalf("float: got %T %v", got, got)
	}
	if got := m.Value("c"); got != true {
		t.Fatalf("bool: got %v", got)
	}
	if got := m.Value("d"); got != nil {
		t.Fatalf("null: got %v", got)
	}
	if got := m.Value("e"); got != "hi" {
		t.Fatalf("string: got %v", got)
	}
}

func TestParsePreservesKeyOrderAndPositions(t *testing.T) {
	v, err := doctree.Parse([]byte("zeta: 1\nalpha: 2\nmid:\n- x\n- y\n"), "doc.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := v.(*doctree.Map)
	if !reflect.DeepEqual(m.Keys(), []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("got keys %v", m.Keys())
	}

	p, ok := m.KeyPos("alpha")
	if !ok || p.Line != 2 || p.Column != 1 || p.File != "doc.yaml" {
		t.Fatalf("got %v %v", p, ok)
	}

	seq := m.Value("mid").(*doctree.Seq)
	ip, ok := seq.ItemPos(1)
	if !ok || ip.Line != 5 {
		t.Fatalf("got %v %v", ip, ok)
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	v, err := doctree.Parse([]byte(`{"a": [1, 2], "b": "x"}`), "doc.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]any{"a": []any{1, 2}, "b": "x"}
	if !reflect.DeepEqual(doctree.Plain(v), want) {
		t.Fatalf("got %v", doctree.Plain(v))
	}
}

func TestResolveWalksPaths(t *testing.T) {
	v, err := doctree.Parse([]byte("outer:\n  items:\n  - one\n  - two\n"), "doc.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := doctree.Resolve(v, []any{"outer", "items", 1}); got != "two" {
		t.Fatalf("got %v", got)
	}
	if got := doctree.Resolve(v, []any{"outer", "missing"}); got != nil {
		t.Fatalf("got %v", got)
	}
	if got := doctree.Resolve(v, nil); got != v {
		t.Fatalf("empty path should return the root")
	}
}

func TestMapCopyIsIndependent(t *testing.T) {
	m := doctree.NewMap()
	m.Set("a", 1)
	m.Set("b", 2)

	c := m.Copy()
	c.Set("c", 3)
	c.Delete("a")

	if m.Len() != 2 || !m.Has("a") || m.Has("c") {
		t.Fatalf("original disturbed: %v", m.Keys())
	}
	if !reflect.DeepEqual(c.Keys(), []string{"b", "c"}) {
		t.Fatalf("got %v", c.Keys())
	}
}

func TestMarshalJSONKeepsDocumentOrder(t *testing.T) {
	v, err := doctree.Parse([]byte("zeta: 1\nalpha:\n  beta: 2\n"), "doc.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":1,"alpha":{"beta":2}}`
	if string(out) != want {
		t.Fatalf("got %s", out)
	}
}
