package salad_test

import (
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	salad "github.com/saladtools/salad"
	"github.com/saladtools/salad/doctree"
)

func requireSameYAML(t *testing.T, want, got any) {
	t.Helper()
	wantBytes, err := yaml.Marshal(want)
	require.NoError(t, err)
	gotBytes, err := yaml.Marshal(got)
	require.NoError(t, err)
	if string(wantBytes) != string(gotBytes) {
		t.Fatalf("round trip mismatch:\n%s",
			difflib.PPDiff(strings.Split(string(wantBytes), "\n"), strings.Split(string(gotBytes), "\n")))
	}
}

func TestRoundTripGraphDocument(t *testing.T) {
	opts, _ := newTestOptions(map[string]string{
		"http://example.com/parts.yaml": `$namespaces:
  acid: http://example.com/acid#
$graph:
- class: Part
  id: p1
  name: bolt
  acid:grade: 8
- class: Part
  id: p2
  name: nut
`,
	})
	loader := salad.NewArrayLoader(salad.NewRecordLoader(partType()))

	v, resolved, err := salad.LoadDocumentWithMetadata(loader, "http://example.com/parts.yaml", "", opts)
	require.NoError(t, err)

	saved := salad.SaveWithMetadata(v, true, "http://example.com/parts.yaml", true, resolved)

	requireSameYAML(t, map[string]any{
		"$namespaces": map[string]any{
			"acid": "http://example.com/acid#",
		},
		"$graph": []any{
			map[string]any{"acid:grade": 8, "class": "Part", "id": "p1", "name": "bolt"},
			map[string]any{"class": "Part", "id": "p2", "name": "nut"},
		},
	}, doctree.Plain(saved))
}

func TestRoundTripAbsoluteURIs(t *testing.T) {
	opts, _ := newTestOptions(map[string]string{
		"http://example.com/single.yaml": "class: Part\nid: p1\nname: bolt\n",
	})
	loader := salad.NewRecordLoader(partType())

	v, resolved, err := salad.LoadDocumentWithMetadata(loader, "http://example.com/single.yaml", "", opts)
	require.NoError(t, err)

	saved := salad.SaveWithMetadata(v, false, "http://example.com/single.yaml", false, resolved)
	m := saved.(*doctree.Map)
	require.Equal(t, "http://example.com/single.yaml#p1", m.Value("id"))
	require.False(t, m.Has("$base"))

	// with relative URIs the identifier folds back to its written form
	rel := salad.Save(v, false, "http://example.com/single.yaml", true).(*doctree.Map)
	require.Equal(t, "p1", rel.Value("id"))
}

func TestRoundTripBaseOnlyWhenDeclared(t *testing.T) {
	opts, _ := newTestOptions(map[string]string{
		"http://example.com/plain.yaml": "class: Part\nid: p1\nname: bolt\n",
		"http://example.com/based.yaml": "$base: http://example.com/registry\nclass: Part\nid: p1\nname: bolt\n",
		"http://example.com/registry":   "{}",
	})
	loader := salad.NewRecordLoader(partType())

	v, resolved, err := salad.LoadDocumentWithMetadata(loader, "http://example.com/plain.yaml", "", opts)
	require.NoError(t, err)
	require.Equal(t, "", resolved.BaseURI)
	saved := salad.SaveWithMetadata(v, true, "http://example.com/plain.yaml", true, resolved).(*doctree.Map)
	require.False(t, saved.Has("$base"))

	v, resolved, err = salad.LoadDocumentWithMetadata(loader, "http://example.com/based.yaml", "", opts)
	require.NoError(t, err)
	require.Equal(t, "http://example.com/registry", resolved.BaseURI)
	saved = salad.SaveWithMetadata(v, true, "http://example.com/registry", true, resolved).(*doctree.Map)
	require.Equal(t, "http://example.com/registry", saved.Value("$base"))
}
