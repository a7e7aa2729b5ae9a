package salad

import (
	"fmt"
	"sort"

	"github.com/saladtools/salad/doctree"
)

// Save converts a loaded value back into a document tree. Saveable values
// serialize themselves; sequences and mappings recurse with top forced off.
func Save(val any, top bool, baseURL string, relativeURIs bool) any {
	switch v := val.(type) {
	case nil:
		return nil
	case Saveable:
		return v.Save(top, baseURL, relativeURIs)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, Save(item, false, baseURL, relativeURIs))
		}
		return out
	case *doctree.Seq:
		out := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			out = append(out, Save(item, false, baseURL, relativeURIs))
		}
		return out
	case *doctree.Map:
		out := doctree.NewMap()
		for _, k := range v.Keys() {
			out.Set(k, Save(v.Value(k), false, baseURL, relativeURIs))
		}
		return out
	case bool, int, int64, float64, string:
		return v
	default:
		panic(fmt.Sprintf("cannot save value of type %T", val))
	}
}

// SaveWithMetadata saves val and reattaches the document-level directives
// recorded in opts: $namespaces, $schemas, $base and any additional metadata
// captured at load time. A sequence result is wrapped under $graph so the
// directives have a mapping to live on.
func SaveWithMetadata(val any, top bool, baseURL string, relativeURIs bool, opts *LoadingOptions) any {
	saved := Save(val, top, baseURL, relativeURIs)

	var doc *doctree.Map
	switch sv := saved.(type) {
	case *doctree.Map:
		doc = sv
	case []any:
		doc = doctree.NewMap()
		doc.Set("$graph", sv)
	default:
		return saved
	}

	for _, k := range sortedKeys(opts.AddlMetadata) {
		if !doc.Has(k) {
			doc.Set(k, opts.AddlMetadata[k])
		}
	}
	if len(opts.Namespaces) > 0 && !doc.Has("$namespaces") {
		doc.Set("$namespaces", opts.Namespaces)
	}
	if len(opts.Schemas) > 0 && !doc.Has("$schemas") {
		doc.Set("$schemas", append([]string(nil), opts.Schemas...))
	}
	if opts.BaseURI != "" && !doc.Has("$base") {
		doc.Set("$base", opts.BaseURI)
	}
	return doc
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
