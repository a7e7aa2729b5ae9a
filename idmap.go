package salad

import (
	"fmt"
	"sort"

	"github.com/saladtools/salad/doctree"
)

// NewIdMapLoader builds a loader converting the mapping-of-mappings
// shorthand into a sequence: each outer key is injected into its value under
// subjectKey, and bare scalar values are first wrapped under predicateKey.
// Keys are iterated in sorted order for determinism.
func NewIdMapLoader(inner Loader, subjectKey, predicateKey string) Loader {
	shape := fmt.Sprintf("idmap:%s:%s:%s", inner.Name(), subjectKey, predicateKey)
	return intern(shape, func() Loader {
		return &idMapLoader{inner: inner, subject: subjectKey, predicate: predicateKey}
	})
}

type idMapLoader struct {
	inner     Loader
	subject   string
	predicate string
}

func (l *idMapLoader) Name() string { return l.inner.Name() }

func (l *idMapLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	if m, ok := doc.(*doctree.Map); ok {
		keys := append([]string(nil), m.Keys()...)
		sort.Strings(keys)
		entries := make([]any, 0, len(keys))
		for _, k := range keys {
			switch val := m.Value(k).(type) {
			case *doctree.Map:
				entry := val.Copy()
				entry.Set(l.subject, k)
				entries = append(entries, entry)
			default:
				if l.predicate == "" {
					return nil, &ValidationException{
						Code:    CodeMalformedDSL,
						Message: fmt.Sprintf("mapping shorthand under %q needs a predicate for scalar values", k),
						Loc:     NewSourceLine(m, k),
					}
				}
				entry := doctree.NewMap()
				entry.Set(l.predicate, val)
				entry.Set(l.subject, k)
				entries = append(entries, entry)
			}
		}
		doc = entries
	}
	return l.inner.Load(doc, baseURI, opts, st.clearDocRoot())
}
