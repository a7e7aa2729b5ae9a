package salad

import (
	"fmt"

	"github.com/saladtools/salad/doctree"
)

// NewURILoader builds a loader that resolves string identifiers against the
// base URI and vocabulary before delegating to inner. scopedRef counts how
// many trailing fragment segments to pop before appending (negative means
// unset). Resolved absolute references are existence-checked through the
// options' fetch capability; a reference that checks false is collected as a
// dangling-reference error.
func NewURILoader(inner Loader, scopedID, vocabTerm bool, scopedRef int) Loader {
	shape := fmt.Sprintf("uri:%s:%t:%t:%d", inner.Name(), scopedID, vocabTerm, scopedRef)
	return intern(shape, func() Loader {
		return &uriLoader{inner: inner, scopedID: scopedID, vocabTerm: vocabTerm, scopedRef: scopedRef}
	})
}

type uriLoader struct {
	inner     Loader
	scopedID  bool
	vocabTerm bool
	scopedRef int
}

func (l *uriLoader) Name() string { return l.inner.Name() }

func (l *uriLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	switch d := doc.(type) {
	case *doctree.Seq:
		expanded := make([]any, 0, d.Len())
		for i := 0; i < d.Len(); i++ {
			item := d.Index(i)
			if s, ok := item.(string); ok {
				u, err := ExpandURL(s, baseURI, opts, l.scopedID, l.vocabTerm, l.scopedRef)
				if err != nil {
					return nil, asChild(err).WithSourceLine(NewSourceLine(d, i))
				}
				expanded = append(expanded, u)
			} else {
				expanded = append(expanded, item)
			}
		}
		doc = expanded
	case []any:
		expanded := make([]any, 0, len(d))
		for _, item := range d {
			if s, ok := item.(string); ok {
				u, err := ExpandURL(s, baseURI, opts, l.scopedID, l.vocabTerm, l.scopedRef)
				if err != nil {
					return nil, err
				}
				expanded = append(expanded, u)
			} else {
				expanded = append(expanded, item)
			}
		}
		doc = expanded
	case string:
		u, err := ExpandURL(d, baseURI, opts, l.scopedID, l.vocabTerm, l.scopedRef)
		if err != nil {
			return nil, err
		}
		doc = u
	}

	if s, ok := doc.(string); ok {
		// CheckExists errors (for example unsupported schemes) are not
		// reference failures; only a definitive "does not exist" counts.
		exists, err := opts.CheckExists(s)
		if err == nil && !exists {
			return nil, Aggregate("", nil, []*ValidationException{{
				Code:    CodeDanglingReference,
				Message: fmt.Sprintf("contains undefined reference to %q", s),
			}}, "")
		}
	}
	return l.inner.Load(doc, baseURI, opts, st.clearDocRoot())
}
