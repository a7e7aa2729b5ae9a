package salad

import (
	"fmt"

	"github.com/saladtools/salad/doctree"
)

// NewArrayLoader builds a loader for sequences of items. Each element is
// loaded as union(array, item) so a nested sequence result is spliced into
// the parent flat instead of nesting. All per-element errors are collected
// before one aggregate is raised; duplicate sibling "id" values are detected
// along the way.
func NewArrayLoader(items Loader) Loader {
	shape := "array<" + items.Name() + ">"
	return intern(shape, func() Loader {
		l := &arrayLoader{items: items}
		l.element = &unionLoader{alternates: []Loader{l, items}}
		return l
	})
}

type arrayLoader struct {
	items   Loader
	element *unionLoader // union(self, items), built once
}

func (l *arrayLoader) Name() string { return "array<" + l.items.Name() + ">" }

func (l *arrayLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	seq, ok := doc.(*doctree.Seq)
	if !ok {
		// synthesized sequences arrive as plain slices
		if items, isSlice := doc.([]any); isSlice {
			seq = doctree.NewSeq(items)
		} else {
			return nil, &ValidationException{
				Code:    CodeTypeMismatch,
				Message: fmt.Sprintf("Expected a list but got %s", kindName(doc)),
			}
		}
	}

	// Only extend the structural path when the node at the current path
	// really is a sequence; synthesized nodes keep their parent's path.
	_, appendIndex := st.node().(*doctree.Seq)

	var result []any
	var errs []*ValidationException
	seen := map[string]bool{}

	for i := 0; i < seq.Len(); i++ {
		item := seq.Index(i)
		elemState := st.clearDocRoot()
		if appendIndex {
			elemState = st.Child(i)
		}
		lf, err := LoadField(item, l.element, baseURI, opts, elemState)
		if err != nil {
			errs = append(errs, asChild(err).WithSourceLine(NewSourceLine(seq, i)))
			continue
		}
		if nested, ok := lf.([]any); ok {
			result = append(result, nested...)
		} else {
			result = append(result, lf)
		}
		if m, ok := item.(*doctree.Map); ok {
			if id, ok := m.Value("id").(string); ok {
				if seen[id] {
					errs = append(errs, &ValidationException{
						Code:    CodeDuplicateIdentifier,
						Message: fmt.Sprintf("Duplicate field %q", id),
						Loc:     NewSourceLine(m, "id"),
					})
				} else {
					seen[id] = true
				}
			}
		}
	}

	if len(errs) > 0 {
		return nil, Aggregate("", nil, errs, "-")
	}
	if result == nil {
		result = []any{}
	}
	return result, nil
}
