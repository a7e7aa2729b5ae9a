package salad

import (
	"fmt"
	"strings"

	"github.com/saladtools/salad/doctree"
)

// NewUnionLoader builds a first-success union over the given alternatives.
// Declaration order is significant: it decides both which alternative wins
// and how failures are reported. Structurally identical unions share one
// instance.
func NewUnionLoader(alternates ...Loader) Loader {
	names := make([]string, 0, len(alternates))
	for _, a := range alternates {
		names = append(names, a.Name())
	}
	shape := "union:" + strings.Join(names, " | ")
	return intern(shape, func() Loader {
		return &unionLoader{alternates: append([]Loader(nil), alternates...)}
	})
}

type unionLoader struct {
	alternates []Loader
}

func (l *unionLoader) Name() string {
	names := make([]string, 0, len(l.alternates))
	for _, a := range l.alternates {
		names = append(names, a.Name())
	}
	return strings.Join(names, " | ")
}

// Load tries each alternative in order and returns the first success. On
// total failure every rejected alternative's cause is retained: if the
// document's class discriminant names exactly one alternative, only that
// alternative's error is reported; otherwise one error per non-bare-primitive
// alternative, annotated with the document's id when it has one.
func (l *unionLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	var errs []*ValidationException

	for _, alt := range l.alternates {
		v, err := alt.Load(doc, baseURI, opts, st)
		if err == nil {
			return v, nil
		}
		cause := asChild(err)

		m, isMap := doc.(*doctree.Map)
		if !isMap {
			switch alt.(type) {
			case *primitiveLoader, *enumLoader:
				// avoid a "tried int but" line for every scalar alternative;
				// keep the cause itself
				errs = append(errs, NewValidationException("", nil, []*ValidationException{cause}))
			default:
				errs = append(errs, Aggregate(fmt.Sprintf("tried %s but", alt.Name()), nil, []*ValidationException{cause}, ""))
			}
			continue
		}

		if m.Has("class") {
			if cls, _ := m.Value("class").(string); cls == alt.Name() {
				errs = append(errs, Aggregate(
					fmt.Sprintf("Object %q is not valid because:", lastSegment(baseURI)),
					firstKeyLine(m), []*ValidationException{cause}, ""))
			}
			continue
		}

		if strings.Contains(alt.Name(), "array") {
			continue
		}

		if id, ok := m.Value("id").(string); ok {
			idNode := st.node()
			if idNode == nil {
				idNode = any(m)
			}
			errs = append(errs, Aggregate(
				fmt.Sprintf("checking object %s#%s", lastSegment(baseURI), id),
				NewSourceLine(idNode, "id"), []*ValidationException{cause}, ""))
			continue
		}

		if _, bare := alt.(*primitiveLoader); !bare {
			errs = append(errs, Aggregate(fmt.Sprintf("tried %s but", alt.Name()), nil, []*ValidationException{cause}, ""))
		}
	}

	if m, ok := doc.(*doctree.Map); ok {
		if cls, isStr := m.Value("class").(string); isStr && !l.hasAlternate(cls) {
			errs = append(errs, &ValidationException{
				Code:    CodeDanglingReference,
				Message: fmt.Sprintf("Field `class` contains undefined reference to %s/%s", baseURI, cls),
				Loc:     NewSourceLine(m, "class"),
			})
		}
	}

	return nil, Aggregate("", nil, errs, "-")
}

func (l *unionLoader) hasAlternate(name string) bool {
	for _, a := range l.alternates {
		if strings.Contains(a.Name(), name) {
			return true
		}
	}
	return false
}

func lastSegment(uri string) string {
	parts := strings.Split(uri, "/")
	return parts[len(parts)-1]
}

// firstKeyLine points at the first key of a mapping, the closest thing a
// whole-object error has to a location.
func firstKeyLine(m *doctree.Map) *SourceLine {
	if keys := m.Keys(); len(keys) > 0 {
		return NewSourceLine(m, keys[0])
	}
	return nil
}
