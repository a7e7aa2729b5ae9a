package salad

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/saladtools/salad/doctree"
)

var typeDSLPattern = regexp.MustCompile(`^([^[?]+)(\[\])?(\?)?$`)

// NewTypeDSLLoader builds a loader for the compact type grammar: "name",
// "name[]", "name?" and "name[]?" expand to the name, {type: array, items:
// name} and ["null", ...] forms before delegating to inner. Lists of
// declarations are flattened and deduplicated.
func NewTypeDSLLoader(inner Loader, refScope int) Loader {
	shape := fmt.Sprintf("typedsl:%s:%d", inner.Name(), refScope)
	return intern(shape, func() Loader {
		return &typeDSLLoader{inner: inner, refScope: refScope}
	})
}

type typeDSLLoader struct {
	inner    Loader
	refScope int
}

func (l *typeDSLLoader) Name() string { return l.inner.Name() }

func (l *typeDSLLoader) resolve(doc, baseURI string, opts *LoadingOptions) (any, error) {
	m := typeDSLPattern.FindStringSubmatch(doc)
	if m == nil {
		return doc, nil
	}
	first, err := ExpandURL(m[1], baseURI, opts, false, true, l.refScope)
	if err != nil {
		return nil, err
	}
	var expanded any = first
	if m[2] != "" {
		arr := doctree.NewMap()
		arr.Set("type", "array")
		arr.Set("items", first)
		expanded = arr
	}
	if m[3] != "" {
		opt := doctree.NewSeq(nil)
		opt.Append("null")
		opt.Append(expanded)
		expanded = opt
	}
	return expanded, nil
}

func (l *typeDSLLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	switch d := doc.(type) {
	case *doctree.Seq:
		out := doctree.NewSeq(nil)
		for i := 0; i < d.Len(); i++ {
			item := d.Index(i)
			if s, ok := item.(string); ok {
				resolved, err := l.resolve(s, baseURI, opts)
				if err != nil {
					return nil, err
				}
				if rs, ok := resolved.(*doctree.Seq); ok {
					for _, ri := range rs.Items() {
						appendUnique(out, ri)
					}
				} else {
					appendUnique(out, resolved)
				}
			} else {
				out.Append(item)
			}
		}
		doc = out
	case string:
		resolved, err := l.resolve(d, baseURI, opts)
		if err != nil {
			return nil, err
		}
		doc = resolved
	}
	return l.inner.Load(doc, baseURI, opts, st.clearDocRoot())
}

func appendUnique(seq *doctree.Seq, v any) {
	for _, existing := range seq.Items() {
		if reflect.DeepEqual(doctree.Plain(existing), doctree.Plain(v)) {
			return
		}
	}
	seq.Append(v)
}

// NewSecondaryFilesDSLLoader builds a loader normalizing secondaryFiles
// shorthand: a string with a trailing "?" or a {pattern, required} mapping
// becomes a canonical {pattern, required-or-null} entry. Entries missing
// "pattern" or carrying unknown keys are rejected.
func NewSecondaryFilesDSLLoader(inner Loader) Loader {
	shape := "secondaryfilesdsl:" + inner.Name()
	return intern(shape, func() Loader { return &secondaryDSLLoader{inner: inner} })
}

type secondaryDSLLoader struct {
	inner Loader
}

func (l *secondaryDSLLoader) Name() string { return l.inner.Name() }

func (l *secondaryDSLLoader) entryFromString(s string) *doctree.Map {
	e := doctree.NewMap()
	if strings.HasSuffix(s, "?") {
		e.Set("pattern", strings.TrimSuffix(s, "?"))
		e.Set("required", false)
	} else {
		e.Set("pattern", s)
	}
	return e
}

func (l *secondaryDSLLoader) entryFromMap(m *doctree.Map) (*doctree.Map, error) {
	rest := m.Copy()
	e := doctree.NewMap()
	pattern, ok := rest.Get("pattern")
	if !ok {
		return nil, &ValidationException{
			Code:    CodeMalformedDSL,
			Message: "Missing pattern in secondaryFiles specification entry",
			Loc:     firstKeyLine(m),
		}
	}
	rest.Delete("pattern")
	e.Set("pattern", pattern)
	required, _ := rest.Get("required")
	rest.Delete("required")
	e.Set("required", required)
	if rest.Len() > 0 {
		return nil, &ValidationException{
			Code:    CodeMalformedDSL,
			Message: fmt.Sprintf("Unallowed values in secondaryFiles specification entry: %s", strings.Join(rest.Keys(), ", ")),
			Loc:     firstKeyLine(m),
		}
	}
	return e, nil
}

func (l *secondaryDSLLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	var entries []any
	switch d := doc.(type) {
	case *doctree.Seq:
		for i := 0; i < d.Len(); i++ {
			switch item := d.Index(i).(type) {
			case string:
				entries = append(entries, l.entryFromString(item))
			case *doctree.Map:
				e, err := l.entryFromMap(item)
				if err != nil {
					return nil, asChild(err).WithSourceLine(NewSourceLine(d, i))
				}
				entries = append(entries, e)
			default:
				return nil, &ValidationException{
					Code:    CodeTypeMismatch,
					Message: "Expected a string or sequence of (strings or mappings)",
					Loc:     NewSourceLine(d, i),
				}
			}
		}
	case *doctree.Map:
		e, err := l.entryFromMap(d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	case string:
		entries = append(entries, l.entryFromString(d))
	default:
		return nil, &ValidationException{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("Expected str or sequence of str but got %s", kindName(doc)),
		}
	}
	return l.inner.Load(entries, baseURI, opts, st.clearDocRoot())
}
