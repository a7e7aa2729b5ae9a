package salad

import (
	"fmt"
	"sync"

	"github.com/saladtools/salad/doctree"
)

// Loader converts a generic document value into a validated, typed value or
// a structured error. Implementations are immutable schema-compile-time
// values; the loader tree mirrors the schema's type grammar.
type Loader interface {
	// Load validates doc against this loader. baseURI is the URI context for
	// identifier resolution; st threads the document root and structural
	// path used to locate source positions for synthesized nodes.
	Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error)
	// Name is the short type description used in union diagnostics.
	Name() string
}

// State is the per-document context threaded through a load call tree. Root
// is the parsed document tree, Path the structural path from Root to the
// current node, and DocRoot the effective base of the document root (set
// only while loading the root node itself).
type State struct {
	Root    any
	Path    []any
	DocRoot string
}

// Child extends the structural path by one step. DocRoot does not propagate
// past the node it was set for.
func (s State) Child(step any) State {
	p := make([]any, len(s.Path), len(s.Path)+1)
	copy(p, s.Path)
	return State{Root: s.Root, Path: append(p, step)}
}

// clearDocRoot keeps the path but drops the document-root marker.
func (s State) clearDocRoot() State {
	return State{Root: s.Root, Path: s.Path}
}

// node resolves the document node the path points at, or nil.
func (s State) node() any {
	return doctree.Resolve(s.Root, s.Path)
}

// LoadField loads one field value through the given loader, resolving
// $import and $include directives first: $import substitutes the typed
// result of a nested document load, $include substitutes the raw fetched
// text (which then still passes through the loader).
func LoadField(val any, fieldType Loader, baseURI string, opts *LoadingOptions, st State) (any, error) {
	if m, ok := val.(*doctree.Map); ok {
		if imp, ok := m.Get("$import"); ok {
			target, ok := imp.(string)
			if !ok {
				return nil, &ValidationException{
					Code:    CodeTypeMismatch,
					Message: fmt.Sprintf("Expected a string $import target, got %s", kindName(imp)),
					Loc:     NewSourceLine(m, "$import"),
				}
			}
			if opts.FileURI == "" {
				return nil, &ValidationException{Message: "Cannot load $import without fileuri"}
			}
			url := opts.Fetcher.URLJoin(opts.FileURI, target)
			result, _, err := documentLoadByURL(fieldType, url, opts, nil)
			if err != nil {
				return nil, err
			}
			opts.recordImport(url)
			return result, nil
		}
		if inc, ok := m.Get("$include"); ok {
			target, ok := inc.(string)
			if !ok {
				return nil, &ValidationException{
					Code:    CodeTypeMismatch,
					Message: fmt.Sprintf("Expected a string $include target, got %s", kindName(inc)),
					Loc:     NewSourceLine(m, "$include"),
				}
			}
			if opts.FileURI == "" {
				return nil, &ValidationException{Message: "Cannot load $include without fileuri"}
			}
			url := opts.Fetcher.URLJoin(opts.FileURI, target)
			text, err := opts.Fetcher.FetchText(url)
			if err != nil {
				return nil, asChild(err)
			}
			opts.recordInclude(url)
			val = text
		}
	}
	return fieldType.Load(val, baseURI, opts, st)
}

// kindName names a document value's kind for error messages.
func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case int:
		return "an int"
	case float64:
		return "a float"
	case string:
		return "a string"
	case *doctree.Seq, []any:
		return "a list"
	case *doctree.Map:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Structurally identical composite loaders resolve to one shared instance,
// keeping the loader tree bounded by schema complexity.
var (
	loaderMu      sync.Mutex
	loaderByShape = map[string]Loader{}
)

func intern(shape string, build func() Loader) Loader {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	if l, ok := loaderByShape[shape]; ok {
		return l
	}
	l := build()
	loaderByShape[shape] = l
	return l
}
