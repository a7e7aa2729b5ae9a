package salad

import (
	"fmt"
	"strings"
)

// Primitive document kinds.
const (
	KindNull   = "null"
	KindBool   = "boolean"
	KindInt    = "int"
	KindFloat  = "float"
	KindString = "string"
)

// Shared leaf loaders. Generated schema bindings reference these directly.
var (
	NullLoader   Loader = &primitiveLoader{kind: KindNull}
	BoolLoader   Loader = &primitiveLoader{kind: KindBool}
	IntLoader    Loader = &primitiveLoader{kind: KindInt}
	FloatLoader  Loader = &primitiveLoader{kind: KindFloat}
	StringLoader Loader = &primitiveLoader{kind: KindString}
	AnyLoader    Loader = anyLoader{}
)

type primitiveLoader struct {
	kind string
}

func (l *primitiveLoader) Name() string { return l.kind }

func (l *primitiveLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	ok := false
	switch l.kind {
	case KindNull:
		ok = doc == nil
	case KindBool:
		_, ok = doc.(bool)
	case KindInt:
		_, ok = doc.(int)
	case KindFloat:
		_, ok = doc.(float64)
	case KindString:
		_, ok = doc.(string)
	}
	if !ok {
		return nil, &ValidationException{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("Expected %s but got %s", article(l.kind), kindName(doc)),
		}
	}
	return doc, nil
}

func article(kind string) string {
	if kind == KindNull {
		return "null"
	}
	if strings.HasPrefix(kind, "a") || strings.HasPrefix(kind, "i") {
		return "an " + kind
	}
	return "a " + kind
}

// anyLoader accepts any non-null value unchanged.
type anyLoader struct{}

func (anyLoader) Name() string { return "Any" }

func (anyLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	if doc == nil {
		return nil, &ValidationException{Code: CodeMissingValue, Message: "Expected non-null"}
	}
	return doc, nil
}

// NewEnumLoader builds a loader accepting only the given symbols.
// Structurally identical enums share one instance.
func NewEnumLoader(symbols []string, name string) Loader {
	shape := "enum:" + name + ":" + strings.Join(symbols, "|")
	return intern(shape, func() Loader {
		return &enumLoader{symbols: append([]string(nil), symbols...), name: name}
	})
}

type enumLoader struct {
	symbols []string
	name    string
}

func (l *enumLoader) Name() string { return l.name }

func (l *enumLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	s, ok := doc.(string)
	if ok {
		for _, sym := range l.symbols {
			if s == sym {
				return s, nil
			}
		}
	}
	return nil, &ValidationException{
		Code:    CodeUnknownEnumValue,
		Message: fmt.Sprintf("Expected one of (%s)", strings.Join(l.symbols, ", ")),
	}
}

// NewExpressionLoader builds a loader for opaque expression strings; the
// text is validated to be a string but never evaluated.
func NewExpressionLoader() Loader {
	return intern("expression", func() Loader { return expressionLoader{} })
}

type expressionLoader struct{}

func (expressionLoader) Name() string { return "Expression" }

func (expressionLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	if _, ok := doc.(string); !ok {
		return nil, &ValidationException{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("Expected a string but got %s", kindName(doc)),
		}
	}
	return doc, nil
}
