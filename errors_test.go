package salad_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	salad "github.com/saladtools/salad"
)

func TestValidationExceptionRendering(t *testing.T) {
	leaf := &salad.ValidationException{Message: "leaf"}
	mid := salad.NewValidationException("mid", nil, []*salad.ValidationException{leaf})
	top := salad.NewValidationException("top", nil, []*salad.ValidationException{mid})

	want := "top\n  mid\n    leaf"
	if got := top.Error(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if got := top.Summary(); got != "top" {
		t.Fatalf("summary: got %q", got)
	}
}

func TestValidationExceptionSplicesBlankWrappers(t *testing.T) {
	a := &salad.ValidationException{Message: "a"}
	b := &salad.ValidationException{Message: "b"}
	blank := salad.NewValidationException("", nil, []*salad.ValidationException{a, b})
	outer := salad.NewValidationException("outer", nil, []*salad.ValidationException{blank})

	if len(outer.Children) != 2 {
		t.Fatalf("expected splice into 2 children, got %d", len(outer.Children))
	}
	want := "outer\n  a\n  b"
	if got := outer.Error(); got != want {
		t.Fatalf("got:\n%s", got)
	}
}

func TestAggregateBullets(t *testing.T) {
	a := &salad.ValidationException{Message: "a"}
	b := &salad.ValidationException{Message: "b"}
	agg := salad.Aggregate("two problems:", nil, []*salad.ValidationException{a, b}, "-")

	want := "two problems:\n  - a\n  - b"
	if got := agg.Error(); got != want {
		t.Fatalf("got:\n%s", got)
	}

	// a single surviving child gets no bullet
	single := salad.Aggregate("one problem:", nil, []*salad.ValidationException{{Message: "only"}}, "-")
	if got := single.Error(); got != "one problem:\n  only" {
		t.Fatalf("got:\n%s", got)
	}
}

func TestValidationExceptionUnwrap(t *testing.T) {
	sentinel := errors.New("io broke")
	e := &salad.ValidationException{Message: "fetch failed", Cause: sentinel}
	if !errors.Is(e, sentinel) {
		t.Fatalf("expected errors.Is to reach the cause")
	}

	child := &salad.ValidationException{Code: salad.CodeTypeMismatch, Message: "bad type"}
	parent := salad.NewValidationException("parent", nil, []*salad.ValidationException{child})
	if !errors.Is(parent, child) {
		t.Fatalf("expected errors.Is to reach child causes")
	}

	wrapped := fmt.Errorf("loading: %w", parent)
	ve, ok := salad.AsValidationException(wrapped)
	if !ok || ve != parent {
		t.Fatalf("expected extraction through wrapping, got %v", ve)
	}
}

func TestValidationExceptionSourceLines(t *testing.T) {
	tree, err := parseDoc(t, "alpha: 1\nbeta: 2\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e := &salad.ValidationException{Message: "bad value"}
	e.WithSourceLine(salad.NewSourceLine(tree, "beta"))
	if got := e.Error(); !strings.Contains(got, "test.yaml:2:1") {
		t.Fatalf("got %q", got)
	}

	// WithSourceLine never overwrites an existing location
	e.WithSourceLine(salad.NewSourceLine(tree, "alpha"))
	if got := e.Error(); !strings.Contains(got, "test.yaml:2:1") {
		t.Fatalf("location was overwritten: %q", got)
	}
}
