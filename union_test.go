package salad_test

import (
	"strings"
	"testing"

	salad "github.com/saladtools/salad"
)

func TestUnionLoaderFirstMatchWins(t *testing.T) {
	opts, _ := newTestOptions(nil)
	l := salad.NewUnionLoader(salad.NullLoader, salad.IntLoader, salad.StringLoader)

	if v, err := l.Load(nil, "", opts, salad.State{}); err != nil || v != nil {
		t.Fatalf("got %v, %v", v, err)
	}
	if v, err := l.Load(5, "", opts, salad.State{}); err != nil || v != 5 {
		t.Fatalf("got %v, %v", v, err)
	}
	if v, err := l.Load("five", "", opts, salad.State{}); err != nil || v != "five" {
		t.Fatalf("got %v, %v", v, err)
	}
	if _, err := l.Load(true, "", opts, salad.State{}); err == nil {
		t.Fatalf("expected an error for a boolean")
	}
}

func TestUnionLoaderClassDiscriminantNarrowsErrors(t *testing.T) {
	opts, _ := newTestOptions(nil)
	sprocket := &salad.RecordType{
		Name:     "Sprocket",
		HasClass: true,
		Fields:   []salad.Field{{Name: "teeth", Loader: salad.IntLoader}},
	}
	flange := &salad.RecordType{
		Name:     "Flange",
		HasClass: true,
		Fields:   []salad.Field{{Name: "bore", Loader: salad.IntLoader}},
	}
	l := salad.NewUnionLoader(salad.NewRecordLoader(sprocket), salad.NewRecordLoader(flange))

	tree, err := parseDoc(t, "class: Sprocket\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = l.Load(tree, "http://example.com/doc", opts, salad.State{Root: tree})
	if err == nil {
		t.Fatalf("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "is not valid because") {
		t.Fatalf("missing object header in:\n%s", msg)
	}
	if !strings.Contains(msg, "missing required field `teeth`") {
		t.Fatalf("missing field cause in:\n%s", msg)
	}
	// the non-matching alternative is not reported
	if strings.Contains(msg, "Flange") {
		t.Fatalf("unexpected Flange diagnostics in:\n%s", msg)
	}
}

func TestUnionLoaderUndefinedClassReference(t *testing.T) {
	opts, _ := newTestOptions(nil)
	sprocket := &salad.RecordType{
		Name:     "Sprocket",
		HasClass: true,
		Fields:   []salad.Field{{Name: "teeth", Loader: salad.IntLoader}},
	}
	l := salad.NewUnionLoader(salad.NewRecordLoader(sprocket))

	tree, err := parseDoc(t, "class: Bogus\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = l.Load(tree, "http://example.com/doc", opts, salad.State{Root: tree})
	ve, ok := salad.AsValidationException(err)
	if !ok || !findCode(ve, salad.CodeDanglingReference) {
		t.Fatalf("expected a dangling class reference, got %v", err)
	}
	if !strings.Contains(err.Error(), "undefined reference") {
		t.Fatalf("got:\n%s", err.Error())
	}
}
