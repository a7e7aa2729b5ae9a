package salad_test

import (
	"testing"

	salad "github.com/saladtools/salad"
)

// ---- identifier scoping ----

func TestExpandURLScopedID(t *testing.T) {
	opts, _ := newTestOptions(nil)

	u, err := salad.ExpandURL("zing", "http://example.com/base", opts, true, false, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://example.com/base#zing" {
		t.Fatalf("got %q", u)
	}

	u, err = salad.ExpandURL("zing", "http://example.com/base#one", opts, true, false, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://example.com/base#one/zing" {
		t.Fatalf("got %q", u)
	}
}

func TestExpandURLScopedRef(t *testing.T) {
	opts, _ := newTestOptions(nil)

	// sibling reference: pop one fragment segment before appending
	u, err := salad.ExpandURL("two", "http://example.com/base#one/alpha", opts, false, false, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://example.com/base#one/two" {
		t.Fatalf("got %q", u)
	}

	u, err = salad.ExpandURL("two", "http://example.com/base#one/alpha", opts, false, false, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://example.com/base#two" {
		t.Fatalf("got %q", u)
	}
}

func TestExpandURLPrefixesAndVocab(t *testing.T) {
	opts := salad.NewLoadingOptions(salad.LoadingOptionsSpec{
		Fetcher:    salad.NewMemoryCachingFetcher(newStubFetcher(nil)),
		Namespaces: map[string]string{"acid": "http://example.com/acid#"},
	})

	u, err := salad.ExpandURL("acid:four", "http://example.com/base", opts, false, false, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://example.com/acid#four" {
		t.Fatalf("got %q", u)
	}

	// known vocabulary terms pass through unexpanded
	u, err = salad.ExpandURL("acid", "http://example.com/base", opts, false, true, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "acid" {
		t.Fatalf("got %q", u)
	}

	// @id/@type are JSON-LD keywords, never resolved
	u, err = salad.ExpandURL("@type", "http://example.com/base", opts, false, true, -1)
	if err != nil || u != "@type" {
		t.Fatalf("got %q, %v", u, err)
	}

	// vocab_term results contract back through the reverse vocabulary
	vopts := salad.NewLoadingOptions(salad.LoadingOptionsSpec{
		Fetcher: salad.NewMemoryCachingFetcher(newStubFetcher(nil)),
		Vocab:   map[string]string{"four": "http://example.com/acid#four"},
	})
	u, err = salad.ExpandURL("http://example.com/acid#four", "", vopts, false, true, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "four" {
		t.Fatalf("got %q", u)
	}
}

func TestExpandURLNotInVocabulary(t *testing.T) {
	opts, _ := newTestOptions(nil)

	_, err := salad.ExpandURL("bogus", "", opts, false, true, -1)
	if err == nil {
		t.Fatalf("expected an error for a term outside the vocabulary")
	}
	ve, ok := salad.AsValidationException(err)
	if !ok || ve.Code != salad.CodeNotInVocabulary {
		t.Fatalf("expected %s, got %v", salad.CodeNotInVocabulary, err)
	}
}

// ---- URI helpers ----

func TestFileURI(t *testing.T) {
	if got := salad.FileURI("/tmp/a b", false); got != "file:///tmp/a%20b" {
		t.Fatalf("got %q", got)
	}
	if got := salad.FileURI("file:///tmp/x", false); got != "file:///tmp/x" {
		t.Fatalf("got %q", got)
	}
	if got := salad.FileURI("/tmp/doc.yaml#frag", true); got != "file:///tmp/doc.yaml#frag" {
		t.Fatalf("got %q", got)
	}
}

func TestShortname(t *testing.T) {
	if got := salad.Shortname("http://example.com/foo#bar/baz"); got != "baz" {
		t.Fatalf("got %q", got)
	}
	if got := salad.Shortname("http://example.com/foo/bar"); got != "bar" {
		t.Fatalf("got %q", got)
	}
}

func TestPrefixURL(t *testing.T) {
	ns := map[string]string{
		"acid": "http://example.com/acid#",
		"edam": "http://edamontology.org/",
	}
	if got := salad.PrefixURL("http://example.com/acid#four", ns); got != "acid:four" {
		t.Fatalf("got %q", got)
	}
	if got := salad.PrefixURL("http://elsewhere.org/x", ns); got != "http://elsewhere.org/x" {
		t.Fatalf("got %q", got)
	}
}

// ---- relative-URI reconstruction ----

func TestSaveRelativeURI(t *testing.T) {
	// same document, scoped fragment
	got := salad.SaveRelativeURI("http://example.com/base#one/two", "http://example.com/base#one", true, 0, true)
	if got != "two" {
		t.Fatalf("got %v", got)
	}

	// reference scope pops base fragment segments
	got = salad.SaveRelativeURI("http://example.com/base#two", "http://example.com/base#one/alpha", false, 2, true)
	if got != "two" {
		t.Fatalf("got %v", got)
	}

	// sibling document becomes a relative path
	got = salad.SaveRelativeURI("http://example.com/other#f", "http://example.com/base", false, 0, true)
	if got != "other#f" {
		t.Fatalf("got %v", got)
	}

	// different host stays absolute
	got = salad.SaveRelativeURI("http://elsewhere.org/x", "http://example.com/base", false, 0, true)
	if got != "http://elsewhere.org/x" {
		t.Fatalf("got %v", got)
	}

	// disabled relative URIs are the identity
	got = salad.SaveRelativeURI("http://example.com/base#one/two", "http://example.com/base#one", true, 0, false)
	if got != "http://example.com/base#one/two" {
		t.Fatalf("got %v", got)
	}

	// lists convert element-wise
	got = salad.SaveRelativeURI(
		[]any{"http://example.com/base#a", "http://example.com/base#b"},
		"http://example.com/base", true, 0, true)
	list, ok := got.([]any)
	if !ok || len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Fatalf("got %v", got)
	}
}
