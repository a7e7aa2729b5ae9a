package salad_test

import (
	"fmt"
	"strings"
	"testing"

	salad "github.com/saladtools/salad"
	"github.com/saladtools/salad/doctree"
)

func parseDoc(t *testing.T, text string) (any, error) {
	t.Helper()
	return doctree.Parse([]byte(text), "test.yaml")
}

// stubFetcher serves documents from memory, resolving fragment-bearing URLs
// to their document the way an HTTP server would.
type stubFetcher struct {
	docs    map[string]string
	fetches map[string]int
}

func newStubFetcher(docs map[string]string) *stubFetcher {
	return &stubFetcher{docs: docs, fetches: map[string]int{}}
}

func (f *stubFetcher) FetchText(u string) (string, error) {
	base := u
	if i := strings.Index(u, "#"); i >= 0 {
		base = u[:i]
	} else {
		// existence checks carry a fragment; count only document fetches
		f.fetches[base]++
	}
	if text, ok := f.docs[base]; ok {
		return text, nil
	}
	return "", fmt.Errorf("not found: %s", u)
}

func (f *stubFetcher) URLJoin(base, rel string) string {
	return (&salad.DefaultFetcher{}).URLJoin(base, rel)
}

func (f *stubFetcher) SupportedSchemes() []string {
	return []string{"file", "http", "https", "mailto"}
}

func newTestOptions(docs map[string]string) (*salad.LoadingOptions, *stubFetcher) {
	stub := newStubFetcher(docs)
	opts := salad.NewLoadingOptions(salad.LoadingOptionsSpec{
		Fetcher: salad.NewMemoryCachingFetcher(stub),
	})
	return opts, stub
}

// findCode walks an exception tree looking for a code.
func findCode(e *salad.ValidationException, code string) bool {
	if e == nil {
		return false
	}
	if e.Code == code {
		return true
	}
	for _, c := range e.Children {
		if findCode(c, code) {
			return true
		}
	}
	return false
}
