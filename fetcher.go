package salad

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Fetcher is the raw-text retrieval capability threaded through every load.
// Fetching is a blocking call with no retry; callers wanting timeouts or
// cancellation configure them on the implementation (for example via the
// http.Client).
type Fetcher interface {
	// FetchText retrieves the text body of the given URL.
	FetchText(url string) (string, error)
	// URLJoin resolves a possibly relative URL against a base URL.
	URLJoin(base, rel string) string
	// SupportedSchemes lists URL schemes this fetcher can retrieve.
	SupportedSchemes() []string
}

// DefaultFetcher retrieves file:// URLs from the local filesystem and
// http(s):// URLs over the network.
type DefaultFetcher struct {
	// Client is used for http(s) fetches; nil means http.DefaultClient.
	Client *http.Client
}

func (f *DefaultFetcher) FetchText(u string) (string, error) {
	split := urlsplit(u)
	switch split.scheme {
	case "file":
		p, err := uriToPath(u)
		if err != nil {
			return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Error reading %s", u), Cause: err}
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Error reading %s", u), Cause: err}
		}
		return string(data), nil
	case "http", "https":
		client := f.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Get(u)
		if err != nil {
			return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Error fetching %s", u), Cause: err}
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Error fetching %s: %s", u, resp.Status)}
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Error fetching %s", u), Cause: err}
		}
		return string(body), nil
	default:
		return "", &ValidationException{Code: CodeFetchFailure, Message: fmt.Sprintf("Unsupported scheme in url: %s", u)}
	}
}

func (f *DefaultFetcher) URLJoin(base, rel string) string {
	// Blank node identifiers are not URLs.
	if strings.HasPrefix(rel, "_:") {
		return rel
	}
	b, err := url.Parse(base)
	if err != nil {
		return rel
	}
	r, err := url.Parse(rel)
	if err != nil {
		return rel
	}
	return b.ResolveReference(r).String()
}

func (f *DefaultFetcher) SupportedSchemes() []string {
	return []string{"file", "http", "https", "mailto"}
}

// MemoryCachingFetcher wraps another fetcher with a URL-keyed text cache, so
// repeated fetches of the same document hit the network or disk once. The
// cache doubles as the existence-check cache: entries may be preloaded to
// satisfy CheckExists without any fetch, which is how tests supply documents.
type MemoryCachingFetcher struct {
	Inner Fetcher
	Cache map[string]any // string body, or true for known-to-exist
}

// NewMemoryCachingFetcher wraps inner with an empty cache.
func NewMemoryCachingFetcher(inner Fetcher) *MemoryCachingFetcher {
	return &MemoryCachingFetcher{Inner: inner, Cache: map[string]any{}}
}

func (f *MemoryCachingFetcher) FetchText(u string) (string, error) {
	if v, ok := f.Cache[u]; ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	text, err := f.Inner.FetchText(u)
	if err != nil {
		return "", err
	}
	f.Cache[u] = text
	return text, nil
}

func (f *MemoryCachingFetcher) URLJoin(base, rel string) string {
	return f.Inner.URLJoin(base, rel)
}

func (f *MemoryCachingFetcher) SupportedSchemes() []string {
	return f.Inner.SupportedSchemes()
}
