package salad

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// IdxEntry is one memoized load result: the typed value plus the
// LoadingOptions that were in effect when it was loaded.
type IdxEntry struct {
	Value   any
	Options *LoadingOptions
}

// WarnFunc receives non-fatal diagnostics (for example schema fetch
// failures). A nil WarnFunc drops them.
type WarnFunc func(format string, args ...any)

// GraphMerger is the external vocabulary-merge capability: it parses one
// fetched schema document into the set of terms it defines. Failures degrade
// to warnings and never abort a load.
type GraphMerger interface {
	MergeSchema(url, content string) (map[string]bool, error)
}

// LoadingOptions is the resolution context threaded through every load call:
// fetcher, base URI, vocabulary, memoization index and provenance logs.
// Derived instances are built with NewLoadingOptions from a parent; a parent
// is never mutated in place. The memo index and provenance logs are shared
// between a parent and everything derived from it, while vocabulary tables
// are copied when namespaces are overridden so sibling documents never
// observe each other's local prefixes.
//
// A LoadingOptions tree is not safe for concurrent use; parallel loads need
// independent roots.
type LoadingOptions struct {
	Fetcher      Fetcher
	FileURI      string
	BaseURI      string
	Namespaces   map[string]string
	Schemas      []string
	OriginalDoc  any
	AddlMetadata map[string]any

	// Vocab maps terms and prefixes to URIs; RVocab is the reverse table.
	Vocab  map[string]string
	RVocab map[string]string

	// Idx memoizes loaded documents by URL. Shared across derived options.
	Idx map[string]IdxEntry

	Warn   WarnFunc
	Graphs GraphMerger

	shared *sharedState
}

// sharedState travels with the whole derived-options family.
type sharedState struct {
	imports  []string
	includes []string
	cache    map[string]any
	loading  map[string]bool
	terms    map[string]map[string]bool
}

// LoadingOptionsSpec names the fields of a new LoadingOptions; zero fields
// inherit from CopyFrom when given, else take defaults.
type LoadingOptionsSpec struct {
	CopyFrom     *LoadingOptions
	Fetcher      Fetcher
	FileURI      string
	BaseURI      string
	Namespaces   map[string]string
	Schemas      []string
	OriginalDoc  any
	AddlMetadata map[string]any
	Vocab        map[string]string
	RVocab       map[string]string
	Idx          map[string]IdxEntry
	Warn         WarnFunc
	Graphs       GraphMerger
}

// NewLoadingOptions builds a LoadingOptions by functional update from the
// spec, never mutating the parent.
func NewLoadingOptions(spec LoadingOptionsSpec) *LoadingOptions {
	o := &LoadingOptions{OriginalDoc: spec.OriginalDoc}
	cp := spec.CopyFrom

	pick := func(v string, inherit func() string) string {
		if v != "" {
			return v
		}
		if cp != nil {
			return inherit()
		}
		return ""
	}
	o.FileURI = pick(spec.FileURI, func() string { return cp.FileURI })
	o.BaseURI = pick(spec.BaseURI, func() string { return cp.BaseURI })

	if spec.Idx != nil {
		o.Idx = spec.Idx
	} else if cp != nil {
		o.Idx = cp.Idx
	} else {
		o.Idx = map[string]IdxEntry{}
	}

	if spec.Namespaces != nil {
		o.Namespaces = spec.Namespaces
	} else if cp != nil {
		o.Namespaces = cp.Namespaces
	}

	if spec.Schemas != nil {
		o.Schemas = spec.Schemas
	} else if cp != nil {
		o.Schemas = cp.Schemas
	}

	if spec.AddlMetadata != nil {
		o.AddlMetadata = spec.AddlMetadata
	} else if cp != nil {
		o.AddlMetadata = cp.AddlMetadata
	}

	if spec.Fetcher != nil {
		o.Fetcher = spec.Fetcher
	} else if cp != nil {
		o.Fetcher = cp.Fetcher
	} else {
		o.Fetcher = NewMemoryCachingFetcher(&DefaultFetcher{})
	}

	if spec.Warn != nil {
		o.Warn = spec.Warn
	} else if cp != nil {
		o.Warn = cp.Warn
	}
	if spec.Graphs != nil {
		o.Graphs = spec.Graphs
	} else if cp != nil {
		o.Graphs = cp.Graphs
	}

	if cp != nil {
		o.shared = cp.shared
	} else {
		o.shared = &sharedState{loading: map[string]bool{}, terms: map[string]map[string]bool{}}
		if mc, ok := o.Fetcher.(*MemoryCachingFetcher); ok {
			o.shared.cache = mc.Cache
		} else {
			o.shared.cache = map[string]any{}
		}
	}

	switch {
	case spec.Vocab != nil:
		o.Vocab = spec.Vocab
		o.RVocab = spec.RVocab
		if o.RVocab == nil {
			o.RVocab = invert(spec.Vocab)
		}
	case cp != nil:
		o.Vocab = cp.Vocab
		o.RVocab = cp.RVocab
	default:
		o.Vocab = map[string]string{}
		o.RVocab = map[string]string{}
	}

	// Local namespaces extend a copy of the vocabulary, so siblings sharing
	// the parent options never observe these prefixes.
	if spec.Namespaces != nil {
		vocab := make(map[string]string, len(o.Vocab)+len(spec.Namespaces))
		rvocab := make(map[string]string, len(o.RVocab)+len(spec.Namespaces))
		for k, v := range o.Vocab {
			vocab[k] = v
		}
		for k, v := range o.RVocab {
			rvocab[k] = v
		}
		for k, v := range spec.Namespaces {
			vocab[k] = v
			rvocab[v] = k
		}
		o.Vocab = vocab
		o.RVocab = rvocab
	}

	return o
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Imports returns the URLs resolved through $import so far.
func (o *LoadingOptions) Imports() []string {
	return append([]string(nil), o.shared.imports...)
}

// Includes returns the URLs resolved through $include so far.
func (o *LoadingOptions) Includes() []string {
	return append([]string(nil), o.shared.includes...)
}

func (o *LoadingOptions) recordImport(url string)  { o.shared.imports = append(o.shared.imports, url) }
func (o *LoadingOptions) recordInclude(url string) { o.shared.includes = append(o.shared.includes, url) }

func (o *LoadingOptions) warnf(format string, args ...any) {
	if o.Warn != nil {
		o.Warn(format, args...)
	}
}

// CheckExists reports whether a URL resolves to something real. Results are
// cached for the lifetime of the options family.
func (o *LoadingOptions) CheckExists(u string) (bool, error) {
	if _, ok := o.shared.cache[u]; ok {
		return true, nil
	}
	split := urlsplit(u)
	switch split.scheme {
	case "http", "https":
		if _, err := o.Fetcher.FetchText(u); err != nil {
			return false, nil
		}
		o.shared.cache[u] = true
		return true, nil
	case "file":
		p, err := uriToPath(strings.SplitN(u, "#", 2)[0])
		if err != nil {
			return false, nil
		}
		_, err = os.Stat(p)
		return err == nil, nil
	case "mailto":
		return true, nil
	default:
		return false, &ValidationException{
			Message: fmt.Sprintf("Unsupported scheme %q in url: %s", split.scheme, u),
		}
	}
}

// SchemaTerms fetches every entry of Schemas, runs it through the Graphs
// capability and returns the merged term set. Fetch or parse failures warn
// and are skipped; without a GraphMerger the set is empty. The merge is
// cached per distinct schema list.
func (o *LoadingOptions) SchemaTerms() map[string]bool {
	merged := map[string]bool{}
	if len(o.Schemas) == 0 || o.Graphs == nil {
		return merged
	}
	key := strings.Join(o.Schemas, "\x00")
	if cached, ok := o.shared.terms[key]; ok {
		return cached
	}
	urls := append([]string(nil), o.Schemas...)
	sort.Strings(urls)
	for _, s := range urls {
		fetchURL := s
		if o.FileURI != "" {
			fetchURL = o.Fetcher.URLJoin(o.FileURI, s)
		}
		content, err := o.Fetcher.FetchText(fetchURL)
		if err != nil {
			o.warnf("Could not load extension schema %s: %v", fetchURL, err)
			continue
		}
		terms, err := o.Graphs.MergeSchema(fetchURL, content)
		if err != nil {
			o.warnf("Could not load extension schema %s: %v", fetchURL, err)
			continue
		}
		for t := range terms {
			merged[t] = true
		}
	}
	o.shared.terms[key] = merged
	return merged
}
