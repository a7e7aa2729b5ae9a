package salad

import (
	"fmt"
	"os"
	"strings"

	"github.com/saladtools/salad/doctree"
)

// LoadDocument loads doc (a parsed tree, a URL string, or a sequence)
// through the given root loader. A nil opts starts a fresh options family; an
// empty baseURI defaults to the working directory as a file URI.
func LoadDocument(loader Loader, doc any, baseURI string, opts *LoadingOptions) (any, error) {
	result, _, err := LoadDocumentWithMetadata(loader, doc, baseURI, opts)
	return result, err
}

// LoadDocumentWithMetadata is LoadDocument returning the derived
// LoadingOptions alongside the value, so callers can reach document-level
// metadata ($namespaces, $schemas, the fields named in metadataFields) and
// the provenance logs. metadataFields names top-level keys to capture into
// AddlMetadata.
func LoadDocumentWithMetadata(loader Loader, doc any, baseURI string, opts *LoadingOptions, metadataFields ...string) (any, *LoadingOptions, error) {
	if baseURI == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, nil, err
		}
		baseURI = FileURI(wd, false) + "/"
	}
	if opts == nil {
		opts = NewLoadingOptions(LoadingOptionsSpec{})
	}
	return documentLoad(loader, doc, baseURI, opts, metadataFields)
}

// LoadDocumentByString parses text as YAML (or JSON) with positions recorded
// against uri, then loads it with uri as both the base and file URI.
func LoadDocumentByString(loader Loader, text []byte, uri string, opts *LoadingOptions) (any, error) {
	tree, err := doctree.Parse(text, uri)
	if err != nil {
		return nil, &ValidationException{Code: CodeFetchFailure, Message: err.Error(), Cause: err}
	}
	opts = NewLoadingOptions(LoadingOptionsSpec{CopyFrom: opts, FileURI: uri})
	result, _, err := documentLoad(loader, tree, uri, opts, nil)
	return result, err
}

func documentLoad(loader Loader, doc any, baseURI string, opts *LoadingOptions, metadataFields []string) (any, *LoadingOptions, error) {
	switch d := doc.(type) {
	case string:
		return documentLoadByURL(loader, opts.Fetcher.URLJoin(baseURI, d), opts, metadataFields)

	case *doctree.Map:
		addlMetadata := map[string]any{}
		for _, mf := range metadataFields {
			if v, ok := d.Get(mf); ok {
				addlMetadata[mf] = doctree.Plain(v)
			}
		}
		docURI := baseURI
		declaredBase := ""
		if b, ok := d.Get("$base"); ok {
			if s, ok := b.(string); ok {
				baseURI = s
				declaredBase = s
			}
		}
		var namespaces map[string]string
		if ns, ok := d.Get("$namespaces"); ok {
			var err error
			namespaces, err = stringMap(ns)
			if err != nil {
				return nil, nil, &ValidationException{
					Code:    CodeTypeMismatch,
					Message: fmt.Sprintf("$namespaces must map prefixes to strings: %v", err),
					Loc:     NewSourceLine(d, "$namespaces"),
				}
			}
		}
		var schemas []string
		if sc, ok := d.Get("$schemas"); ok {
			var err error
			schemas, err = stringList(sc)
			if err != nil {
				return nil, nil, &ValidationException{
					Code:    CodeTypeMismatch,
					Message: fmt.Sprintf("$schemas must be a list of strings: %v", err),
					Loc:     NewSourceLine(d, "$schemas"),
				}
			}
		}
		opts = NewLoadingOptions(LoadingOptionsSpec{
			CopyFrom:     opts,
			Namespaces:   namespaces,
			Schemas:      schemas,
			BaseURI:      declaredBase,
			AddlMetadata: addlMetadata,
		})

		body := d.Copy()
		body.Delete("$namespaces")
		body.Delete("$schemas")
		body.Delete("$base")

		if g, ok := body.Get("$graph"); ok {
			v, err := loader.Load(g, baseURI, opts, State{Root: g})
			if err != nil {
				return nil, nil, err
			}
			opts.Idx[baseURI] = IdxEntry{Value: v, Options: opts}
		} else {
			v, err := loader.Load(body, baseURI, opts, State{Root: body, DocRoot: baseURI})
			if err != nil {
				return nil, nil, err
			}
			opts.Idx[baseURI] = IdxEntry{Value: v, Options: opts}
		}
		if docURI != baseURI {
			opts.Idx[docURI] = opts.Idx[baseURI]
		}
		entry := opts.Idx[baseURI]
		return entry.Value, entry.Options, nil

	case *doctree.Seq, []any:
		v, err := loader.Load(d, baseURI, opts, State{Root: d})
		if err != nil {
			return nil, nil, err
		}
		opts.Idx[baseURI] = IdxEntry{Value: v, Options: opts}
		return v, opts, nil

	default:
		return nil, nil, &ValidationException{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("Expected a URL, mapping or list at the document root, got %s", kindName(doc)),
		}
	}
}

// documentLoadByURL fetches, parses and loads the document behind url,
// memoizing the result in the options index. A fragment in url selects the
// identified object registered while loading the containing document.
func documentLoadByURL(loader Loader, url string, opts *LoadingOptions, metadataFields []string) (any, *LoadingOptions, error) {
	if entry, ok := opts.Idx[url]; ok {
		return entry.Value, entry.Options, nil
	}

	docURL := url
	frag := ""
	if i := strings.Index(url, "#"); i >= 0 {
		docURL, frag = url[:i], url[i+1:]
	}

	if opts.shared.loading[docURL] {
		return nil, nil, &ValidationException{
			Code:    CodeImportCycle,
			Message: fmt.Sprintf("Import cycle detected loading %s", docURL),
		}
	}
	opts.shared.loading[docURL] = true
	defer delete(opts.shared.loading, docURL)

	text, err := opts.Fetcher.FetchText(docURL)
	if err != nil {
		return nil, nil, asChild(err)
	}
	tree, err := doctree.Parse([]byte(text), docURL)
	if err != nil {
		return nil, nil, &ValidationException{Code: CodeFetchFailure, Message: err.Error(), Cause: err}
	}

	derived := NewLoadingOptions(LoadingOptionsSpec{CopyFrom: opts, FileURI: docURL})
	if _, _, err := documentLoad(loader, tree, docURL, derived, metadataFields); err != nil {
		return nil, nil, err
	}

	// Identified objects register themselves while loading, so a fragment
	// reference resolves through the index.
	if entry, ok := opts.Idx[url]; ok {
		return entry.Value, entry.Options, nil
	}
	if frag == "" {
		entry := opts.Idx[docURL]
		return entry.Value, entry.Options, nil
	}
	return nil, nil, &ValidationException{
		Code:    CodeDanglingReference,
		Message: fmt.Sprintf("%s contains no object with identifier %q", docURL, url),
	}
}

func stringMap(v any) (map[string]string, error) {
	m, ok := v.(*doctree.Map)
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", kindName(v))
	}
	out := make(map[string]string, m.Len())
	for _, k := range m.Keys() {
		s, ok := m.Value(k).(string)
		if !ok {
			return nil, fmt.Errorf("value for %q is %s", k, kindName(m.Value(k)))
		}
		out[k] = s
	}
	return out, nil
}

func stringList(v any) ([]string, error) {
	switch sv := v.(type) {
	case string:
		return []string{sv}, nil
	case *doctree.Seq:
		out := make([]string, 0, sv.Len())
		for i, item := range sv.Items() {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("entry %d is %s", i, kindName(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %s", kindName(v))
	}
}
