package salad

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// splitURL mirrors the five-part split used by the resolution rules: scheme,
// network location, path, query, fragment. Fragments keep their raw "/"
// separators because scoped identifiers are built from fragment segments.
type splitURL struct {
	scheme string
	netloc string
	path   string
	query  string
	frag   string
}

func urlsplit(s string) splitURL {
	var u splitURL
	if i := strings.Index(s, "#"); i >= 0 {
		u.frag = s[i+1:]
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i > 0 && isScheme(s[:i]) {
		u.scheme = strings.ToLower(s[:i])
		s = s[i+1:]
	}
	if strings.HasPrefix(s, "//") {
		rest := s[2:]
		if j := strings.IndexAny(rest, "/?"); j >= 0 {
			u.netloc = rest[:j]
			s = rest[j:]
		} else {
			u.netloc = rest
			s = ""
		}
	}
	if i := strings.Index(s, "?"); i >= 0 {
		u.query = s[i+1:]
		s = s[:i]
	}
	u.path = s
	return u
}

func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return len(s) > 0
}

func (u splitURL) String() string {
	var b strings.Builder
	if u.scheme != "" {
		b.WriteString(u.scheme)
		b.WriteString(":")
	}
	if u.netloc != "" || strings.HasPrefix(u.path, "//") || u.scheme == "file" {
		b.WriteString("//")
		b.WriteString(u.netloc)
	}
	b.WriteString(u.path)
	if u.query != "" {
		b.WriteString("?")
		b.WriteString(u.query)
	}
	if u.frag != "" {
		b.WriteString("#")
		b.WriteString(u.frag)
	}
	return b.String()
}

// ExpandURL resolves a possibly relative or scoped identifier against a base
// URI and the active vocabulary.
//
// Priority order: @id/@type pass through; known vocabulary terms pass through
// (vocabTerm); "prefix:" forms are substituted from the vocabulary; absolute
// URLs in a fetchable scheme and unresolved expressions ("$(", "${") are left
// alone; scopedID appends onto the base fragment as a new path segment;
// scopedRef (>= 0) pops that many trailing fragment segments before
// appending; everything else is a plain relative join. When vocabTerm is set
// the result is contracted back to a short term if possible, and a resolved
// URL with no scheme is a NotInVocabulary error.
func ExpandURL(u, baseURL string, opts *LoadingOptions, scopedID, vocabTerm bool, scopedRef int) (string, error) {
	if u == "@id" || u == "@type" {
		return u, nil
	}

	if vocabTerm {
		if _, ok := opts.Vocab[u]; ok {
			return u, nil
		}
	}

	if len(opts.Vocab) > 0 {
		if i := strings.Index(u, ":"); i > 0 {
			if ns, ok := opts.Vocab[u[:i]]; ok {
				u = ns + u[i+1:]
			}
		}
	}

	split := urlsplit(u)

	switch {
	case split.scheme != "" && schemeSupported(opts.Fetcher, split.scheme),
		strings.HasPrefix(u, "$("),
		strings.HasPrefix(u, "${"):
		// already absolute, or an unresolved expression
	case scopedID && split.frag == "":
		sb := urlsplit(baseURL)
		frg := split.path
		if sb.frag != "" {
			frg = sb.frag + "/" + split.path
		}
		pt := sb.path
		if pt == "" {
			pt = "/"
		}
		u = splitURL{scheme: sb.scheme, netloc: sb.netloc, path: pt, query: sb.query, frag: frg}.String()
	case scopedRef >= 0 && split.frag == "":
		sb := urlsplit(baseURL)
		sp := strings.Split(sb.frag, "/")
		for n := scopedRef; n > 0 && len(sp) > 0; n-- {
			sp = sp[:len(sp)-1]
		}
		sp = append(sp, u)
		u = splitURL{scheme: sb.scheme, netloc: sb.netloc, path: sb.path, query: sb.query, frag: strings.Join(sp, "/")}.String()
	default:
		u = opts.Fetcher.URLJoin(baseURL, u)
	}

	if vocabTerm {
		split = urlsplit(u)
		if split.scheme == "" {
			return "", &ValidationException{
				Code:    CodeNotInVocabulary,
				Message: fmt.Sprintf("Term %q not in vocabulary", u),
			}
		}
		if term, ok := opts.RVocab[u]; ok {
			return term, nil
		}
	}
	return u, nil
}

func schemeSupported(f Fetcher, scheme string) bool {
	if f == nil {
		return false
	}
	for _, s := range f.SupportedSchemes() {
		if s == scheme {
			return true
		}
	}
	return false
}

// FileURI converts a filesystem path into a file:// URI. With splitFrag set,
// a trailing "#fragment" in the path is preserved as a fragment.
func FileURI(path string, splitFrag bool) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	frag := ""
	if splitFrag {
		if i := strings.Index(path, "#"); i >= 0 {
			frag = "#" + escapeFragment(path[i+1:])
			path = path[:i]
		}
	}
	urlpath := escapePath(path)
	if strings.HasPrefix(urlpath, "//") {
		return "file:" + urlpath + frag
	}
	return "file://" + urlpath + frag
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func escapeFragment(f string) string {
	return strings.ReplaceAll(url.PathEscape(f), "%2F", "/")
}

// uriToPath converts a file:// URI back into a filesystem path.
func uriToPath(u string) (string, error) {
	parsed, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("not a file URI: %s", u)
	}
	return parsed.Path, nil
}

// PrefixURL contracts a full URL back into "prefix:rest" form using the given
// namespace table. Longer namespaces win so nested prefixes stay stable.
func PrefixURL(u string, namespaces map[string]string) string {
	prefixes := make([]string, 0, len(namespaces))
	for k := range namespaces {
		prefixes = append(prefixes, k)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(namespaces[prefixes[i]]) != len(namespaces[prefixes[j]]) {
			return len(namespaces[prefixes[i]]) > len(namespaces[prefixes[j]])
		}
		return prefixes[i] < prefixes[j]
	})
	for _, k := range prefixes {
		if v := namespaces[k]; v != "" && strings.HasPrefix(u, v) {
			return k + ":" + u[len(v):]
		}
	}
	return u
}

// Shortname computes the short name of a fully qualified identifier: the
// last fragment segment when a fragment exists, else the last path segment.
func Shortname(inputID string) string {
	split := urlsplit(inputID)
	if split.frag != "" {
		parts := strings.Split(split.frag, "/")
		return parts[len(parts)-1]
	}
	parts := strings.Split(split.path, "/")
	return parts[len(parts)-1]
}

// SaveRelativeURI converts an absolute URI (or list of URIs) back into the
// relative form it would have been written as, reversing the scoping rules.
func SaveRelativeURI(uri any, baseURL string, scopedID bool, refScope int, relativeURIs bool) any {
	switch v := uri.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, SaveRelativeURI(item, baseURL, scopedID, refScope, relativeURIs))
		}
		return out
	case string:
		if !relativeURIs || v == baseURL {
			return v
		}
		us := urlsplit(v)
		bs := urlsplit(baseURL)
		if us.scheme != bs.scheme || us.netloc != bs.netloc {
			return v
		}
		if us.path != bs.path {
			p := relPath(us.path, parentPath(bs.path))
			if us.frag != "" {
				p = p + "#" + us.frag
			}
			return p
		}
		basefrag := bs.frag + "/"
		if refScope > 0 {
			sp := strings.Split(basefrag, "/")
			for i := 0; i < refScope && len(sp) > 0; i++ {
				sp = sp[:len(sp)-1]
			}
			basefrag = strings.Join(sp, "/")
		}
		if strings.HasPrefix(us.frag, basefrag) {
			return us.frag[len(basefrag):]
		}
		return us.frag
	default:
		return Save(uri, false, baseURL, relativeURIs)
	}
}

func parentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}

// relPath computes a relative path from start to target using "/" segments.
func relPath(target, start string) string {
	t := strings.Split(strings.TrimPrefix(target, "/"), "/")
	s := strings.Split(strings.TrimPrefix(start, "/"), "/")
	if start == "" {
		s = nil
	}
	i := 0
	for i < len(t) && i < len(s) && t[i] == s[i] {
		i++
	}
	var out []string
	for j := i; j < len(s); j++ {
		out = append(out, "..")
	}
	out = append(out, t[i:]...)
	if len(out) == 0 {
		return "."
	}
	return strings.Join(out, "/")
}
