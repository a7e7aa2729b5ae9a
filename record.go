package salad

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/saladtools/salad/doctree"
)

// Saveable is implemented by loaded record values: the inverse of loading,
// converting the value back into a document tree. top marks the document
// root (where $namespaces/$schemas are emitted); relativeURIs rewrites
// identifier fields back to relative form.
type Saveable interface {
	Save(top bool, baseURL string, relativeURIs bool) any
}

// RecordMaker is the per-type construct/validate contract behind a record
// loader. Schema bindings supply one maker per record type; RecordType is
// the stock implementation.
type RecordMaker interface {
	TypeName() string
	FromDoc(doc *doctree.Map, baseURI string, opts *LoadingOptions, st State) (Saveable, error)
}

// NewRecordLoader builds a loader delegating mappings to the given maker.
// Record loaders are not interned: a type name alone does not identify a
// maker, and sharing comes from reusing the maker value itself.
func NewRecordLoader(m RecordMaker) Loader {
	return &recordLoader{maker: m}
}

type recordLoader struct {
	maker RecordMaker
}

func (l *recordLoader) Name() string { return l.maker.TypeName() }

func (l *recordLoader) Load(doc any, baseURI string, opts *LoadingOptions, st State) (any, error) {
	m, ok := doc.(*doctree.Map)
	if !ok {
		return nil, &ValidationException{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("Expected a mapping but got %s", kindName(doc)),
		}
	}
	return l.maker.FromDoc(m, baseURI, opts, st)
}

// Field describes one schema record field.
type Field struct {
	// Name is the short field name as written in documents.
	Name     string
	Loader   Loader
	Optional bool
	// Subscope, when set, scopes identifiers inside this field's value under
	// baseURI/Subscope.
	Subscope string
	// IsURI marks fields whose saved value is rewritten with
	// SaveRelativeURI using ScopedID/RefScope.
	IsURI    bool
	ScopedID bool
	RefScope int
}

// RecordType describes a schema record: its fields, class discriminant and
// designated identifier field. It implements RecordMaker, supplying the
// construct/validate and serialize behavior generated bindings would
// otherwise emit per type.
type RecordType struct {
	Name string
	// HasClass requires documents to carry class: Name, emitted back on save.
	HasClass        bool
	IDField         string
	IDFieldOptional bool
	Fields          []Field
}

func (rt *RecordType) TypeName() string { return rt.Name }

func (rt *RecordType) field(name string) *Field {
	for i := range rt.Fields {
		if rt.Fields[i].Name == name {
			return &rt.Fields[i]
		}
	}
	return nil
}

func (rt *RecordType) isAttr(key string) bool {
	if key == "class" && rt.HasClass {
		return true
	}
	return rt.field(key) != nil
}

func (rt *RecordType) attrList() string {
	names := make([]string, 0, len(rt.Fields)+1)
	if rt.HasClass {
		names = append(names, "`class`")
	}
	for _, f := range rt.Fields {
		names = append(names, "`"+f.Name+"`")
	}
	return strings.Join(names, ", ")
}

// FromDoc validates a mapping against the record description and builds a
// Record. All field and unknown-key errors are collected before one
// aggregate is raised. The identifier field is resolved first: it defaults
// to the document root URI (or an anonymous blank node when optional), and a
// present identifier rebases baseURI for every other field.
func (rt *RecordType) FromDoc(doc *doctree.Map, baseURI string, opts *LoadingOptions, st State) (Saveable, error) {
	if rt.HasClass {
		cls, ok := doc.Get("class")
		if !ok {
			return nil, &ValidationException{Code: CodeMissingValue, Message: "Missing 'class' field"}
		}
		if s, _ := cls.(string); s != rt.Name {
			return nil, &ValidationException{
				Code:    CodeTypeMismatch,
				Message: fmt.Sprintf("tried `%s` but", rt.Name),
			}
		}
	}

	var errs []*ValidationException
	values := map[string]any{}

	if rt.IDField != "" {
		f := rt.field(rt.IDField)
		var idv any
		if raw, ok := doc.Get(f.Name); ok {
			v, err := LoadField(raw, f.Loader, baseURI, opts, st.Child(f.Name))
			if err != nil {
				errs = append(errs, Aggregate(
					fmt.Sprintf("the `%s` field is not valid because:", f.Name),
					NewSourceLine(doc, f.Name),
					[]*ValidationException{asChild(err)}, ""))
			} else {
				idv = v
			}
		}
		if idv == nil {
			switch {
			case st.DocRoot != "":
				idv = st.DocRoot
			case rt.IDFieldOptional:
				idv = "_:" + anonID()
			default:
				errs = append(errs, &ValidationException{
					Code:    CodeMissingValue,
					Message: fmt.Sprintf("missing %s", f.Name),
				})
			}
		} else if s, ok := idv.(string); ok {
			baseURI = s
		}
		values[f.Name] = idv
	}

	for _, f := range rt.Fields {
		if f.Name == rt.IDField || f.Name == "class" {
			continue
		}
		raw, present := doc.Get(f.Name)
		if !present {
			if f.Optional {
				values[f.Name] = nil
				continue
			}
			errs = append(errs, &ValidationException{
				Code:    CodeMissingValue,
				Message: fmt.Sprintf("missing required field `%s`", f.Name),
			})
			continue
		}
		if raw == nil {
			errs = append(errs, &ValidationException{
				Code:    CodeMissingValue,
				Message: fmt.Sprintf("missing required field `%s`", f.Name),
				Loc:     NewSourceLine(doc, f.Name),
			})
			continue
		}
		fieldBase := baseURI
		if f.Subscope != "" {
			sb, err := ExpandURL(f.Subscope, baseURI, opts, true, false, -1)
			if err == nil {
				fieldBase = sb
			}
		}
		v, err := LoadField(raw, f.Loader, fieldBase, opts, st.Child(f.Name))
		if err != nil {
			errs = append(errs, Aggregate(
				fmt.Sprintf("the `%s` field is not valid because:", f.Name),
				NewSourceLine(doc, f.Name),
				[]*ValidationException{asChild(err)}, ""))
			continue
		}
		values[f.Name] = v
	}

	extensions := doctree.NewMap()
	for _, k := range doc.Keys() {
		if rt.isAttr(k) {
			continue
		}
		switch {
		case k == "":
			errs = append(errs, &ValidationException{
				Code:    CodeUnrecognizedField,
				Message: "mapping with implicit null key",
			})
		case strings.Contains(k, ":"):
			// namespaced extension field
			ex, err := ExpandURL(k, "", opts, false, false, -1)
			if err != nil {
				ex = k
			}
			extensions.Set(ex, doc.Value(k))
		default:
			errs = append(errs, &ValidationException{
				Code:    CodeUnrecognizedField,
				Message: fmt.Sprintf("invalid field `%s`, expected one of: %s", k, rt.attrList()),
				Loc:     NewSourceLine(doc, k),
			})
		}
	}

	if len(errs) > 0 {
		return nil, Aggregate("", nil, errs, "*")
	}

	rec := &Record{typ: rt, values: values, extensions: extensions, options: opts}
	if rt.IDField != "" {
		if id, ok := values[rt.IDField].(string); ok {
			opts.Idx[id] = IdxEntry{Value: rec, Options: opts}
		}
	}
	return rec, nil
}

// Record is a loaded record instance: field values in schema order,
// unrecognized namespaced keys as extension fields, and the LoadingOptions
// snapshot needed to recompute relative URIs on save.
type Record struct {
	typ        *RecordType
	values     map[string]any
	extensions *doctree.Map
	options    *LoadingOptions
}

// Type returns the record's schema descriptor.
func (r *Record) Type() *RecordType { return r.typ }

// Get returns a field value by short name (nil for unset optional fields).
func (r *Record) Get(field string) any { return r.values[field] }

// Extensions returns the namespaced extension fields.
func (r *Record) Extensions() *doctree.Map { return r.extensions }

// LoadingOptions returns the options snapshot taken at load time.
func (r *Record) LoadingOptions() *LoadingOptions { return r.options }

// Save converts the record back into a document tree.
func (r *Record) Save(top bool, baseURL string, relativeURIs bool) any {
	out := doctree.NewMap()

	for _, k := range r.extensions.Keys() {
		name := k
		if relativeURIs {
			name = PrefixURL(k, r.options.Vocab)
		}
		out.Set(name, r.extensions.Value(k))
	}

	if r.typ.HasClass {
		out.Set("class", r.typ.Name)
	}

	for _, f := range r.typ.Fields {
		if f.Name == "class" {
			continue
		}
		v := r.values[f.Name]
		if v == nil {
			continue
		}
		fieldBase := baseURL
		if r.typ.IDField != "" && f.Name != r.typ.IDField {
			if id, ok := r.values[r.typ.IDField].(string); ok {
				fieldBase = id
			}
		}
		if f.IsURI {
			out.Set(f.Name, SaveRelativeURI(v, fieldBase, f.ScopedID, f.RefScope, relativeURIs))
		} else {
			out.Set(f.Name, Save(v, false, fieldBase, relativeURIs))
		}
	}

	if top {
		if len(r.options.Namespaces) > 0 {
			out.Set("$namespaces", r.options.Namespaces)
		}
		if len(r.options.Schemas) > 0 {
			out.Set("$schemas", append([]string(nil), r.options.Schemas...))
		}
	}
	return out
}

func anonID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
