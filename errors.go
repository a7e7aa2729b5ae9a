package salad

import (
	"errors"
	"strings"
)

// Validation error codes (exported consts for programmatic matching; the
// rendered message carries the human detail).
const (
	CodeTypeMismatch        = "type_mismatch"
	CodeMissingValue        = "missing_value"
	CodeUnknownEnumValue    = "unknown_enum_value"
	CodeDanglingReference   = "dangling_reference"
	CodeNotInVocabulary     = "not_in_vocabulary"
	CodeDuplicateIdentifier = "duplicate_identifier"
	CodeUnrecognizedField   = "unrecognized_field"
	CodeMalformedDSL        = "malformed_dsl"
	CodeFetchFailure        = "fetch_failure"
	CodeImportCycle         = "import_cycle"
)

// ValidationException is a structured validation error: a message, an
// optional source location, and an ordered list of child causes. A top-level
// load failure is one exception tree covering every independent problem
// found. Aggregation never discards a child cause.
type ValidationException struct {
	Code     string
	Message  string
	Loc      *SourceLine
	Children []*ValidationException
	Cause    error

	bullet string
}

// NewValidationException builds an exception with optional child causes.
// Children that carry no message, code, or location are spliced into the
// parent so wrappers added purely for aggregation do not deepen the tree.
func NewValidationException(message string, loc *SourceLine, children []*ValidationException) *ValidationException {
	e := &ValidationException{Message: message, Loc: loc}
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.Message == "" && c.Loc == nil && c.Code == "" {
			e.Children = append(e.Children, c.Children...)
		} else {
			e.Children = append(e.Children, c)
		}
	}
	return e
}

// Aggregate wraps independent child causes under one parent, marking each
// child with the given bullet when more than one survives flattening.
func Aggregate(message string, loc *SourceLine, children []*ValidationException, bullet string) *ValidationException {
	e := NewValidationException(message, loc, children)
	if bullet != "" && len(e.Children) > 1 {
		for _, c := range e.Children {
			c.bullet = bullet
		}
	}
	return e
}

// WithSourceLine fills in the location when the exception does not already
// have one, returning the receiver.
func (e *ValidationException) WithSourceLine(loc *SourceLine) *ValidationException {
	if e.Loc == nil {
		e.Loc = loc
	}
	return e
}

// Error renders the full cause tree as an indented multi-line report with
// resolved source locations where available.
func (e *ValidationException) Error() string {
	return strings.Join(e.lines(0), "\n")
}

// Summary returns the first rendered line of the report.
func (e *ValidationException) Summary() string {
	ls := e.lines(0)
	if len(ls) == 0 {
		return ""
	}
	return ls[0]
}

// Unwrap exposes child causes and any wrapped I/O error to errors.Is/As.
func (e *ValidationException) Unwrap() []error {
	var out []error
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	for _, c := range e.Children {
		out = append(out, c)
	}
	return out
}

func (e *ValidationException) lines(level int) []string {
	var out []string
	next := level
	if msg := e.headline(); msg != "" {
		out = append(out, strings.Repeat("  ", level)+msg)
		next = level + 1
	}
	for _, c := range e.Children {
		out = append(out, c.lines(next)...)
	}
	return out
}

func (e *ValidationException) headline() string {
	var b strings.Builder
	if e.bullet != "" {
		b.WriteString(e.bullet)
		b.WriteString(" ")
	}
	if e.Loc != nil {
		if loc := e.Loc.String(); loc != "" {
			b.WriteString(loc)
			b.WriteString(" ")
		}
	}
	b.WriteString(e.Message)
	return strings.TrimSpace(b.String())
}

// AsValidationException extracts a *ValidationException from an error chain.
func AsValidationException(err error) (*ValidationException, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationException
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// asChild adapts an arbitrary error into a child cause, keeping it reachable
// as Cause when it is not already a ValidationException.
func asChild(err error) *ValidationException {
	if ve, ok := AsValidationException(err); ok {
		return ve
	}
	return &ValidationException{Message: err.Error(), Cause: err}
}
