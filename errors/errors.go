package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // record bytes to fields
	PhaseLayout   Phase = "layout"   // logical field lookups
	PhaseRegistry Phase = "registry" // opcode table build
	PhaseUpdate   Phase = "update"   // live re-interpretation
	PhaseLoad     Phase = "load"     // container loading
	PhaseParse    Phase = "parse"    // table/IDS/profile parsing
	PhaseProfile  Phase = "profile"  // game profile handling
)

// Kind categorizes the error
type Kind string

const (
	KindTooShort         Kind = "too_short"
	KindStageBudget      Kind = "stage_budget"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindFieldNotInLayout Kind = "field_not_in_layout"
	KindDuplicate        Kind = "duplicate"
	KindInvalidData      Kind = "invalid_data"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
	KindUnsupported      Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Layout string
	Field  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Layout != "" || e.Field != "" {
		b.WriteString(": ")
		if e.Layout != "" && e.Field != "" {
			b.WriteString("field ")
			b.WriteString(e.Field)
			b.WriteString(", layout ")
			b.WriteString(e.Layout)
		} else if e.Field != "" {
			b.WriteString("field ")
			b.WriteString(e.Field)
		} else {
			b.WriteString("layout ")
			b.WriteString(e.Layout)
		}
	}

	if e.Detail != "" {
		if e.Layout != "" || e.Field != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Structural reports whether the error aborts a record decode.
// Structural errors are never retried: the same bytes fail the same way.
func (e *Error) Structural() bool {
	switch e.Kind {
	case KindTooShort, KindStageBudget, KindOutOfBounds:
		return e.Phase == PhaseDecode
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Layout sets the record layout name
func (b *Builder) Layout(name string) *Builder {
	b.err.Layout = name
	return b
}

// Field sets the logical field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TooShort creates a structural error for a record smaller than its layout minimum
func TooShort(phase Phase, path []string, size, minimum int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTooShort,
		Path:   path,
		Detail: fmt.Sprintf("record size %d below minimum %d", size, minimum),
		Value:  size,
	}
}

// StageBudget creates a structural error for a decode stage that consumed the wrong byte count
func StageBudget(path []string, stage string, got, want int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindStageBudget,
		Path:   path,
		Detail: fmt.Sprintf("stage %s consumed %d bytes, budget is %d", stage, got, want),
		Value:  got,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// FieldNotInLayout creates an error for a logical field the layout version does not define
func FieldNotInLayout(layout, field string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindFieldNotInLayout,
		Layout: layout,
		Field:  field,
		Detail: "field not present in this layout version",
	}
}

// Duplicate creates a duplicate registration error
func Duplicate(phase Phase, what string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %v registered twice", what, id),
		Value:  id,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a container loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
