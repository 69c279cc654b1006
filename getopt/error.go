package getopt

import (
	"log/slog"
	"strconv"
	"strings"
)

// Sentinel errors.
var (
	ErrDescriptor     = NewError("invalid option descriptor")
	ErrCollision      = NewError("option defined more than once")
	ErrChecker        = NewError("value rejected")
	ErrUnknownChecker = NewError("unknown checker")
)

// Error is an authoring-time error with structured logging attributes.
// It implements both error and [slog.LogValuer].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates an Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error joins the message and the wrapped cause with ": ".
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches any Error carrying the same message, so that a sentinel still
// matches after [Error.With] or [Error.Wrap] derived a new value from it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	merged = append(append(merged, e.attrs...), attrs...)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}

// Attr returns the value of the first attribute named key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// ArgsError reports invalid user input found while parsing an argument
// vector. Position is the 1-based index of the offending raw argument, or 0
// when the error does not concern a single argument (a missing required
// option, for example).
type ArgsError struct {
	Message  string
	Context  string
	Position int
	Cause    error
}

func (e *ArgsError) Error() string {
	var b strings.Builder

	b.WriteString("argument error")

	if e.Position > 0 {
		b.WriteString(" at argument ")
		b.WriteString(strconv.Itoa(e.Position))
	}

	b.WriteString(": ")
	b.WriteString(e.Message)

	if e.Context != "" {
		b.WriteString(" (")
		b.WriteString(e.Context)
		b.WriteString(")")
	}

	return b.String()
}

// Unwrap returns the cause, such as a checker rejection.
func (e *ArgsError) Unwrap() error { return e.Cause }

// LogValue implements [slog.LogValuer].
func (e *ArgsError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.Message)}

	if e.Position > 0 {
		attrs = append(attrs, slog.Int("position", e.Position))
	}

	if e.Context != "" {
		attrs = append(attrs, slog.String("context", e.Context))
	}

	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}

	return slog.GroupValue(attrs...)
}
