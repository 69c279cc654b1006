package getopt

import (
	"log/slog"
	"strconv"
)

// TokenKind classifies a [Token].
type TokenKind uint8

const (
	TokenOption TokenKind = iota // an alias occurrence
	TokenArg                     // a bare value
	TokenError                   // invalid input; scanning stops
)

func (k TokenKind) String() string {
	switch k {
	case TokenOption:
		return "option"
	case TokenArg:
		return "arg"
	case TokenError:
		return "error"
	default:
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Token is one unit produced by [Registry.Tokenize].
//
// Option tokens carry the matched alias, the resolved option, and the value
// if one was given. Arg tokens carry the value and the positional it was
// routed to, or a nil Option when it was left over as residue. Error tokens
// carry a message and optional context.
type Token struct {
	Option   *Option
	Alias    string
	Value    string
	Message  string
	Context  string
	Position int
	Kind     TokenKind
	HasValue bool
}

// LogValue implements [slog.LogValuer].
func (t Token) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", t.Kind.String()),
		slog.Int("position", t.Position),
	}

	if t.Alias != "" {
		attrs = append(attrs, slog.String("alias", Flag(t.Alias)))
	}

	if t.HasValue {
		attrs = append(attrs, slog.String("value", t.Value))
	}

	if t.Option != nil {
		attrs = append(attrs, slog.Int("id", t.Option.id))
	}

	if t.Message != "" {
		attrs = append(attrs, slog.String("message", t.Message))
	}

	return slog.GroupValue(attrs...)
}

// Err converts an error token to an [*ArgsError]. It returns nil for other
// kinds.
func (t Token) Err() *ArgsError {
	if t.Kind != TokenError {
		return nil
	}

	return &ArgsError{Message: t.Message, Context: t.Context, Position: t.Position}
}
