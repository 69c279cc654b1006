// Package param converts a parse result into the argument list handed to a
// dispatched program.
//
// Each parameter descriptor selects one source and how to emit it:
//
//	@files        every value bound to "files"
//	$mode?"fast"  the first value bound to "mode", "fast" if none, "" if no default
//	?mode         the first value bound to "mode", nothing if none
//	#verbose      the number of values bound to "verbose"
//
// A descriptor without an identifier ("@", "$") reads the argument list
// passed alongside the result instead of a result key. Dispatch passes the
// command's own raw arguments there.
package param

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/argot/getopt"
)

// ErrDescriptor is returned for malformed parameter descriptors.
var ErrDescriptor = getopt.NewError("invalid parameter descriptor")

// Kind selects how a [Param] emits its source.
type Kind byte

// Parameter kinds, named by their descriptor prefix.
const (
	KindArray    Kind = '@'
	KindScalar   Kind = '$'
	KindOptional Kind = '?'
	KindCount    Kind = '#'
)

func (k Kind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	case KindOptional:
		return "optional"
	case KindCount:
		return "count"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Param is one compiled parameter descriptor.
type Param struct {
	descriptor string
	ident      string
	def        string
	hasDefault bool
	kind       Kind
}

// Kind returns the parameter kind.
func (p Param) Kind() Kind { return p.kind }

// Identifier returns the result key read, or "" when p reads the argument list.
func (p Param) Identifier() string { return p.ident }

// Default returns the declared default.
func (p Param) Default() (string, bool) { return p.def, p.hasDefault }

func (p Param) String() string { return p.descriptor }

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// Compile parses a parameter descriptor.
func Compile(descriptor string) (Param, error) {
	fail := func(format string, args ...any) (Param, error) {
		return Param{}, ErrDescriptor.
			With(slog.String("descriptor", descriptor)).
			Wrap(fmt.Errorf("%q: %s", descriptor, fmt.Sprintf(format, args...)))
	}

	if descriptor == "" {
		return fail("empty descriptor")
	}

	p := Param{descriptor: descriptor, kind: Kind(descriptor[0])}

	switch p.kind {
	case KindArray, KindScalar, KindOptional, KindCount:
	default:
		return fail("unknown kind %q", descriptor[0])
	}

	body := descriptor[1:]
	if body == "" {
		return p, nil
	}

	n := 0
	for n < len(body) && isIdentRune(rune(body[n])) {
		n++
	}

	if n == 0 {
		return fail("expected identifier")
	}

	p.ident, body = body[:n], body[n:]
	if body == "" {
		return p, nil
	}

	if body[0] != '?' {
		return fail("unexpected %q after identifier", body[0])
	}

	var def any
	if err := json.Unmarshal([]byte(body[1:]), &def); err != nil {
		return fail("default: %v", err)
	}

	s, ok := def.(string)
	if !ok {
		return fail("default must be a string, got %s", body[1:])
	}

	p.def, p.hasDefault = s, true

	return p, nil
}

// Args returns the arguments p emits for result, reading args when p has
// no identifier.
func (p Param) Args(result getopt.Result, args []string) []string {
	data := p.source(result, args)

	if p.kind == KindCount {
		return []string{strconv.Itoa(len(data))}
	}

	if len(data) == 0 && p.hasDefault {
		data = []any{p.def}
	}

	if p.kind == KindScalar || p.kind == KindOptional {
		data = data[:min(len(data), 1)]
	}

	if p.kind == KindScalar && len(data) == 0 {
		data = []any{""}
	}

	out := make([]string, len(data))
	for i, v := range data {
		out[i] = format(v)
	}

	return out
}

func (p Param) source(result getopt.Result, args []string) []any {
	if p.ident == "" {
		data := make([]any, len(args))
		for i, s := range args {
			data[i] = s
		}

		return data
	}

	switch v := result[p.ident].(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}

		return "0"
	default:
		return fmt.Sprint(v)
	}
}
