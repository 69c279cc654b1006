package getopt

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Separator ends option scanning; every argument after it is a bare value.
const Separator = "--"

// Tokenize scans args left to right and yields one token per option
// occurrence or bare value. Positions are 1-based indexes into args.
//
// Scanning is lazy and stops after the first error token. Occurrence limits
// are enforced as tokens are produced, so an option given once too often is
// reported at that occurrence. Options and positionals whose minimum count
// was not met are reported after the last argument, with position 0.
func (r *Registry) Tokenize(args []string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		t := &tokenizer{
			r:     r,
			args:  args,
			seen:  make(map[int]int),
			yield: yield,
		}

		t.run()
	}
}

type tokenizer struct {
	r       *Registry
	seen    map[int]int
	yield   func(Token) bool
	args    []string
	next    int
	slot    int
	literal bool
	stopped bool
}

func (t *tokenizer) emit(tok Token) {
	if t.stopped {
		return
	}

	if !t.yield(tok) || tok.Kind == TokenError {
		t.stopped = true
	}
}

func (t *tokenizer) fail(pos int, context, format string, args ...any) {
	t.emit(Token{
		Kind:     TokenError,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Context:  context,
	})
}

func (t *tokenizer) run() {
	for t.next < len(t.args) && !t.stopped {
		arg := t.args[t.next]
		t.next++
		pos := t.next

		switch {
		case t.literal:
			t.bare(arg, pos)

		case arg == Separator:
			t.literal = true

		case strings.HasPrefix(arg, "--"):
			t.long(arg, pos)

		case len(arg) > 1 && arg[0] == '-':
			t.short(arg, pos)

		default:
			if t.r.order == OrderPOSIX {
				t.literal = true
			}

			t.bare(arg, pos)
		}
	}

	if !t.stopped {
		t.finish()
	}
}

// take consumes the next raw argument as a value.
func (t *tokenizer) take() (string, bool) {
	if t.next >= len(t.args) {
		return "", false
	}

	v := t.args[t.next]
	t.next++

	return v, true
}

func (t *tokenizer) long(arg string, pos int) {
	name, value, hasValue := strings.Cut(arg[2:], "=")
	typed := "--" + name

	opt := t.lookupLong(name)
	if opt == nil {
		t.unknown(arg, typed, pos)

		return
	}

	switch opt.argType {
	case ArgNone:
		if hasValue {
			t.fail(pos, "", "option %s does not take a value", typed)

			return
		}

	case ArgRequired, ArgArray:
		if !hasValue {
			if value, hasValue = t.take(); !hasValue {
				t.fail(pos, "", "option %s requires a value", typed)

				return
			}
		}
	}

	t.option(opt, name, typed, value, hasValue, pos)
}

// lookupLong resolves a name typed after "--". A single-rune name is never
// a long alias, so only the long fallback may claim it.
func (t *tokenizer) lookupLong(name string) *Option {
	if isShort(name) {
		return t.r.aliases[PlaceholderLong]
	}

	return t.r.Lookup(name)
}

func (t *tokenizer) short(arg string, pos int) {
	body := arg[1:]

	for i := 0; i < len(body) && !t.stopped; {
		_, size := utf8.DecodeRuneInString(body[i:])
		alias := body[i : i+size]
		i += size

		opt := t.r.Lookup(alias)
		if opt == nil {
			t.unknown("-"+body[i-size:], "-"+alias, pos)

			return
		}

		if !opt.argType.TakesValue() {
			t.option(opt, alias, "-"+alias, "", false, pos)

			continue
		}

		if rest := body[i:]; rest != "" {
			t.option(opt, alias, "-"+alias, strings.TrimPrefix(rest, "="), true, pos)

			return
		}

		if opt.argType == ArgOptional {
			t.option(opt, alias, "-"+alias, "", false, pos)

			return
		}

		value, ok := t.take()
		if !ok {
			t.fail(pos, "", "option -%s requires a value", alias)

			return
		}

		t.option(opt, alias, "-"+alias, value, true, pos)

		return
	}
}

// unknown handles an alias no option matched. A lenient registry passes
// raw through as a bare value.
func (t *tokenizer) unknown(raw, typed string, pos int) {
	if !t.r.strict {
		t.bare(raw, pos)

		return
	}

	var context string
	if s := t.r.Suggest(typed); len(s) > 0 {
		context = "did you mean " + strings.Join(s, ", ") + "?"
	}

	t.fail(pos, context, "unknown option %s", typed)
}

// option records one occurrence of opt, matched by alias and typed on the
// command line as typed. Choices of a one-of group share one count.
func (t *tokenizer) option(opt *Option, alias, typed, value string, hasValue bool, pos int) {
	key := opt.countKey()

	n := t.seen[key]
	if opt.full(n) {
		label := typed
		if t.r.aliases[alias] != opt {
			label = Flag(PlaceholderShort)
			if strings.HasPrefix(typed, "--") {
				label = Flag(PlaceholderLong)
			}
		}

		if opt.group != 0 {
			t.fail(pos, "", "option %s given more than %s in its choice group", label, times(opt.max))
		} else {
			t.fail(pos, "", "option %s given more than %s", label, times(opt.max))
		}

		return
	}

	t.seen[key] = n + 1

	t.emit(Token{
		Kind:     TokenOption,
		Option:   opt,
		Alias:    alias,
		Value:    value,
		HasValue: hasValue,
		Position: pos,
	})
}

// bare routes a value to the first positional with remaining capacity.
func (t *tokenizer) bare(value string, pos int) {
	for t.slot < len(t.r.positionals) &&
		t.r.positionals[t.slot].full(t.seen[t.r.positionals[t.slot].countKey()]) {
		t.slot++
	}

	var opt *Option

	switch {
	case t.slot < len(t.r.positionals):
		opt = t.r.positionals[t.slot]
		t.seen[opt.countKey()]++

	case t.r.strict:
		t.fail(pos, "", "unexpected argument %q", value)

		return
	}

	t.emit(Token{
		Kind:     TokenArg,
		Option:   opt,
		Value:    value,
		HasValue: true,
		Position: pos,
	})
}

func (t *tokenizer) finish() {
	for _, o := range t.r.options {
		if n := t.seen[o.countKey()]; n < o.min {
			if o.min == 1 {
				t.fail(0, "", "missing required option %s", o.display())
			} else {
				t.fail(0, "", "option %s must be given at least %s", o.display(), times(o.min))
			}

			return
		}
	}

	for _, o := range t.r.positionals {
		if n := t.seen[o.countKey()]; n < o.min {
			if o.min == 1 {
				t.fail(0, "", "missing required argument %s", o.display())
			} else {
				t.fail(0, "", "argument %s requires at least %s", o.display(), values(o.min))
			}

			return
		}
	}
}

func times(n int) string {
	if n == 1 {
		return "once"
	}

	return strconv.Itoa(n) + " times"
}

func values(n int) string {
	if n == 1 {
		return "1 value"
	}

	return strconv.Itoa(n) + " values"
}
