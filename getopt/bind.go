package getopt

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Binding is the outcome of a successful parse.
type Binding struct {
	// Values maps destination keys to bound values.
	Values Result
	// Counts holds the occurrence count of each option, keyed by option id.
	Counts map[int]int
	// Rest holds bare values that no positional accepted. It is only
	// populated by lenient registries; strict ones reject such values.
	Rest []string
}

// Count returns how many times opt matched.
func (b *Binding) Count(opt *Option) int {
	if b == nil || opt == nil {
		return 0
	}

	return b.Counts[opt.id]
}

// Parse binds args and returns the resulting values.
//
// Invalid input fails with an [*ArgsError] and no partial result.
// Parsing does not modify the registry; parsing the same arguments twice
// yields equal results.
func (r *Registry) Parse(args []string) (Result, error) {
	b, err := r.Bind(args)
	if err != nil {
		return nil, err
	}

	return b.Values, nil
}

// Bind is like [Registry.Parse] but also reports occurrence counts and
// unclaimed bare values.
func (r *Registry) Bind(args []string) (*Binding, error) {
	b := &Binding{
		Values: make(Result),
		Counts: make(map[int]int),
	}

	for tok := range r.Tokenize(args) {
		r.logger.Trace("token", slog.Any("token", tok))

		switch {
		case tok.Kind == TokenError:
			err := tok.Err()
			r.logger.Debug("parse failed", slog.Any("error", err))

			return nil, err

		case tok.Option == nil:
			b.Rest = append(b.Rest, tok.Value)

		default:
			if err := r.bind(b, tok); err != nil {
				r.logger.Debug("parse failed", slog.Any("error", err))

				return nil, err
			}
		}
	}

	r.logger.Trace("parse complete",
		slog.Int("args", len(args)),
		slog.Int("keys", len(b.Values)),
		slog.Int("rest", len(b.Rest)))

	return b, nil
}

func (r *Registry) bind(b *Binding, tok Token) error {
	opt := tok.Option

	var value any = true

	// A positional always carries the bare value it matched.
	if opt.argType.TakesValue() || opt.IsPositional() {
		value = nil
		if tok.HasValue {
			value = tok.Value
		}
	}

	if opt.checker != "" {
		checked, err := r.checker.Check(opt.checker, value)
		if err != nil {
			label := opt.display()
			if tok.Alias != "" {
				label = Flag(tok.Alias)
			}

			return &ArgsError{
				Message:  fmt.Sprintf("invalid value %s for %s", quote(value), label),
				Context:  err.Error(),
				Position: tok.Position,
				Cause:    ErrChecker.With(slog.String("checker", opt.checker)).Wrap(err),
			}
		}

		value = checked
	}

	array := opt.argType == ArgArray

	for _, rule := range opt.rules {
		v := b.compute(rule, opt, value)

		for _, key := range destKeys(rule.To, opt) {
			b.write(key, v, array)
		}
	}

	b.Counts[opt.id]++

	return nil
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}

	return fmt.Sprint(v)
}

// compute returns the value a rule binds for a match.
func (b *Binding) compute(rule Rule, opt *Option, value any) any {
	switch rule.Type {
	case RuleVar:
		prior := b.Values[rule.From]
		if seq, ok := prior.([]any); ok {
			if len(seq) == 0 {
				return nil
			}

			return seq[len(seq)-1]
		}

		return prior

	case RuleConst:
		return rule.From

	case RuleShort, RuleLong, RuleAll:
		kind := map[RuleType]DestKind{
			RuleShort: DestShort,
			RuleLong:  DestLong,
			RuleAll:   DestAll,
		}[rule.Type]

		keys := opt.aliasKeys(kind)
		if len(keys) == 0 {
			return nil
		}

		return strings.Join(keys, "|")

	default:
		return value
	}
}

// destKeys expands destinations into result keys.
func destKeys(dests []Dest, opt *Option) []string {
	var keys []string

	for _, d := range dests {
		if d.Kind == DestKey {
			keys = append(keys, d.Key)
		} else {
			keys = append(keys, opt.aliasKeys(d.Kind)...)
		}
	}

	return keys
}

// write stores v at key. Array writes append, merging sequences element by
// element; other writes replace.
func (b *Binding) write(key string, v any, array bool) {
	if !array {
		b.Values[key] = v

		return
	}

	var seq []any

	switch prev := b.Values[key].(type) {
	case nil:
	case []any:
		seq = slices.Clone(prev)
	default:
		seq = []any{prev}
	}

	if more, ok := v.([]any); ok {
		seq = append(seq, more...)
	} else {
		seq = append(seq, v)
	}

	b.Values[key] = seq
}
