package getopt

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/argot/log"
)

// Order controls where options may appear relative to bare values.
type Order uint8

const (
	// OrderGNU accepts options anywhere before a "--" separator.
	OrderGNU Order = iota
	// OrderPOSIX ends option scanning at the first bare value, so that
	// everything after it is passed through untouched.
	OrderPOSIX
)

// Setting configures a [Registry].
type Setting func(*Registry)

// WithStrict controls parse-time strictness. A strict registry rejects
// unknown options and bare values no positional accepts; a lenient one
// passes them through as bare values. Registries are strict by default.
func WithStrict(strict bool) Setting {
	return func(r *Registry) { r.strict = strict }
}

// WithOrder sets the argument [Order].
func WithOrder(order Order) Setting {
	return func(r *Registry) { r.order = order }
}

// WithChecker sets the value [Checker] consulted for options that name one.
func WithChecker(c Checker) Setting {
	return func(r *Registry) {
		if c == nil {
			c = NopChecker
		}

		r.checker = c
	}
}

// WithLogger sets the logger that traces registration and parsing.
func WithLogger(l log.Logger) Setting {
	return func(r *Registry) { r.logger = l }
}

// Registry is the alias table of one parse context: it maps every alias to
// the option that owns it and keeps positionals in registration order.
//
// A Registry is built for a single option set and is not safe for
// concurrent mutation. Parsing does not modify it.
type Registry struct {
	aliases     map[string]*Option
	options     []*Option
	positionals []*Option
	checker     Checker
	logger      log.Logger
	seq         int
	strict      bool
	order       Order
}

// NewRegistry returns an empty strict registry with settings applied.
func NewRegistry(settings ...Setting) *Registry {
	r := &Registry{
		aliases: make(map[string]*Option),
		checker: NopChecker,
		strict:  true,
	}

	for _, s := range settings {
		s(r)
	}

	return r
}

// Strict reports whether the registry rejects unknown input.
func (r *Registry) Strict() bool { return r.strict }

// Order returns the argument order.
func (r *Registry) Order() Order { return r.order }

func (r *Registry) next() int {
	r.seq++

	return r.seq
}

// Register compiles descriptor and registers the result.
// See [Registry.RegisterOption] for the meaning of strict.
func (r *Registry) Register(descriptor string, strict bool) error {
	opt, err := Compile(descriptor)
	if err != nil {
		return err
	}

	return r.RegisterOption(opt, strict)
}

// RegisterAll registers each descriptor in order, stopping at the first
// error.
func (r *Registry) RegisterAll(strict bool, descriptors ...string) error {
	for _, d := range descriptors {
		if err := r.Register(d, strict); err != nil {
			return err
		}
	}

	return nil
}

// MustRegister is like [Registry.RegisterAll] but panics on error.
func (r *Registry) MustRegister(strict bool, descriptors ...string) *Registry {
	if err := r.RegisterAll(strict, descriptors...); err != nil {
		panic(err)
	}

	return r
}

// RegisterOption adds a copy of opt under a fresh id.
//
// When an alias is already owned by another option, a strict registration
// fails with [ErrCollision] and leaves the registry unchanged. A lenient
// registration takes the alias over: the previous owner is replaced by a
// copy without that alias, issued its own fresh id.
//
// An option with choices is registered as one option per choice, each
// owning only that choice's aliases. The choices share one occurrence count.
func (r *Registry) RegisterOption(opt *Option, strict bool) error {
	if opt == nil {
		return ErrDescriptor.Wrap(fmt.Errorf("nil option"))
	}

	opts := r.expand(opt)

	if strict {
		for _, o := range opts {
			for _, alias := range o.Aliases() {
				if _, taken := r.aliases[alias]; taken {
					return ErrCollision.
						With(slog.String("alias", Flag(alias))).
						With(slog.String("descriptor", opt.descriptor)).
						Wrap(fmt.Errorf("%s", Flag(alias)))
				}
			}
		}
	}

	for _, o := range opts {
		r.install(o)
	}

	return nil
}

func (r *Registry) expand(opt *Option) []*Option {
	if len(opt.choices) == 0 {
		return []*Option{opt.clone(r.next())}
	}

	opts := make([]*Option, 0, len(opt.choices))
	group := r.next()

	for _, c := range opt.choices {
		sub := opt.clone(r.next())
		sub.group = group
		sub.short, sub.long = nil, nil
		sub.choices = nil
		sub.description = c.Description

		for _, a := range c.Aliases {
			if isShort(a) {
				sub.short = append(sub.short, a)
			} else {
				sub.long = append(sub.long, a)
			}
		}

		opts = append(opts, sub)
	}

	return opts
}

func (r *Registry) install(o *Option) {
	if o.IsPositional() {
		r.positionals = append(r.positionals, o)
		r.logger.Trace("register positional",
			slog.String("name", o.name), slog.Int("id", o.id))

		return
	}

	for _, alias := range o.Aliases() {
		prev, taken := r.aliases[alias]
		if !taken {
			continue
		}

		stripped := prev.without(alias, r.next())
		r.replace(prev, stripped)

		r.logger.Trace("strip alias",
			slog.String("alias", Flag(alias)),
			slog.Int("from", prev.id),
			slog.Int("clone", stripped.id),
			slog.Int("to", o.id))
	}

	for _, alias := range o.Aliases() {
		r.aliases[alias] = o
	}

	r.options = append(r.options, o)

	r.logger.Trace("register option",
		slog.String("option", o.String()), slog.Int("id", o.id))
}

// replace substitutes repl for prev everywhere. An option left without
// aliases is dropped.
func (r *Registry) replace(prev, repl *Option) {
	for alias, o := range r.aliases {
		if o == prev {
			r.aliases[alias] = repl
		}
	}

	i := slices.Index(r.options, prev)
	if i < 0 {
		return
	}

	if len(repl.short)+len(repl.long) == 0 {
		r.options = slices.Delete(r.options, i, i+1)
	} else {
		r.options[i] = repl
	}
}

// Lookup returns the option owning alias. An unregistered alias falls back
// to the option registered under "@" (single-character aliases) or "@@"
// (longer ones). It returns nil when nothing matches.
func (r *Registry) Lookup(alias string) *Option {
	if alias == "" {
		return nil
	}

	if o, ok := r.aliases[alias]; ok {
		return o
	}

	if isShort(alias) {
		return r.aliases[PlaceholderShort]
	}

	return r.aliases[PlaceholderLong]
}

// Options returns the named options in registration order.
func (r *Registry) Options() iter.Seq[*Option] {
	return slices.Values(slices.Clone(r.options))
}

// Positionals returns the positional options in registration order.
func (r *Registry) Positionals() iter.Seq[*Option] {
	return slices.Values(slices.Clone(r.positionals))
}

// Flags returns every registered alias, except the placeholders, rendered
// as typed on a command line, in sorted order.
func (r *Registry) Flags() []string {
	flags := make([]string, 0, len(r.aliases))

	for _, alias := range slices.Sorted(maps.Keys(r.aliases)) {
		if !isPlaceholder(alias) {
			flags = append(flags, Flag(alias))
		}
	}

	return flags
}

// maxSuggestions bounds the alternatives offered for an unknown option.
const maxSuggestions = 3

// Suggest returns the registered flags that fuzzily match flag, best first.
func (r *Registry) Suggest(flag string) []string {
	flags := r.Flags()
	matches := fuzzy.Find(flag, flags)

	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		out = append(out, m.Str)
	}

	return out
}
