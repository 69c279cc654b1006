package getopt

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ArgType classifies how many values an option consumes per occurrence and
// how repeated occurrences are stored.
type ArgType uint8

const (
	// ArgNone options are flags; each occurrence binds true.
	ArgNone ArgType = iota
	// ArgRequired options take exactly one value per occurrence.
	ArgRequired
	// ArgOptional options take a value only when it is attached
	// (--name=value or -nvalue).
	ArgOptional
	// ArgArray options take one value per occurrence and accumulate them.
	ArgArray
)

func (a ArgType) String() string {
	switch a {
	case ArgNone:
		return "none"
	case ArgRequired:
		return "required"
	case ArgOptional:
		return "optional"
	case ArgArray:
		return "array"
	default:
		return "ArgType(" + strconv.Itoa(int(a)) + ")"
	}
}

// TakesValue reports whether an occurrence may carry a value.
func (a ArgType) TakesValue() bool { return a != ArgNone }

// Placeholder aliases and destinations.
//
// As aliases, "@" and "@@" register a fallback option that matches any
// unregistered short or long alias. As destinations and rule sources they
// stand for the matched option's short ("@"), long ("@@"), or combined
// ("@@@") alias lists.
const (
	PlaceholderShort = "@"
	PlaceholderLong  = "@@"
	PlaceholderAll   = "@@@"
)

func isPlaceholder(s string) bool {
	return s == PlaceholderShort || s == PlaceholderLong || s == PlaceholderAll
}

// isShort reports whether an alias is in the short set: exactly one rune.
func isShort(alias string) bool { return utf8.RuneCountInString(alias) == 1 }

// Flag renders an alias the way a user types it, or the fallback
// placeholders as <default-short> and <default-long>.
func Flag(alias string) string {
	switch {
	case alias == PlaceholderShort:
		return "<default-short>"
	case alias == PlaceholderLong:
		return "<default-long>"
	case isShort(alias):
		return "-" + alias
	default:
		return "--" + alias
	}
}

// DestKind selects how a [Dest] resolves to result keys.
type DestKind uint8

const (
	DestKey   DestKind = iota // a literal key
	DestShort                 // every short alias of the matched option
	DestLong                  // every long alias of the matched option
	DestAll                   // every alias of the matched option
)

// Dest is a binding destination.
type Dest struct {
	Kind DestKind
	Key  string
}

// Key returns a literal destination.
func Key(key string) Dest { return Dest{Kind: DestKey, Key: key} }

func parseDest(s string) Dest {
	switch s {
	case PlaceholderShort:
		return Dest{Kind: DestShort}
	case PlaceholderLong:
		return Dest{Kind: DestLong}
	case PlaceholderAll:
		return Dest{Kind: DestAll}
	default:
		return Key(s)
	}
}

func (d Dest) String() string {
	switch d.Kind {
	case DestShort:
		return PlaceholderShort
	case DestLong:
		return PlaceholderLong
	case DestAll:
		return PlaceholderAll
	default:
		return d.Key
	}
}

// RuleType selects how a [Rule] computes the value it binds.
type RuleType uint8

const (
	RuleValue RuleType = iota // the matched value
	RuleVar                   // the value already bound at From
	RuleConst                 // From, literally
	RuleShort                 // the matched option's short aliases
	RuleLong                  // the matched option's long aliases
	RuleAll                   // all of the matched option's aliases
)

// Rule computes a value from a match and binds it to every destination.
type Rule struct {
	Type RuleType
	From string
	To   []Dest
}

// String renders the rule in descriptor bracket syntax, without brackets.
func (r Rule) String() string {
	to := make([]string, len(r.To))
	for i, d := range r.To {
		to[i] = d.String()
	}

	lhs := strings.Join(to, ",")

	switch r.Type {
	case RuleVar:
		return lhs + "=$" + r.From
	case RuleConst:
		return lhs + "=" + strconv.Quote(r.From)
	case RuleShort:
		return lhs + "=" + PlaceholderShort
	case RuleLong:
		return lhs + "=" + PlaceholderLong
	case RuleAll:
		return lhs + "=" + PlaceholderAll
	default:
		return lhs
	}
}

func (r Rule) clone() Rule {
	r.To = slices.Clone(r.To)

	return r
}

// Choice is one member of a one-of group: a subset of the option's aliases
// with its own description.
type Choice struct {
	Aliases     []string
	Description string
}

// Unbounded is the [Option.Max] sentinel for options that may repeat
// without limit.
const Unbounded = -1

// Option is a compiled option or positional definition. It is immutable;
// the registry derives modified copies rather than changing one in place.
type Option struct {
	descriptor  string
	name        string
	checker     string
	description string
	short       []string
	long        []string
	rules       []Rule
	choices     []Choice
	id          int
	group       int
	min         int
	max         int
	argType     ArgType
}

// ID returns the registry-issued identifier, or 0 before registration.
func (o *Option) ID() int { return o.id }

// Descriptor returns the text the option was compiled from.
func (o *Option) Descriptor() string { return o.descriptor }

// IsPositional reports whether the option binds bare values rather than
// matching an alias.
func (o *Option) IsPositional() bool { return o.name != "" }

// Name returns a positional's destination identifier.
func (o *Option) Name() string { return o.name }

// Short returns the sorted short aliases.
func (o *Option) Short() []string { return slices.Clone(o.short) }

// Long returns the sorted long aliases.
func (o *Option) Long() []string { return slices.Clone(o.long) }

// Aliases returns the short then long aliases.
func (o *Option) Aliases() []string { return slices.Concat(o.short, o.long) }

// ArgType returns the option's argument classification.
func (o *Option) ArgType() ArgType { return o.argType }

// Min returns the minimum number of occurrences.
func (o *Option) Min() int { return o.min }

// Max returns the maximum number of occurrences, and false when unbounded.
func (o *Option) Max() (int, bool) { return o.max, o.max != Unbounded }

// Checker returns the name of the value checker, or "".
func (o *Option) Checker() string { return o.checker }

// Rules returns a copy of the rewrite rules.
func (o *Option) Rules() []Rule {
	out := make([]Rule, len(o.rules))
	for i, r := range o.rules {
		out[i] = r.clone()
	}

	return out
}

// Description returns the help text, or "" when absent.
func (o *Option) Description() string { return o.description }

// Choices returns the one-of group members, or nil.
func (o *Option) Choices() []Choice {
	out := make([]Choice, len(o.choices))
	for i, c := range o.choices {
		out[i] = Choice{Aliases: slices.Clone(c.Aliases), Description: c.Description}
	}

	return out
}

// Group returns the id shared by the choices of one registered one-of
// group, or 0.
func (o *Option) Group() int { return o.group }

// countKey identifies the occurrence counter o draws from.
func (o *Option) countKey() int {
	if o.group != 0 {
		return o.group
	}

	return o.id
}

// full reports whether n occurrences reach the maximum.
func (o *Option) full(n int) bool { return o.max != Unbounded && n >= o.max }

// String renders the option for messages: "-p, --package" for named options
// and "<name>" for positionals.
func (o *Option) String() string {
	if o.IsPositional() {
		return "<" + o.name + ">"
	}

	flags := make([]string, 0, len(o.short)+len(o.long))
	for _, a := range o.Aliases() {
		flags = append(flags, Flag(a))
	}

	return strings.Join(flags, ", ")
}

// display names the option by a single alias, preferring long ones.
func (o *Option) display() string {
	switch {
	case o.IsPositional():
		return "<" + o.name + ">"
	case len(o.long) > 0:
		return Flag(o.long[0])
	case len(o.short) > 0:
		return Flag(o.short[0])
	default:
		return "<option>"
	}
}

// clone returns a deep copy carrying id.
func (o *Option) clone(id int) *Option {
	c := *o
	c.id = id
	c.short = slices.Clone(o.short)
	c.long = slices.Clone(o.long)
	c.rules = o.Rules()
	c.choices = o.Choices()

	return &c
}

// without returns a copy carrying id that no longer lists alias.
func (o *Option) without(alias string, id int) *Option {
	c := o.clone(id)
	c.short = slices.DeleteFunc(c.short, func(s string) bool { return s == alias })
	c.long = slices.DeleteFunc(c.long, func(s string) bool { return s == alias })

	return c
}

// aliasKeys returns the aliases selected by kind with placeholders removed.
func (o *Option) aliasKeys(kind DestKind) []string {
	var src []string

	switch kind {
	case DestShort:
		src = o.short
	case DestLong:
		src = o.long
	case DestAll:
		src = o.Aliases()
	default:
		return nil
	}

	keys := make([]string, 0, len(src))

	for _, a := range src {
		if !isPlaceholder(a) {
			keys = append(keys, a)
		}
	}

	return keys
}
