package getopt

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// compile parses one descriptor into an unregistered Option.
//
//	descriptor = head [arity] [":" checker] {"[" rule "]"} [space text]
//	head       = alias {"|" alias} | "$" identifier
//	arity      = "?" | "*" | "+" | "{" min ["," [max]] "}"
//	rule       = target {"," target} ["=" source]
func compile(descriptor string) (*Option, error) {
	s := &scanner{input: descriptor}
	opt := &Option{descriptor: descriptor}

	s.skipSpace()

	if s.eof() {
		return nil, s.fail("empty descriptor")
	}

	if err := s.parseHead(opt); err != nil {
		return nil, err
	}

	if err := s.parseArity(opt); err != nil {
		return nil, err
	}

	if s.expect(':') {
		start := s.pos

		opt.checker = s.scanName()
		if opt.checker == "" {
			return nil, s.failAt(start, "expected checker name after ':'")
		}
	}

	for s.peek() == '[' {
		rule, err := s.parseRule()
		if err != nil {
			return nil, err
		}

		opt.rules = append(opt.rules, rule)
	}

	if !s.eof() && !unicode.IsSpace(s.peek()) {
		return nil, s.fail("unexpected %q", s.peek())
	}

	if err := s.parseText(opt); err != nil {
		return nil, err
	}

	if len(opt.rules) == 0 {
		opt.rules = defaultRules(opt)
	}

	return opt, nil
}

func defaultRules(opt *Option) []Rule {
	if opt.IsPositional() {
		return []Rule{{Type: RuleValue, To: []Dest{Key(opt.name)}}}
	}

	return []Rule{{Type: RuleValue, To: []Dest{{Kind: DestLong}, {Kind: DestShort}}}}
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) eof() bool { return s.pos >= len(s.input) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])

	return r
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	_, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size
}

func (s *scanner) expect(r rune) bool {
	if !s.eof() && s.peek() == r {
		s.advance()

		return true
	}

	return false
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

func (s *scanner) fail(format string, args ...any) error {
	return s.failAt(s.pos, format, args...)
}

func (s *scanner) failAt(offset int, format string, args ...any) error {
	return ErrDescriptor.
		With(slog.String("descriptor", s.input), slog.Int("offset", offset)).
		Wrap(fmt.Errorf("%q at offset %d: %s", s.input, offset, fmt.Sprintf(format, args...)))
}

func isNameStart(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

func isNameRune(r rune) bool {
	return isNameStart(r) || r == '.' || r == '-'
}

// scanName consumes [A-Za-z0-9_][A-Za-z0-9_.-]* and returns it, or "".
func (s *scanner) scanName() string {
	start := s.pos

	if s.eof() || !isNameStart(s.peek()) {
		return ""
	}

	for !s.eof() && isNameRune(s.peek()) {
		s.advance()
	}

	return s.input[start:s.pos]
}

// scanPlaceholder consumes a run of '@' and returns it, or "".
func (s *scanner) scanPlaceholder() string {
	start := s.pos

	for s.peek() == '@' {
		s.advance()
	}

	return s.input[start:s.pos]
}

func (s *scanner) parseHead(opt *Option) error {
	if s.expect('$') {
		start := s.pos

		opt.name = s.scanName()
		if opt.name == "" {
			return s.failAt(start, "expected positional name after '$'")
		}

		return nil
	}

	for {
		start := s.pos

		alias := s.scanPlaceholder()

		switch {
		case alias == "":
			alias = s.scanName()
			if alias == "" {
				return s.fail("expected alias")
			}

		case len(alias) > len(PlaceholderLong):
			return s.failAt(start, "alias %q is not a valid placeholder", alias)
		}

		if isShort(alias) {
			opt.short = append(opt.short, alias)
		} else {
			opt.long = append(opt.long, alias)
		}

		if !s.expect('|') {
			break
		}
	}

	slices.Sort(opt.short)
	slices.Sort(opt.long)

	opt.short = slices.Compact(opt.short)
	opt.long = slices.Compact(opt.long)

	return nil
}

func (s *scanner) parseArity(opt *Option) error {
	switch {
	case s.expect('?'):
		opt.argType, opt.min, opt.max = ArgOptional, 0, 1

	case s.expect('*'):
		opt.argType, opt.min, opt.max = ArgArray, 0, Unbounded

	case s.expect('+'):
		opt.argType, opt.min, opt.max = ArgArray, 1, Unbounded

	case s.peek() == '{':
		return s.parseBounds(opt)

	default:
		opt.argType, opt.min, opt.max = ArgNone, 0, 1
	}

	return nil
}

func (s *scanner) parseBounds(opt *Option) error {
	start := s.pos

	s.advance() // {

	lo, ok := s.scanInt()
	if !ok {
		return s.fail("expected minimum count")
	}

	hi := lo

	if s.expect(',') {
		if s.peek() == '}' {
			hi = Unbounded
		} else if hi, ok = s.scanInt(); !ok {
			return s.fail("expected maximum count")
		}
	}

	if !s.expect('}') {
		return s.fail("expected '}'")
	}

	if hi != Unbounded && (hi < 1 || hi < lo) {
		return s.failAt(start, "invalid bounds {%d,%d}", lo, hi)
	}

	opt.min, opt.max = lo, hi

	if hi == Unbounded || hi > 1 {
		opt.argType = ArgArray
	} else {
		opt.argType = ArgRequired
	}

	return nil
}

func (s *scanner) scanInt() (int, bool) {
	start := s.pos

	for !s.eof() && s.peek() >= '0' && s.peek() <= '9' {
		s.advance()
	}

	n, err := strconv.Atoi(s.input[start:s.pos])

	return n, err == nil
}

func (s *scanner) parseRule() (Rule, error) {
	var rule Rule

	s.advance() // [

	for {
		start := s.pos

		target := s.scanPlaceholder()

		switch {
		case target == "":
			target = s.scanName()
			if target == "" {
				return rule, s.fail("expected destination")
			}

		case !isPlaceholder(target):
			return rule, s.failAt(start, "destination %q is not a valid placeholder", target)
		}

		rule.To = append(rule.To, parseDest(target))

		if !s.expect(',') {
			break
		}
	}

	if s.expect('=') {
		if err := s.parseSource(&rule); err != nil {
			return rule, err
		}
	}

	if !s.expect(']') {
		return rule, s.fail("expected ']'")
	}

	return rule, nil
}

func (s *scanner) parseSource(rule *Rule) error {
	start := s.pos

	switch r := s.peek(); {
	case r == '$':
		s.advance()

		if name := s.scanName(); name != "" {
			rule.Type, rule.From = RuleVar, name
		} else {
			rule.Type = RuleValue
		}

	case r == '@':
		switch s.scanPlaceholder() {
		case PlaceholderShort:
			rule.Type = RuleShort
		case PlaceholderLong:
			rule.Type = RuleLong
		case PlaceholderAll:
			rule.Type = RuleAll
		default:
			return s.failAt(start, "invalid alias-list source")
		}

	case r == '"':
		lit, err := s.scanQuoted()
		if err != nil {
			return err
		}

		rule.Type, rule.From = RuleConst, lit

	case r == '\'':
		s.advance()

		end := strings.IndexByte(s.input[s.pos:], '\'')
		if end < 0 {
			return s.failAt(start, "unterminated string")
		}

		rule.Type, rule.From = RuleConst, s.input[s.pos:s.pos+end]
		s.pos += end + 1

	default:
		name := s.scanName()
		if name == "" {
			return s.fail("expected source")
		}

		rule.Type, rule.From = RuleConst, name
	}

	return nil
}

// scanQuoted consumes a Go double-quoted string literal.
func (s *scanner) scanQuoted() (string, error) {
	start := s.pos

	s.advance() // "

	for !s.eof() {
		switch s.peek() {
		case '\\':
			s.advance()
			s.advance()

			continue

		case '"':
			s.advance()

			lit, err := strconv.Unquote(s.input[start:s.pos])
			if err != nil {
				return "", s.failAt(start, "invalid string literal: %v", err)
			}

			return lit, nil
		}

		s.advance()
	}

	return "", s.failAt(start, "unterminated string")
}

type segment struct {
	aliases []string
	start   int // offset of '['
	body    int // offset after ']'
}

// parseText consumes the free text, splitting out choice segments.
func (s *scanner) parseText(opt *Option) error {
	base := s.pos
	text := s.input[base:]
	s.pos = len(s.input)

	var segs []segment

	if !opt.IsPositional() {
		segs = findSegments(text, opt.Aliases())
	}

	if len(segs) == 0 {
		opt.description = strings.TrimSpace(text)

		return nil
	}

	covered := make(map[string]bool)
	lines := make([]string, 0, len(segs)+1)

	if lead := strings.TrimSpace(text[:segs[0].start]); lead != "" {
		lines = append(lines, lead)
	}

	for i, seg := range segs {
		end := len(text)
		if i+1 < len(segs) {
			end = segs[i+1].start
		}

		for _, a := range seg.aliases {
			if covered[a] {
				return s.failAt(base+seg.start, "alias %s appears in more than one choice", Flag(a))
			}

			covered[a] = true
		}

		desc := strings.TrimSpace(text[seg.body:end])
		opt.choices = append(opt.choices, Choice{Aliases: seg.aliases, Description: desc})
		lines = append(lines, desc)
	}

	for _, a := range opt.Aliases() {
		if !covered[a] {
			return s.failAt(base, "alias %s is not covered by any choice", Flag(a))
		}
	}

	opt.description = strings.Join(lines, "\n")

	return nil
}

// findSegments locates "[a|b]" groups in text whose names are all members
// of aliases. Other bracketed text is left alone.
func findSegments(text string, aliases []string) []segment {
	var segs []segment

	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}

		end := strings.IndexByte(text[i:], ']')
		if end < 0 {
			break
		}

		names := strings.Split(text[i+1:i+end], "|")
		if slices.ContainsFunc(names, func(n string) bool {
			return !slices.Contains(aliases, n)
		}) {
			continue
		}

		slices.Sort(names)
		segs = append(segs, segment{
			aliases: slices.Compact(names),
			start:   i,
			body:    i + end + 1,
		})
		i += end
	}

	return segs
}
