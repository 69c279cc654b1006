// Package check implements named value checkers as expr-lang expressions.
//
// Each checker is a boolean expression over two variables: value, the
// candidate argument (a string, or true for flags), and name, the checker's
// own name. A value is accepted when the expression evaluates to true.
//
//	port: value matches "^[0-9]+$" && int(value) < 65536
package check

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/argot/getopt"
)

// ErrCompile is returned for checker expressions that fail to compile.
var ErrCompile = getopt.NewError("invalid checker expression")

// Builtin holds the checkers every [Set] starts with.
var Builtin = map[string]string{
	"int":      `value matches "^[-+]?[0-9]+$"`,
	"uint":     `value matches "^[0-9]+$"`,
	"number":   `value matches "^[-+]?([0-9]+[.]?[0-9]*|[.][0-9]+)([eE][-+]?[0-9]+)?$"`,
	"bool":     `value == true || lower(value) in ["true", "false", "1", "0", "yes", "no", "on", "off"]`,
	"nonempty": `value != ""`,
}

// Set is a collection of compiled checkers. It implements [getopt.Checker]
// and is safe for concurrent use.
type Set struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	sources  map[string]string
}

// New returns a Set holding the [Builtin] checkers plus defs, which may
// override them.
func New(defs map[string]string) (*Set, error) {
	s := &Set{
		programs: make(map[string]*vm.Program),
		sources:  make(map[string]string),
	}

	for _, src := range []map[string]string{Builtin, defs} {
		for _, name := range slices.Sorted(maps.Keys(src)) {
			if err := s.Add(name, src[name]); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func env(name string, value any) map[string]any {
	return map[string]any{"name": name, "value": value}
}

// Add compiles source and stores it as checker name, replacing any checker
// of the same name.
func (s *Set) Add(name, source string) error {
	program, err := expr.Compile(source, expr.Env(env("", any(nil))), expr.AsBool())
	if err != nil {
		return ErrCompile.Wrap(err).
			With(slog.String("checker", name), slog.String("source", source))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.programs[name] = program
	s.sources[name] = source

	return nil
}

// Names returns the checker names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.programs))
}

// Source returns the expression of checker name.
func (s *Set) Source(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src, ok := s.sources[name]

	return src, ok
}

// Check runs checker name against value and returns value unchanged when
// it is accepted. A nil value, from an optional option given without one,
// is always accepted.
func (s *Set) Check(name string, value any) (any, error) {
	s.mu.RLock()
	program, ok := s.programs[name]
	s.mu.RUnlock()

	if !ok {
		return nil, getopt.ErrUnknownChecker.With(slog.String("checker", name)).
			Wrap(fmt.Errorf("%q", name))
	}

	if value == nil {
		return nil, nil
	}

	out, err := expr.Run(program, env(name, value))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if ok, _ := out.(bool); !ok {
		return nil, fmt.Errorf("not a valid %s", name)
	}

	return value, nil
}
