package manifest

import (
	"fmt"

	"github.com/ardnew/argot/check"
	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/param"
	"github.com/ardnew/argot/pkg"
)

// ErrNotFound is returned by [Find] when no manifest exists.
var ErrNotFound = pkg.MakeErrorf("manifest not found")

// CheckerSet compiles the manifest's checkers on top of [check.Builtin].
func (m *Manifest) CheckerSet() (*check.Set, error) {
	return check.New(m.Checkers)
}

// Validate compiles every checker and descriptor in the manifest and
// reports all problems found as one error wrapping [pkg.ErrInvalidManifest].
//
// A command's options must compile, must not collide with one another,
// and may only name known checkers. Its args must be valid parameter
// descriptors.
func (m *Manifest) Validate() error {
	errs := m.Problems()
	if len(errs) == 0 {
		return nil
	}

	return pkg.ErrInvalidManifest.Wrap(errs...)
}

// Problems returns each problem [Manifest.Validate] would report, checkers
// first, then commands in name order.
func (m *Manifest) Problems() []error {
	var errs []error

	checkers, err := m.CheckerSet()
	if err != nil {
		errs = append(errs, err)
		checkers, _ = check.New(nil)
	}

	for _, name := range m.Names(true) {
		for _, err := range m.Commands[name].validate(checkers) {
			errs = append(errs, fmt.Errorf("command %q: %w", name, err))
		}
	}

	return errs
}

func (c *Command) validate(checkers *check.Set) []error {
	var errs []error

	r := getopt.NewRegistry(getopt.WithChecker(checkers))

	for _, d := range c.Options {
		opt, err := getopt.Compile(d)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if name := opt.Checker(); name != "" {
			if _, ok := checkers.Source(name); !ok {
				errs = append(errs, getopt.ErrUnknownChecker.Wrap(fmt.Errorf("%q in %q", name, d)))
			}
		}

		if err := r.RegisterOption(opt, true); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := param.NewConverter(c.Args...); err != nil {
		errs = append(errs, err)
	}

	return errs
}
