package pkg

import (
	"fmt"
	"strings"
)

// Error is a chain of errors, innermost first.
//
// It is used where several independent failures are collected before
// reporting, such as validating every command of a manifest.
type Error []error

// Sentinel errors shared by the argot packages and the CLI.
var (
	// ErrReadInput wraps I/O failures while reading a manifest, result map,
	// or configuration file.
	ErrReadInput = MakeErrorf("failed to read input")

	// ErrInvalidFormat is returned for an unrecognized output or input
	// format name.
	ErrInvalidFormat = MakeErrorf("invalid format")

	// ErrJSONMarshal wraps JSON encoding failures.
	ErrJSONMarshal = MakeErrorf("JSON marshal error")

	// ErrYAMLMarshal wraps YAML encoding failures.
	ErrYAMLMarshal = MakeErrorf("YAML marshal error")

	// ErrInvalidManifest is returned when a manifest fails validation.
	ErrInvalidManifest = MakeErrorf("invalid manifest")
)

// MakeError flattens errs into a chain, dropping nil values.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the chain with ": ".
func (e Error) Error() string {
	parts := make([]string, 0, len(e))

	for _, err := range e {
		parts = append(parts, err.Error())
	}

	return strings.Join(parts, ": ")
}

// Wrap appends errs to a copy of the chain.
func (e Error) Wrap(errs ...error) Error {
	out := make(Error, 0, len(e)+len(errs))

	return append(append(out, e...), errs...)
}

// Wrapf appends a formatted error to a copy of the chain.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors of the chain for [errors.Is] and [errors.As].
func (e Error) Unwrap() []error { return e }

// Is reports whether target is a chain whose errors all appear, by message,
// at the start of e. This lets a wrapped sentinel match itself.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if t[i].Error() != e[i].Error() {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively flattens an error tree, innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case Error:
		for _, wrapped := range e {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain

	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
