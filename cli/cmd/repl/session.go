package repl

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/google/shlex"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
)

// Session is the option set the REPL parses argument lines against.
//
// The registry is rebuilt from the descriptor list whenever the list or the
// parse settings change, so a session can always be replayed from its
// descriptors.
type Session struct {
	descriptors []string
	lenient     bool
	posix       bool
	checker     getopt.Checker
	logger      log.Logger
	registry    *getopt.Registry
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithLenient starts the session in lenient mode.
func WithLenient(lenient bool) SessionOption {
	return func(s *Session) { s.lenient = lenient }
}

// WithPOSIX starts the session with POSIX argument order.
func WithPOSIX(posix bool) SessionOption {
	return func(s *Session) { s.posix = posix }
}

// NewSession returns a session over descriptors. A nil checker accepts
// every value.
func NewSession(
	descriptors []string,
	checker getopt.Checker,
	logger log.Logger,
	opts ...SessionOption,
) (*Session, error) {
	if checker == nil {
		checker = getopt.NopChecker
	}

	s := &Session{checker: checker, logger: logger}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(descriptors); err != nil {
		return nil, err
	}

	return s, nil
}

// Descriptors returns the session's descriptors in registration order.
func (s *Session) Descriptors() []string { return slices.Clone(s.descriptors) }

// Registry returns the registry built from the current descriptors.
func (s *Session) Registry() *getopt.Registry { return s.registry }

// Lenient reports whether unknown input passes through.
func (s *Session) Lenient() bool { return s.lenient }

// POSIX reports whether option scanning stops at the first bare value.
func (s *Session) POSIX() bool { return s.posix }

// Load replaces the descriptors. On error the session is unchanged.
func (s *Session) Load(descriptors []string) error {
	r, err := s.build(descriptors, s.lenient, s.posix)
	if err != nil {
		return err
	}

	s.descriptors, s.registry = slices.Clone(descriptors), r

	return nil
}

// Add appends one descriptor. On error the session is unchanged.
func (s *Session) Add(descriptor string) error {
	return s.Load(append(slices.Clone(s.descriptors), strings.TrimSpace(descriptor)))
}

// Remove drops the descriptor at the 1-based index i.
func (s *Session) Remove(i int) error {
	if i < 1 || i > len(s.descriptors) {
		return ErrOutOfBounds
	}

	return s.Load(slices.Delete(slices.Clone(s.descriptors), i-1, i))
}

// SetLenient switches between strict and lenient registration and parsing.
func (s *Session) SetLenient(lenient bool) error {
	r, err := s.build(s.descriptors, lenient, s.posix)
	if err != nil {
		return err
	}

	s.lenient, s.registry = lenient, r

	return nil
}

// SetPOSIX switches between GNU and POSIX argument order.
func (s *Session) SetPOSIX(posix bool) error {
	r, err := s.build(s.descriptors, s.lenient, posix)
	if err != nil {
		return err
	}

	s.posix, s.registry = posix, r

	return nil
}

func (s *Session) build(descriptors []string, lenient, posix bool) (*getopt.Registry, error) {
	order := getopt.OrderGNU
	if posix {
		order = getopt.OrderPOSIX
	}

	r := getopt.NewRegistry(
		getopt.WithStrict(!lenient),
		getopt.WithOrder(order),
		getopt.WithChecker(s.checker),
		getopt.WithLogger(s.logger),
	)

	if err := r.RegisterAll(!lenient, descriptors...); err != nil {
		return nil, err
	}

	return r, nil
}

// Parse splits line into arguments with shell quoting rules and binds
// them.
func (s *Session) Parse(line string) (*getopt.Binding, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, ErrSplit.Wrap(err)
	}

	s.logger.Trace("repl parse", slog.Any("args", args))

	return s.registry.Bind(args)
}
