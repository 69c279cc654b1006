// Package dispatch plans the invocation of a manifest command from a raw
// argument vector.
//
// Planning runs two parses. The global parse reads the control options and
// the command name, stopping at the first bare value. The command parse
// reads the remaining arguments against the command's own options merged
// with the control options. The command's parameter descriptors then turn
// the result into the argv the command would be invoked with. Nothing is
// executed.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
	"github.com/ardnew/argot/manifest"
	"github.com/ardnew/argot/param"
)

// Result keys bound by [ControlDescriptors].
const (
	KeyHelp    = "__help__"
	KeyVersion = "__version__"
	KeyCommand = "command"
	KeyArgs    = "args"
)

// ControlDescriptors are the options every parse context understands.
//
//nolint:gochecknoglobals
var ControlDescriptors = []string{
	"h|help[" + KeyHelp + "] Show help",
	"v|version[" + KeyVersion + "] Show version",
	"$" + KeyCommand + "? Command to be called",
	"$" + KeyArgs + "* Command arguments",
}

// ErrUnknownCommand is returned when argv names a command the manifest
// does not define.
var ErrUnknownCommand = getopt.NewError("unknown command")

// Action is what a [Plan] asks the caller to do.
type Action uint8

const (
	// ActionUsage shows the command listing; no command was given.
	ActionUsage Action = iota
	// ActionHelp shows help, for [Plan.Command] when it is set.
	ActionHelp
	// ActionVersion shows version information.
	ActionVersion
	// ActionInvoke runs [Plan.Command] with [Plan.Argv].
	ActionInvoke
)

func (a Action) String() string {
	switch a {
	case ActionUsage:
		return "usage"
	case ActionHelp:
		return "help"
	case ActionVersion:
		return "version"
	case ActionInvoke:
		return "invoke"
	default:
		return "Action(" + strconv.Itoa(int(a)) + ")"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Plan is the outcome of planning one argument vector.
type Plan struct {
	// Action is what the caller should do.
	Action Action `json:"action" yaml:"action"`
	// Command is the selected command, or nil.
	Command *manifest.Command `json:"command,omitempty" yaml:"command,omitempty"`
	// Global is the result of the global parse.
	Global getopt.Result `json:"global" yaml:"global"`
	// Options is the result of the command parse.
	Options getopt.Result `json:"options,omitempty" yaml:"options,omitempty"`
	// Args are the raw arguments following the command name.
	Args []string `json:"args" yaml:"args"`
	// Argv is the argument list the command is invoked with.
	Argv []string `json:"argv,omitempty" yaml:"argv,omitempty"`
}

// LogValue implements [slog.LogValuer].
func (p *Plan) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("action", p.Action.String())}

	if p.Command != nil {
		attrs = append(attrs, slog.String("command", p.Command.Name))
	}

	if p.Action == ActionInvoke {
		attrs = append(attrs, slog.Any("argv", p.Argv))
	}

	return slog.GroupValue(attrs...)
}

// Setting configures a [Planner].
type Setting func(*Planner)

// WithChecker overrides the checker built from the manifest.
func WithChecker(c getopt.Checker) Setting {
	return func(p *Planner) { p.checker = c }
}

// WithLogger sets the logger passed to every registry.
func WithLogger(l log.Logger) Setting {
	return func(p *Planner) { p.logger = l }
}

// Planner plans invocations of one manifest's commands.
type Planner struct {
	manifest *manifest.Manifest
	checker  getopt.Checker
	logger   log.Logger
}

// New returns a Planner for m. Unless [WithChecker] is given, option
// values are checked by the manifest's checkers.
func New(m *manifest.Manifest, settings ...Setting) (*Planner, error) {
	p := &Planner{manifest: m}

	for _, s := range settings {
		s(p)
	}

	if p.checker == nil {
		set, err := m.CheckerSet()
		if err != nil {
			return nil, err
		}

		p.checker = set
	}

	return p, nil
}

// Global returns the registry of the global parse.
func (p *Planner) Global() (*getopt.Registry, error) {
	r := getopt.NewRegistry(
		getopt.WithOrder(getopt.OrderPOSIX),
		getopt.WithChecker(p.checker),
		getopt.WithLogger(p.logger),
	)

	if err := r.RegisterAll(true, ControlDescriptors...); err != nil {
		return nil, err
	}

	return r, nil
}

// Registry returns the registry of the command parse for c.
//
// The command's options are registered strictly, so colliding options are
// an authoring error. The control options are then registered leniently
// and take over any alias the command also defines. Unknown options and
// surplus values are rejected only when the command declares options.
func (p *Planner) Registry(c *manifest.Command) (*getopt.Registry, error) {
	r := getopt.NewRegistry(
		getopt.WithStrict(len(c.Options) > 0),
		getopt.WithChecker(p.checker),
		getopt.WithLogger(p.logger),
	)

	if err := r.RegisterAll(true, c.Options...); err != nil {
		return nil, err
	}

	if err := r.RegisterAll(false, ControlDescriptors...); err != nil {
		return nil, err
	}

	return r, nil
}

// Plan parses argv and decides what to do.
//
// Invalid arguments fail with an [*getopt.ArgsError]. A command name the
// manifest does not define fails with [ErrUnknownCommand].
func (p *Planner) Plan(ctx context.Context, argv []string) (*Plan, error) {
	global, err := p.Global()
	if err != nil {
		return nil, err
	}

	res, err := global.Parse(argv)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Global: res, Args: res.Strings(KeyArgs)}
	if plan.Args == nil {
		plan.Args = []string{}
	}

	name, _ := res.String(KeyCommand)

	if name != "" {
		cmd, ok := p.manifest.Command(name)
		if !ok {
			return nil, p.unknown(name)
		}

		plan.Command = cmd
	}

	switch {
	case res.Bool(KeyHelp):
		plan.Action = ActionHelp

		return p.done(ctx, plan), nil

	case res.Bool(KeyVersion):
		plan.Action = ActionVersion

		return p.done(ctx, plan), nil

	case plan.Command == nil:
		plan.Action = ActionUsage

		return p.done(ctx, plan), nil
	}

	r, err := p.Registry(plan.Command)
	if err != nil {
		return nil, err
	}

	b, err := r.Bind(plan.Args)
	if err != nil {
		return nil, err
	}

	plan.Options = b.Values

	switch {
	case b.Values.Bool(KeyHelp):
		plan.Action = ActionHelp

	case b.Values.Bool(KeyVersion):
		plan.Action = ActionVersion

	default:
		plan.Action = ActionInvoke

		if plan.Argv, err = p.argv(plan.Command, b.Values, plan.Args); err != nil {
			return nil, err
		}
	}

	return p.done(ctx, plan), nil
}

func (p *Planner) argv(c *manifest.Command, res getopt.Result, args []string) ([]string, error) {
	if !c.HasArgs {
		return args, nil
	}

	conv, err := param.NewConverter(c.Args...)
	if err != nil {
		return nil, err
	}

	return conv.Convert(res, args), nil
}

func (p *Planner) done(ctx context.Context, plan *Plan) *Plan {
	p.logger.DebugContext(ctx, "planned", slog.Any("plan", plan))

	return plan
}

func (p *Planner) unknown(name string) error {
	msg := strconv.Quote(name)

	matches := fuzzy.Find(name, p.manifest.Names(false))
	if len(matches) > 0 {
		alts := make([]string, 0, min(len(matches), 3))
		for _, m := range matches[:min(len(matches), 3)] {
			alts = append(alts, m.Str)
		}

		msg += " (did you mean " + strings.Join(alts, ", ") + "?)"
	}

	return ErrUnknownCommand.With(slog.String("command", name)).Wrap(fmt.Errorf("%s", msg))
}
