package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/manifest"
)

const sample = `
name: app
checkers:
  port: value matches "^[0-9]+$"
commands:
  build:
    description: Build packages
    options:
      - p|package* Package to build
      - j|jobs{0,1}:uint Parallel jobs
      - V|verbose Verbose output
    args: ["@package", "$jobs?\"1\"", "#verbose"]
  serve:
    options: ["P|port{0,1}:port Listen port", "v|version-check Check"]
    args: ["$port?\"8080\""]
  raw:
    description: Receives its arguments unchanged
  tail:
    options: ["n|lines{0,1}"]
    args: ["?lines", "@"]
`

func planner(t *testing.T) *Planner {
	t.Helper()

	m, err := manifest.Parse(context.Background(), []byte(sample))
	if err != nil {
		t.Fatal(err)
	}

	p, err := New(m)
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func TestPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		argv    []string
		action  Action
		command string
		argv2   []string
	}{
		{name: "no_arguments", argv: nil, action: ActionUsage},
		{name: "global_help", argv: []string{"-h"}, action: ActionHelp},
		{name: "global_version", argv: []string{"--version"}, action: ActionVersion},
		{name: "help_for_command", argv: []string{"--help", "build"}, action: ActionHelp, command: "build"},
		{name: "command_help", argv: []string{"build", "-h"}, action: ActionHelp, command: "build"},
		{
			name:    "build",
			argv:    []string{"build", "--package", "core", "-p", "extra", "-V"},
			action:  ActionInvoke,
			command: "build",
			argv2:   []string{"core", "extra", "1", "1"},
		},
		{
			name:    "build_jobs",
			argv:    []string{"build", "-j", "4"},
			action:  ActionInvoke,
			command: "build",
			argv2:   []string{"4", "0"},
		},
		{
			name:    "raw_passthrough",
			argv:    []string{"raw", "-x", "--y=z", "file"},
			action:  ActionInvoke,
			command: "raw",
			argv2:   []string{"-x", "--y=z", "file"},
		},
		{
			name:    "global_options_stop_at_command",
			argv:    []string{"raw", "-v"},
			action:  ActionVersion,
			command: "raw",
		},
		{
			name:    "control_wins_collision",
			argv:    []string{"serve", "-v"},
			action:  ActionVersion,
			command: "serve",
		},
		{
			name:    "stripped_alias_still_long",
			argv:    []string{"serve", "--version-check", "-P", "9000"},
			action:  ActionInvoke,
			command: "serve",
			argv2:   []string{"9000"},
		},
		{
			name:    "raw_args_source",
			argv:    []string{"tail", "-n", "5", "log.txt"},
			action:  ActionInvoke,
			command: "tail",
			argv2:   []string{"5", "-n", "5", "log.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := planner(t).Plan(context.Background(), tt.argv)
			if err != nil {
				t.Fatalf("Plan(%q) error = %v", tt.argv, err)
			}

			if plan.Action != tt.action {
				t.Errorf("Action = %v, want %v", plan.Action, tt.action)
			}

			var command string
			if plan.Command != nil {
				command = plan.Command.Name
			}

			if command != tt.command {
				t.Errorf("Command = %q, want %q", command, tt.command)
			}

			if diff := cmp.Diff(tt.argv2, plan.Argv); diff != "" {
				t.Errorf("Argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanErrors(t *testing.T) {
	t.Parallel()

	p := planner(t)
	ctx := context.Background()

	_, err := p.Plan(ctx, []string{"buld"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Plan(buld) error = %v, want ErrUnknownCommand", err)
	}

	if !strings.Contains(err.Error(), "did you mean build?") {
		t.Errorf("Plan(buld) error %q has no suggestion", err)
	}

	var ae *getopt.ArgsError

	if _, err := p.Plan(ctx, []string{"--nope"}); !errors.As(err, &ae) || ae.Position != 1 {
		t.Errorf("Plan(--nope) error = %v, want argument error at 1", err)
	}

	if _, err := p.Plan(ctx, []string{"build", "--nope"}); !errors.As(err, &ae) || ae.Position != 1 {
		t.Errorf("Plan(build --nope) error = %v, want argument error at 1", err)
	}

	if _, err := p.Plan(ctx, []string{"serve", "--port", "http"}); !errors.Is(err, getopt.ErrChecker) {
		t.Errorf("Plan(serve --port http) error = %v, want ErrChecker", err)
	}
}

func TestPlanDefaults(t *testing.T) {
	t.Parallel()

	plan, err := planner(t).Plan(context.Background(), []string{"serve"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"8080"}, plan.Argv); diff != "" {
		t.Errorf("Argv mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{}, plan.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryCollisions(t *testing.T) {
	t.Parallel()

	p := planner(t)

	_, err := p.Registry(&manifest.Command{Name: "bad", Options: []string{"x", "x|extra"}})
	if !errors.Is(err, getopt.ErrCollision) {
		t.Errorf("Registry error = %v, want ErrCollision", err)
	}

	r, err := p.Registry(&manifest.Command{Name: "ok", Options: []string{"h|host{0,1} Host"}})
	if err != nil {
		t.Fatal(err)
	}

	if !r.Strict() {
		t.Error("registry of a command with options is not strict")
	}

	if host := r.Lookup("host"); host == nil || len(host.Short()) != 0 {
		t.Errorf("--host = %v, want an option without -h", host)
	}

	r, err = p.Registry(&manifest.Command{Name: "none"})
	if err != nil {
		t.Fatal(err)
	}

	if r.Strict() {
		t.Error("registry of a command without options is strict")
	}
}
