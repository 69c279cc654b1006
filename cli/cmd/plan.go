package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/argot/dispatch"
	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
	"github.com/ardnew/argot/manifest"
)

// Plan dry-runs manifest dispatch: it parses an argument vector the way a
// manifest-driven console would and shows what it would do. Nothing is
// executed.
type Plan struct {
	Manifest string `help:"Manifest name or path (default ${manifest})." short:"m"`
	Format   string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"f"`

	Args []string `arg:"" help:"Argument vector to plan; put it after --." optional:""`
}

// Run executes the plan command.
func (p *Plan) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := loadManifest(ctx, p.Manifest)
	if err != nil {
		return err
	}

	planner, err := dispatch.New(m, dispatch.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	plan, err := planner.Plan(ctx, p.Args)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "plan", slog.Any("plan", plan))

	w := outputFrom(ctx)

	if p.Format != FormatText {
		return encode(ctx, w, p.Format, plan)
	}

	switch plan.Action {
	case dispatch.ActionHelp:
		if plan.Command != nil {
			return writeHelp(w, plan.Command)
		}

		return writeUsage(w, m)

	case dispatch.ActionVersion:
		if _, err := fmt.Fprintln(w, strings.TrimSpace(m.Name+" "+m.Version)); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil

	case dispatch.ActionInvoke:
		return writeLines(w, append([]string{plan.Command.Name}, plan.Argv...))

	default:
		return writeUsage(w, m)
	}
}

func writeUsage(w io.Writer, m *manifest.Manifest) error {
	var b strings.Builder

	if m.Description != "" {
		b.WriteString(m.Description + "\n\n")
	}

	b.WriteString("Commands:\n")

	names := m.Names(false)
	width := 0

	for _, name := range names {
		width = max(width, len(name))
	}

	for _, name := range names {
		c, _ := m.Command(name)
		fmt.Fprintf(&b, "  %-*s  %s\n", width, name, c.Description)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func writeHelp(w io.Writer, c *manifest.Command) error {
	var b strings.Builder

	b.WriteString(c.Name + "\n")

	if text := strings.TrimSpace(c.Description + "\n\n" + c.Help); text != "" {
		b.WriteString("\n" + text + "\n")
	}

	var rows [][2]string

	for _, desc := range c.Options {
		opt, err := getopt.Compile(desc)
		if err != nil {
			return err
		}

		rows = append(rows, [2]string{opt.String(), strings.ReplaceAll(opt.Description(), "\n", "; ")})
	}

	if len(rows) > 0 {
		b.WriteString("\nOptions:\n")

		width := 0
		for _, r := range rows {
			width = max(width, len(r[0]))
		}

		for _, r := range rows {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, r[0], r[1])
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
