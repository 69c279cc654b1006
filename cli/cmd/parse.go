package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
)

// Parse parses an argument vector against an option set and prints the
// bound values.
type Parse struct {
	Options `embed:""`

	Counts bool   `help:"Include the occurrence count of each option."`
	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"f"`

	Args []string `arg:"" help:"Arguments to parse; put them after --." optional:""`
}

// parsed is the encoded form of a [getopt.Binding].
type parsed struct {
	Values getopt.Result  `json:"values"           yaml:"values"`
	Rest   []string       `json:"rest,omitempty"   yaml:"rest,omitempty"`
	Counts map[string]int `json:"counts,omitempty" yaml:"counts,omitempty"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	set, err := p.load(ctx)
	if err != nil {
		return err
	}

	b, err := set.registry.Bind(p.Args)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "parsed",
		slog.Int("args", len(p.Args)),
		slog.Int("keys", len(b.Values)),
		slog.Int("rest", len(b.Rest)),
	)

	out := parsed{Values: b.Values, Rest: b.Rest}
	if p.Counts {
		out.Counts = counts(set.registry, b)
	}

	w := outputFrom(ctx)

	if p.Format != FormatText {
		return encode(ctx, w, p.Format, out)
	}

	if err := writeResult(w, out.Values); err != nil {
		return err
	}

	for _, name := range sortedKeys(out.Counts) {
		if _, err := fmt.Fprintf(w, "#%s=%d\n", name, out.Counts[name]); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if len(out.Rest) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "--"); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return writeLines(w, out.Rest)
}

// counts maps the display name of every option that matched to its
// occurrence count.
func counts(r *getopt.Registry, b *getopt.Binding) map[string]int {
	out := make(map[string]int)

	for opt := range r.Options() {
		if n := b.Count(opt); n > 0 {
			out[opt.String()] = n
		}
	}

	for opt := range r.Positionals() {
		if n := b.Count(opt); n > 0 {
			out[opt.String()] = n
		}
	}

	return out
}
