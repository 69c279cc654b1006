package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
	"github.com/ardnew/argot/param"
	"github.com/ardnew/argot/pkg"
)

// Convert turns a result map into an argument list using parameter
// descriptors.
type Convert struct {
	Param  []string `help:"Parameter descriptor (repeatable)."                 placeholder:"DESC" required:"" sep:"none" short:"p"`
	Input  []string `help:"Result map in YAML or JSON; '-' reads stdin."       placeholder:"FILE"             sep:"none" short:"i"`
	Format string   `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."                                  short:"f"`

	Args []string `arg:"" help:"Arguments read by descriptors without an identifier." optional:""`
}

// Run executes the convert command.
func (c *Convert) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	conv, err := param.NewConverter(c.Param...)
	if err != nil {
		return err
	}

	result, err := c.result(ctx)
	if err != nil {
		return err
	}

	argv := conv.Convert(result, c.Args)

	log.DebugContext(ctx, "converted",
		slog.Int("params", len(c.Param)),
		slog.Int("keys", len(result)),
		slog.Int("argv", len(argv)),
	)

	w := outputFrom(ctx)

	if c.Format != FormatText {
		return encode(ctx, w, c.Format, argv)
	}

	return writeLines(w, argv)
}

// result merges the result maps of every input in order; later inputs
// override earlier keys.
func (c *Convert) result(ctx context.Context) (getopt.Result, error) {
	inputs, err := openInputs(ctx, c.Input)
	if err != nil {
		return nil, err
	}

	defer closeInputs(inputs)

	result := make(getopt.Result)

	for _, in := range inputs {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		var values map[string]any

		if err := yaml.UnmarshalContext(ctx, data, &values); err != nil {
			return nil, ErrDecodeResult.With(slog.String("input", in.name)).Wrap(err)
		}

		for key, value := range values {
			result[key] = value
		}
	}

	return result, nil
}
