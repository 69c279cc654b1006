package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/argot/log"
)

// Validate checks every checker and command descriptor of a manifest and
// lists the problems found, one per line.
type Validate struct {
	Manifest string `help:"Manifest name or path (default ${manifest})." short:"m"`
}

// Run executes the validate command.
func (v *Validate) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := openManifest(ctx, v.Manifest)
	if err != nil {
		return err
	}

	problems := m.Problems()

	log.DebugContext(ctx, "validate",
		slog.String("path", m.Path), slog.Int("problems", len(problems)))

	w := outputFrom(ctx)

	if len(problems) == 0 {
		if _, err := fmt.Fprintf(w, "%s: ok\n", m.Path); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	for _, p := range problems {
		if _, err := fmt.Fprintf(w, "%s: %v\n", m.Path, p); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return ErrInvalid.With(slog.Int("problems", len(problems)))
}
