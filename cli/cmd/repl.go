package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/argot/cli/cmd/repl"
	"github.com/ardnew/argot/log"
)

// Repl parses argument lines interactively against an editable option set.
type Repl struct {
	Options `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cacheDir, ok := kongContextFrom(ctx).Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache path undefined")
	}

	_, descriptors, checker, err := r.source(ctx)
	if err != nil {
		return err
	}

	logger := log.Default()

	session, err := repl.NewSession(descriptors, checker, logger,
		repl.WithLenient(r.Lenient),
		repl.WithPOSIX(r.POSIX),
	)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "repl session",
		slog.Int("descriptors", len(descriptors)),
		slog.String("cache", cacheDir),
	)

	return repl.Run(ctx, session, cacheDir, logger)
}
