package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/argot/check"
	"github.com/ardnew/argot/getopt"
	"github.com/ardnew/argot/log"
	"github.com/ardnew/argot/manifest"
)

// Options selects the option set a command works with: descriptors given on
// the command line, or the options of one manifest command.
type Options struct {
	Option   []string `help:"Option descriptor (repeatable)."                 placeholder:"DESC" sep:"none" short:"o"`
	Manifest string   `help:"Manifest supplying the descriptors."                                         short:"m"`
	Command  string   `help:"Manifest command whose options are used."                                    short:"c"`
	Lenient  bool     `help:"Register leniently and pass unknown input through."`
	POSIX    bool     `help:"Stop option scanning at the first bare argument." name:"posix"`
}

// optionSet is a registry ready for parsing, with the manifest command it
// came from, if any.
type optionSet struct {
	registry *getopt.Registry
	manifest *manifest.Manifest
	command  *manifest.Command
}

func (o *Options) order() getopt.Order {
	if o.POSIX {
		return getopt.OrderPOSIX
	}

	return getopt.OrderGNU
}

// load builds the registry described by o.
func (o *Options) load(ctx context.Context) (*optionSet, error) {
	if o.Manifest == "" && len(o.Option) == 0 {
		return nil, ErrNoOptions
	}

	set, descriptors, checker, err := o.source(ctx)
	if err != nil {
		return nil, err
	}

	set.registry = getopt.NewRegistry(
		getopt.WithStrict(!o.Lenient),
		getopt.WithOrder(o.order()),
		getopt.WithChecker(checker),
		getopt.WithLogger(log.Default()),
	)

	if err := set.registry.RegisterAll(!o.Lenient, descriptors...); err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "option set loaded",
		slog.Int("descriptors", len(descriptors)),
		slog.Bool("lenient", o.Lenient),
		slog.Bool("posix", o.POSIX),
	)

	return set, nil
}

// source resolves the descriptors and checkers o names without registering
// them. With neither a manifest nor descriptors the result is empty.
func (o *Options) source(
	ctx context.Context,
) (*optionSet, []string, *check.Set, error) {
	var set optionSet

	if o.Manifest == "" {
		checker, err := check.New(nil)
		if err != nil {
			return nil, nil, nil, err
		}

		return &set, o.Option, checker, nil
	}

	if o.Command == "" {
		return nil, nil, nil, ErrNoCommand
	}

	var err error

	if set.manifest, err = loadManifest(ctx, o.Manifest); err != nil {
		return nil, nil, nil, err
	}

	var ok bool

	set.command, ok = set.manifest.Command(o.Command)
	if !ok {
		return nil, nil, nil, ErrNoSuchCmd.With(
			slog.String("command", o.Command),
			slog.String("manifest", set.manifest.Path),
		)
	}

	checker, err := set.manifest.CheckerSet()
	if err != nil {
		return nil, nil, nil, err
	}

	return &set, set.command.Options, checker, nil
}

// loadManifest finds and loads the manifest named by name, logging any
// tolerated problems and every descriptor that fails validation.
func loadManifest(ctx context.Context, name string) (*manifest.Manifest, error) {
	m, err := openManifest(ctx, name)
	if err != nil {
		return nil, err
	}

	for _, p := range m.Problems() {
		log.WarnContext(ctx, "invalid manifest",
			slog.String("path", m.Path), slog.Any("problem", p))
	}

	return m, nil
}

// openManifest finds and loads the manifest named by name, logging the
// warnings raised while decoding it.
func openManifest(ctx context.Context, name string) (*manifest.Manifest, error) {
	path, err := manifest.Find(name)
	if err != nil {
		return nil, err
	}

	m, err := manifest.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	for _, w := range m.Warnings {
		log.WarnContext(ctx, "manifest", slog.String("path", path), slog.String("warning", w))
	}

	return m, nil
}
