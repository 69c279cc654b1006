package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/argot/cli/cmd"
	"github.com/ardnew/argot/manifest"
	"github.com/ardnew/argot/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// CLI is the top-level command-line interface for argot.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Parse    cmd.Parse    `cmd:"" help:"Parse arguments against option descriptors"`
	Inspect  cmd.Inspect  `cmd:"" help:"Show compiled option descriptors"`
	Convert  cmd.Convert  `cmd:"" help:"Convert a result map into an argument list"`
	Plan     cmd.Plan     `cmd:"" help:"Show how a manifest dispatches arguments"`
	Validate cmd.Validate `cmd:"" help:"Check a manifest's checkers and descriptors"`
	Repl     cmd.Repl     `cmd:"" help:"Parse argument lines interactively"`
	Init     cmd.Init     `cmd:"" help:"Initialize configuration file"`
	Version  cmd.Version  `cmd:"" help:"Print version"`
}

// Run executes the argot CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"manifest":           manifest.FileName,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()

	// No-op unless built with the pprof tag and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
