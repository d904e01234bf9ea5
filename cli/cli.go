package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/reckon/cli/cmd"
	"github.com/ardnew/reckon/pkg"
)

// CLI is the top-level command-line interface for reckon.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Source []string `help:"Source file(s) evaluated before the command, or '-' for stdin" name:"source" short:"s"`
	Bind   []string `help:"Bind NAME=EXPR in the evaluation context"                     name:"bind"   short:"b" placeholder:"NAME=EXPR"`

	Version kong.VersionFlag `help:"Print version and quit" short:"V"`

	Init cmd.Init `cmd:"" help:"Write a configuration file from the current flags"`
	Fmt  cmd.Fmt  `cmd:"" help:"Reformat expressions without evaluating them"`
	Ops  cmd.Ops  `cmd:"" help:"List registered operators and functions"`
	Repl cmd.Repl `cmd:"" help:"Start an interactive session"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Evaluate expressions"`
}

// Run executes the reckon CLI with the given context and arguments. exit
// receives the status code when parsing itself ends the run, as --help and
// --version do.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	confPath := configPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  cacheDir(),
	}

	for _, extra := range []kong.Vars{cli.Log.vars(), cli.Pprof.vars()} {
		vars = vars.CloneWith(extra)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before parsing so messages emitted during
	// parsing already honor them. The unmarshal hooks cover the level and
	// format flags; the scan also catches the booleans.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		// The provider closes over ctx, so commands receive the context
		// populated below after parsing.
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, confPath+".json"),
		kong.Configuration(resolve(ctx), confPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Apply the full parsed configuration, including TimeLayout and
	// Caller, which have no unmarshal hook.
	cli.Log.start(ctx)

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithBindings(ctx, cli.Bind)
	ctx = cmd.WithSourceFiles(ctx, cli.Source)

	// A no-op unless built with the pprof tag and enabled by flag.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
