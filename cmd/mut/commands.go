package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "config",
			Description: "configuration file",
			Type:        cli.NamedFuncOpt(cfg.configOpt, "(filepath)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "mut").
		WithSynopsis("mut [opts] command [opts]").
		WithDescription("mut applies, squashes and diffs document mutations.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return mutMain(cfg, cc, args)
		}).
		WithSubs(
			ApplyCommand(cfg),
			SquashCommand(cfg),
			DiffCommand(cfg))
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Apply, "apply").
		WithAliases("a", "ap").
		WithSynopsis("apply [-d doc] [-changes] [mutation files]").
		WithDescription("apply mutations to a document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
}

func SquashCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SquashConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Squash, "squash").
		WithAliases("s", "sq").
		WithSynopsis("squash [-d doc] [-optimize] [mutation files]").
		WithDescription("squash mutations into one mutation").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return squash(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d", "di").
		WithSynopsis("diff <from> <to>").
		WithDescription("print the changes between two documents").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}
