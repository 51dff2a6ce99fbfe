package main

import (
	"fmt"

	"github.com/signadot/mutator/changes"

	"github.com/scott-cotton/cli"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	from, err := getDocFile(cc, args[0])
	if err != nil {
		return err
	}
	to, err := getDocFile(cc, args[1])
	if err != nil {
		return err
	}
	cs := changes.Diff(from, to)
	if len(cs) == 0 {
		return nil
	}
	if err := printChanges(cc.Out, cs, cfg.colors(cc.Out)); err != nil {
		return err
	}
	return cli.ExitCodeErr(1)
}
