package main

import (
	"context"

	"github.com/signadot/mutator/store"

	"github.com/scott-cotton/cli"
)

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	doc, err := getDocFile(cc, cfg.Doc)
	if err != nil {
		return err
	}
	ms, err := getMutations(cfg.MainConfig, cc, args)
	if err != nil {
		return err
	}
	st := store.NewMemory(&store.Config{Log: theLog})
	id := doc.ID()
	st.Put(id, doc)
	res, err := st.Submit(context.Background(), id, ms...)
	if err != nil {
		return err
	}
	if cfg.Changes {
		return printChanges(cc.Out, res.Changes, cfg.colors(cc.Out))
	}
	return output(cfg.MainConfig, cc.Out, res.Doc)
}
