package main

import (
	"fmt"

	"github.com/signadot/mutator/buffer"
	"github.com/signadot/mutator/mutation"

	"github.com/scott-cotton/cli"
)

func squash(cfg *SquashConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Squash.Parse(cc, args)
	if err != nil {
		return err
	}
	ms, err := getMutations(cfg.MainConfig, cc, args)
	if err != nil {
		return err
	}
	if cfg.Doc == "" {
		return output(cfg.MainConfig, cc.Out, squashAll(cfg, ms))
	}
	doc, err := getDocFile(cc, cfg.Doc)
	if err != nil {
		return err
	}
	// With a document the mutations are checked to apply, and the result
	// requires the document revision.
	b := buffer.New(doc, cfg.File.MutationOptions()...)
	for i, m := range ms {
		if err := b.Add(m); err != nil {
			return fmt.Errorf("mutation %d does not apply: %w", i, err)
		}
	}
	m, err := b.Commit()
	if err != nil {
		return err
	}
	if m == nil {
		m = mutation.New(mutation.Params{})
	}
	theLog.Debug("squashed", "mutations", len(ms), "previousRev", m.PreviousRev(), "resultRev", m.ResultRev())
	return output(cfg.MainConfig, cc.Out, m)
}

func squashAll(cfg *SquashConfig, ms []*mutation.Mutation) *mutation.Mutation {
	opts := cfg.File.MutationOptions()
	m := mutation.Squash(nil, ms, opts...)
	if !cfg.Optimize {
		return m
	}
	p := m.Params()
	p.Mutations = mutation.Optimize(p.Mutations)
	return mutation.New(p, opts...)
}
