package mutation

import (
	"github.com/signadot/mutator/debug"
	"github.com/signadot/mutator/document"
)

// Squash collects not yet committed mutations into one mutation whose
// operations are those of mutations, in order. Transaction metadata is not
// carried over and must be supplied before the result is submitted. All
// mutations are assumed to target the same document; doc is currently not
// consulted.
func Squash(doc document.Doc, mutations []*Mutation, opts ...Option) *Mutation {
	var ops Operations
	for _, m := range mutations {
		ops = append(ops, m.params.Mutations...)
	}
	if debug.Squash() {
		debug.Logf("squashed %d mutations into %d operations\n", len(mutations), len(ops))
	}
	return New(Params{Mutations: ops}, opts...)
}

// Optimize drops the operations whose effect on the resulting document is
// overwritten by a later Delete or CreateOrReplace. The operations are
// assumed to apply; dropping a conditional patch also drops its chance to
// fail. The returned list is a new slice.
func Optimize(ops []Operation) []Operation {
	start := 0
	for i, op := range ops {
		switch kindOf(op) {
		case KindDelete, KindCreateOrReplace:
			start = i
		}
	}
	res := make([]Operation, len(ops)-start)
	copy(res, ops[start:])
	if debug.Squash() && start > 0 {
		debug.Logf("optimized away %d of %d operations\n", start, len(ops))
	}
	return res
}
