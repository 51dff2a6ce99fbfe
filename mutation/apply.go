package mutation

import (
	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/debug"
	"github.com/signadot/mutator/document"
)

// Apply applies m to doc and returns the resulting document, which is nil
// when the mutation deleted the document. Changes are recorded in rec; when
// rec is nil a throwaway ChangeSet is used. doc is not modified.
//
// A failing revision precondition returns an error wrapping
// ErrRevisionMismatch. Errors from the patch executor are returned as is.
func (m *Mutation) Apply(doc document.Doc, rec changes.Recorder) (document.Doc, error) {
	if rec == nil {
		rec = changes.NewChangeSet()
	}
	if debug.Apply() {
		debug.Logf("applying mutation %s to document %s\n", m, doc)
	}
	f, err := m.compile()
	if err != nil {
		return nil, err
	}
	res, err := f(doc, rec)
	if err != nil {
		if debug.Apply() {
			debug.Logf("  => error %v\n", err)
		}
		return nil, err
	}
	if debug.Apply() {
		debug.Logf("  => %s\n", res)
	}
	return res, nil
}

// Apply applies m to doc, see (*Mutation).Apply.
func Apply(doc document.Doc, m *Mutation, rec changes.Recorder) (document.Doc, error) {
	return m.Apply(doc, rec)
}

// ApplyAll applies mutations to doc in order, threading the document from
// one mutation to the next and recording all changes in rec.
//
// When a mutation fails, ApplyAll stops and returns the document as left by
// the last mutation which applied, together with the error. Nothing is
// rolled back; callers decide whether to retry from there.
func ApplyAll(doc document.Doc, mutations []*Mutation, rec changes.Recorder) (document.Doc, error) {
	if rec == nil {
		rec = changes.NewChangeSet()
	}
	for _, m := range mutations {
		next, err := m.Apply(doc, rec)
		if err != nil {
			return doc, err
		}
		doc = next
	}
	return doc, nil
}
