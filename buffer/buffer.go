// Package buffer holds mutations made locally to a document which have not
// yet been submitted.
//
// Mutations added to a Buffer are applied optimistically to a local view of
// the document. Commit squashes them into a single mutation guarded by the
// revision the local edits started from, ready for submission.
//
// # Usage
//
//	b := buffer.New(doc)
//	if err := b.Add(m); err != nil {
//		// m was rejected and is not kept
//	}
//	out, err := b.Commit()
//	// submit out; on a revision mismatch fetch the remote document and
//	// b.Rebase(remote) before trying again.
package buffer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/debug"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/mutation"
)

// Buffer is safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	opts    []mutation.Option
	base    document.Doc
	current document.Doc
	pending []*mutation.Mutation
	changes *changes.ChangeSet
}

// New creates a buffer on top of base, which may be nil. opts are passed
// to mutations created by Commit.
func New(base document.Doc, opts ...mutation.Option) *Buffer {
	return &Buffer{
		opts:    opts,
		base:    base.Clone(),
		current: base.Clone(),
		changes: changes.NewChangeSet(),
	}
}

// Add applies m to the local view. When m fails to apply the view is left
// unchanged and m is not kept.
func (b *Buffer) Add(m *mutation.Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, err := m.Apply(b.current, b.changes)
	if err != nil {
		return err
	}
	b.current = next
	b.pending = append(b.pending, m)
	return nil
}

// Current returns a copy of the local view, nil if the document is absent.
func (b *Buffer) Current() document.Doc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Clone()
}

// Base returns a copy of the document the pending mutations apply to.
func (b *Buffer) Base() document.Doc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.base.Clone()
}

func (b *Buffer) HasPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) != 0
}

// Changes returns the changes made by the pending mutations.
func (b *Buffer) Changes() []changes.Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changes.Changes()
}

// Commit squashes the pending mutations into one mutation which requires
// the base revision and carries a fresh transaction id. The local view
// becomes the new base, stamped with that id. Commit returns nil when
// nothing is pending.
func (b *Buffer) Commit() (*mutation.Mutation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil, nil
	}
	sq := mutation.Squash(b.base, b.pending, b.opts...)
	m := mutation.New(mutation.Params{
		PreviousRev: b.base.Rev(),
		Mutations:   mutation.Optimize(sq.Operations()),
	}, b.opts...)
	m.AssignRandomTransactionID()
	if debug.Squash() {
		debug.Logf("committed %d pending mutations as %s\n", len(b.pending), m)
	}
	base := b.current.Clone()
	if base != nil {
		base[document.RevField] = m.ResultRev()
	}
	b.base = base
	b.current = base.Clone()
	b.pending = nil
	b.changes = changes.NewChangeSet()
	return m, nil
}

// Rebase replaces the base with remote and replays the pending mutations
// on it. Mutations which no longer apply are dropped, and the returned
// error joins their failures.
func (b *Buffer) Rebase(remote document.Doc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cs := changes.NewChangeSet()
	current := remote.Clone()
	var (
		kept []*mutation.Mutation
		errs []error
	)
	for i, m := range b.pending {
		next, err := m.Apply(current, cs)
		if err != nil {
			errs = append(errs, fmt.Errorf("pending mutation %d: %w", i, err))
			continue
		}
		current = next
		kept = append(kept, m)
	}
	b.base = remote.Clone()
	b.current = current
	b.pending = kept
	b.changes = cs
	return errors.Join(errs...)
}
