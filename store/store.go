// Package store provides an in-memory document store whose submits are
// atomic and guarded by document revisions.
//
// A submit applies a list of mutations to one document. Either all of them
// apply and the result is stored, or none of the effects are kept. Two
// submitters which both start from the same revision and require it with
// previousRev cannot both succeed.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/mutation"
)

// Config holds configuration for a Memory store.
type Config struct {
	Log     *slog.Logger      // Logger (optional)
	Options []mutation.Option // Options for mutations created by the store
}

// Memory is an in-memory store, safe for concurrent use.
type Memory struct {
	log  *slog.Logger
	opts []mutation.Option

	mu   sync.Mutex
	docs map[string]document.Doc
}

// Result is the outcome of a successful Submit.
type Result struct {
	// Doc is the stored document, nil if it was deleted.
	Doc     document.Doc
	Changes []changes.Change
}

func NewMemory(cfg *Config) *Memory {
	if cfg == nil {
		cfg = &Config{}
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Memory{
		log:  log.With("component", "store"),
		opts: cfg.Options,
		docs: make(map[string]document.Doc),
	}
}

// Get returns a copy of the document with the given id, or nil.
func (s *Memory) Get(id string) document.Doc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id].Clone()
}

// Put stores a copy of doc under id, replacing what was there. A nil doc
// removes the document.
func (s *Memory) Put(id string, doc document.Doc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		delete(s.docs, id)
		return
	}
	s.docs[id] = doc.Clone()
}

// Len returns the number of stored documents.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Submit applies ms in order to the document with the given id and stores
// the result when all of them apply. On error the store is unchanged.
func (s *Memory) Submit(ctx context.Context, id string, ms ...*mutation.Mutation) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.docs[id]
	cs := changes.NewChangeSet()
	res, err := mutation.ApplyAll(cur, ms, cs)
	if err != nil {
		s.log.Debug("submit rejected", "id", id, "rev", cur.Rev(), "error", err)
		return nil, err
	}
	if res == nil {
		delete(s.docs, id)
	} else {
		s.docs[id] = res
	}
	s.log.Debug("submit", "id", id, "from", cur.Rev(), "to", res.Rev(), "mutations", len(ms), "changes", cs.Len())
	return &Result{Doc: res.Clone(), Changes: cs.Changes()}, nil
}

// SubmitJSON decodes a mutation or a list of mutations and submits them.
// The decoded mutations get the options the store was configured with.
func (s *Memory) SubmitJSON(ctx context.Context, id string, d []byte) (*Result, error) {
	ms, err := mutation.ParseList(d, s.opts...)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, id, ms...)
}
