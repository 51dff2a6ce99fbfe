// Package mutation applies transactional mutations to documents.
//
// # Overview
//
// A [Mutation] is an immutable description of one transaction against a
// single document: an ordered list of operations plus transaction metadata
// (transaction id, previous and resulting revision, timestamp). Operations
// are one of
//
//   - [Create]: create the document if it is absent
//   - [CreateIfNotExists]: same rule as Create, distinct for caller intent
//   - [CreateOrReplace]: replace the document whether or not it exists
//   - [Delete]: remove the document
//   - [Patch]: fine grained changes, see package patch
//
// The first time a mutation is applied its operations are compiled into a
// pipeline of steps which is kept for the lifetime of the mutation. Each
// application starts from the given document, checks the revision
// precondition, runs the steps in order and finally stamps the resulting
// revision. The input document is never modified.
//
// # Revisions
//
// When PreviousRev is set, the document must have exactly that _rev or the
// application fails with [ErrRevisionMismatch] without any effect. Two
// writers racing from the same revision therefore cannot both succeed. The
// resulting document gets ResultRev as its _rev, or TransactionID when no
// ResultRev is given.
//
// # Usage
//
//	m := mutation.New(mutation.Params{
//	    TransactionID: "tx1",
//	    PreviousRev:   "r1",
//	    Mutations: []mutation.Operation{
//	        mutation.Patch{Patch: &patch.Patch{Set: map[string]any{"title": "B"}}},
//	    },
//	})
//	cs := changes.NewChangeSet()
//	next, err := m.Apply(doc, cs)
//
// Pending mutations on one document may be combined with [Squash] before
// they are submitted; [Optimize] can then drop operations whose effect is
// overwritten.
package mutation
