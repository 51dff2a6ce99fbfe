// Package patch is the default patch executor for mutations.
//
// A [Patch] describes fine grained changes to an existing document: setting,
// unsetting, incrementing and inserting values at paths, applying
// diff-match-patch texts to strings, and whole document merge patches
// (RFC 7386) and JSON Patches (RFC 6902). A patch may be guarded by a
// revision precondition (ifRevisionID) and by a boolean expression (if).
//
// # Usage
//
//	p := &patch.Patch{
//	    Set: map[string]any{"title": "B"},
//	    Inc: map[string]float64{"views": 1},
//	}
//	pr, err := patch.Compile(p)
//	if err != nil {
//	    return err
//	}
//	next, err := pr.Apply(doc, changeSet)
//
// # Paths
//
// Paths select values with dotted field names and bracketed selectors:
//
//	title
//	author.name
//	tags[0]
//	tags[-1]
//	body[_key=="p1"].text
//
// # Order
//
// Within one patch the operations run in a fixed order: setIfMissing, set,
// unset, inc, dec, insert, diffMatchPatch, merge, jsonPatch. Operations
// keyed by path run in path order.
//
// Patches never modify the document passed to Apply, and applying a patch to
// an absent document yields an absent document.
package patch
