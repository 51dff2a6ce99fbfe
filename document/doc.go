// Package document provides the document value operated on by mutations.
//
// # Overview
//
// A document is a JSON object held as a [Doc], a map from field names to
// values in the JSON value space: map[string]any, []any, float64, string,
// bool and nil. The nil Doc is the distinguished absent document, which is
// what a deleted or never-created document looks like to the mutation engine.
//
// Apart from a handful of reserved fields the contents of a document are
// opaque:
//
//   - _id: document identity
//   - _type: document type
//   - _rev: current revision, used for optimistic concurrency
//   - _createdAt, _updatedAt: timestamps stamped by mutations
//
// # Usage
//
//	d, err := document.Parse([]byte(`{"_id": "a", "title": "A"}`))
//	if err != nil {
//	    return err
//	}
//	c := d.Clone() // deep copy, safe to modify
//	c["title"] = "B"
package document
