// Package format selects between the YAML and JSON forms of documents and
// mutations.
//
// # Usage
//
//	f, err := format.ParseFormat("yaml")
//	j, err := format.ToJSON(input) // input may be YAML or JSON
//	out, err := f.Encode(doc)
//
// Input in either format is normalized to JSON before decoding, so the
// rest of the module only ever decodes JSON.
package format
