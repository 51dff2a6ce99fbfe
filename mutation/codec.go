package mutation

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/patch"

	json "github.com/goccy/go-json"
)

// Operations is a list of operations with a JSON form of the shape
//
//	[{"create": {...}}, {"patch": {...}}, {"delete": {"id": "..."}}]
type Operations []Operation

func (ops Operations) MarshalJSON() ([]byte, error) {
	res := make([]any, len(ops))
	for i, op := range ops {
		v, err := wireOf(op)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		res[i] = v
	}
	return json.Marshal(res)
}

func wireOf(op Operation) (any, error) {
	switch x := deref(op).(type) {
	case Create:
		return map[string]any{"create": docOrEmpty(x.Document)}, nil
	case CreateIfNotExists:
		return map[string]any{"createIfNotExists": docOrEmpty(x.Document)}, nil
	case CreateOrReplace:
		return map[string]any{"createOrReplace": docOrEmpty(x.Document)}, nil
	case Delete:
		return map[string]any{"delete": map[string]any{"id": x.ID}}, nil
	case Patch:
		return map[string]any{"patch": x.Patch}, nil
	case unsupported:
		return x.raw, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

func docOrEmpty(d document.Doc) map[string]any {
	if d == nil {
		return map[string]any{}
	}
	return d
}

// UnmarshalJSON decodes a list of operation descriptors. A descriptor that
// does not name exactly one known kind, or a create of any kind with a null
// body, decodes to an operation which fails when the mutation is compiled.
func (ops *Operations) UnmarshalJSON(d []byte) error {
	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(d, &raws); err != nil {
		return err
	}
	res := make(Operations, 0, len(raws))
	for i, raw := range raws {
		op, err := decodeOp(raw)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		res = append(res, op)
	}
	*ops = res
	return nil
}

func decodeOp(raw map[string]json.RawMessage) (Operation, error) {
	if len(raw) != 1 {
		return unsupportedOf(raw)
	}
	for k, v := range raw {
		switch k {
		case "create", "createIfNotExists", "createOrReplace":
			d, err := document.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			if d == nil {
				return unsupportedOf(raw)
			}
			switch k {
			case "create":
				return Create{Document: d}, nil
			case "createIfNotExists":
				return CreateIfNotExists{Document: d}, nil
			default:
				return CreateOrReplace{Document: d}, nil
			}
		case "delete":
			var del struct {
				ID string `json:"id"`
			}
			if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				if err := json.Unmarshal(v, &del); err != nil {
					return nil, fmt.Errorf("delete: %w", err)
				}
			}
			return Delete{ID: del.ID}, nil
		case "patch":
			p := &patch.Patch{}
			if err := json.Unmarshal(v, p); err != nil {
				return nil, fmt.Errorf("patch: %w", err)
			}
			return Patch{Patch: p}, nil
		}
	}
	return unsupportedOf(raw)
}

func unsupportedOf(raw map[string]json.RawMessage) (Operation, error) {
	u := unsupported{raw: make(map[string]any, len(raw)), keys: slices.Sorted(maps.Keys(raw))}
	for k, v := range raw {
		var x any
		if err := json.Unmarshal(v, &x); err != nil {
			return nil, err
		}
		u.raw[k] = x
	}
	return u, nil
}

// MarshalJSON encodes the mutation as its Params.
func (m *Mutation) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Params())
}

// Parse decodes a mutation from its JSON form.
func Parse(d []byte, opts ...Option) (*Mutation, error) {
	var p Params
	if err := json.Unmarshal(d, &p); err != nil {
		return nil, fmt.Errorf("could not decode mutation: %w", err)
	}
	return New(p, opts...), nil
}

// ParseList decodes either a single mutation or a JSON array of mutations.
func ParseList(d []byte, opts ...Option) ([]*Mutation, error) {
	d = bytes.TrimSpace(d)
	if len(d) == 0 || d[0] != '[' {
		m, err := Parse(d, opts...)
		if err != nil {
			return nil, err
		}
		return []*Mutation{m}, nil
	}
	var ps []Params
	if err := json.Unmarshal(d, &ps); err != nil {
		return nil, fmt.Errorf("could not decode mutations: %w", err)
	}
	res := make([]*Mutation, len(ps))
	for i := range ps {
		res[i] = New(ps[i], opts...)
	}
	return res, nil
}
