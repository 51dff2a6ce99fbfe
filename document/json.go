package document

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Parse decodes a JSON document. The JSON literal null decodes to the
// absent document.
func Parse(d []byte) (Doc, error) {
	d = bytes.TrimSpace(d)
	if len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(d, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotObject, err)
	}
	return Doc(m), nil
}

// JSON encodes d. An absent document encodes as null.
func (d Doc) JSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]any(d))
}

// String returns the compact JSON form of d.
func (d Doc) String() string {
	j, err := d.JSON()
	if err != nil {
		return fmt.Sprintf("[raw doc] %v", map[string]any(d))
	}
	return string(j)
}

// FromValue converts a decoded value into a document. Maps produced by
// YAML decoders are accepted; nil yields the absent document.
func FromValue(v any) (Doc, error) {
	if v == nil {
		return nil, nil
	}
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	m, ok := n.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return Doc(m), nil
}

// Normalize converts v into the JSON value space. Integer kinds become
// float64 and maps with non string keys are rekeyed. Values of other types
// take a trip through the JSON codec.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case Doc:
		return Normalize(map[string]any(x))
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			ne, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			res[k] = ne
		}
		return res, nil
	case map[any]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			ne, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			res[fmt.Sprint(k)] = ne
		}
		return res, nil
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			ne, err := Normalize(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			res[i] = ne
		}
		return res, nil
	default:
		d, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var res any
		if err := json.Unmarshal(d, &res); err != nil {
			return nil, err
		}
		return res, nil
	}
}
