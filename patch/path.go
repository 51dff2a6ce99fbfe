package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path. Exactly one of Field, Index or Key is
// meaningful:
//   - "a" → Field "a", object access
//   - "[2]", "[-1]" → Index, array access, negative counts from the end
//   - `[_key=="k"]` → Key, the array element whose _key field is "k"
type Segment struct {
	Field string
	Index *int
	Key   *string
}

func (s Segment) isField() bool {
	return s.Index == nil && s.Key == nil
}

// Path addresses a value inside a document, e.g. `a.b[0].c` or
// `items[_key=="k1"].title`.
type Path []Segment

// ParsePath parses a path expression.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPath)
	}
	var (
		res Path
		i   = 0
	)
	for i < len(s) {
		switch s[i] {
		case '.':
			if len(res) == 0 || i == len(s)-1 {
				return nil, fmt.Errorf("%w: misplaced '.' at %d in %q", ErrPath, i, s)
			}
			i++
			if s[i] == '.' || s[i] == '[' {
				return nil, fmt.Errorf("%w: expected field at %d in %q", ErrPath, i, s)
			}
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated '[' at %d in %q", ErrPath, i, s)
			}
			seg, err := parseSelector(s[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, s)
			}
			res = append(res, seg)
			i += end + 1
			continue
		}
		j := i
		for j < len(s) && s[j] != '.' && s[j] != '[' && s[j] != ']' {
			j++
		}
		if j == i {
			return nil, fmt.Errorf("%w: unexpected %q at %d in %q", ErrPath, s[i], i, s)
		}
		res = append(res, Segment{Field: s[i:j]})
		i = j
	}
	return res, nil
}

func parseSelector(sel string) (Segment, error) {
	sel = strings.TrimSpace(sel)
	if k, ok := strings.CutPrefix(sel, "_key"); ok {
		k = strings.TrimSpace(k)
		k, ok = strings.CutPrefix(k, "==")
		if !ok {
			return Segment{}, fmt.Errorf("%w: expected == in selector [%s]", ErrPath, sel)
		}
		k = strings.TrimSpace(k)
		if len(k) < 2 || (k[0] != '"' && k[0] != '\'') || k[len(k)-1] != k[0] {
			return Segment{}, fmt.Errorf("%w: expected quoted key in selector [%s]", ErrPath, sel)
		}
		key := k[1 : len(k)-1]
		return Segment{Key: &key}, nil
	}
	n, err := strconv.Atoi(sel)
	if err != nil {
		return Segment{}, fmt.Errorf("%w: bad index [%s]", ErrPath, sel)
	}
	return Segment{Index: &n}, nil
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case seg.Index != nil:
			fmt.Fprintf(&b, "[%d]", *seg.Index)
		case seg.Key != nil:
			fmt.Fprintf(&b, "[_key==%q]", *seg.Key)
		default:
			if i != 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Field)
		}
	}
	return b.String()
}

// Get returns the value at p in v.
func (p Path) Get(v any) (any, bool) {
	for _, seg := range p {
		if seg.isField() {
			m, ok := v.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok = m[seg.Field]
			if !ok {
				return nil, false
			}
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			return nil, false
		}
		i, ok := seg.resolve(arr)
		if !ok {
			return nil, false
		}
		v = arr[i]
	}
	return v, true
}

// resolve finds the array position selected by an index or key segment.
func (s Segment) resolve(arr []any) (int, bool) {
	if s.Key != nil {
		for i, e := range arr {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			if k, _ := m["_key"].(string); k == *s.Key {
				return i, true
			}
		}
		return 0, false
	}
	i := *s.Index
	if i < 0 {
		i += len(arr)
	}
	if i < 0 || i >= len(arr) {
		return 0, false
	}
	return i, true
}

type action int

const (
	keep action = iota
	replace
	remove
)

// updateFunc computes what happens to the value at a path. exists reports
// whether there was a value.
type updateFunc func(old any, exists bool) (nv any, act action, err error)

// update applies fn to the value at p in v and returns the updated v along
// with whether p matched anything. With create, missing object fields along
// the way are created; array selectors never create elements. Maps are
// updated in place, arrays may be reallocated.
func (p Path) update(v any, create bool, fn updateFunc) (any, bool, error) {
	if len(p) == 0 {
		return v, false, fmt.Errorf("%w: empty path", ErrPath)
	}
	seg, rest := p[0], p[1:]
	if seg.isField() {
		m, ok := v.(map[string]any)
		if !ok {
			switch {
			case v != nil:
				return v, false, fmt.Errorf("%w: cannot access field %q of a %s", ErrType, seg.Field, typeName(v))
			case !create:
				return v, false, nil
			}
			m = map[string]any{}
		}
		child, exists := m[seg.Field]
		if len(rest) == 0 {
			nv, act, err := fn(child, exists)
			if err != nil {
				return v, false, err
			}
			switch act {
			case replace:
				m[seg.Field] = nv
			case remove:
				delete(m, seg.Field)
			}
			return m, act != keep, nil
		}
		if !exists && !create {
			return m, false, nil
		}
		nc, matched, err := rest.update(child, create, fn)
		if err != nil {
			return v, false, err
		}
		if matched {
			m[seg.Field] = nc
		}
		return m, matched, nil
	}
	arr, ok := v.([]any)
	if !ok {
		if v == nil {
			return v, false, nil
		}
		return v, false, fmt.Errorf("%w: selector %s on a %s", ErrType, Path{seg}, typeName(v))
	}
	i, ok := seg.resolve(arr)
	if !ok {
		return arr, false, nil
	}
	if len(rest) == 0 {
		nv, act, err := fn(arr[i], true)
		if err != nil {
			return arr, false, err
		}
		switch act {
		case replace:
			arr[i] = nv
		case remove:
			return append(arr[:i:i], arr[i+1:]...), true, nil
		}
		return arr, act != keep, nil
	}
	nc, matched, err := rest.update(arr[i], create, fn)
	if err != nil {
		return arr, false, err
	}
	arr[i] = nc
	return arr, matched, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
