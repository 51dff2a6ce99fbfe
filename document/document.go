package document

import (
	"maps"
	"reflect"
	"slices"
	"time"
)

const (
	IDField        = "_id"
	TypeField      = "_type"
	RevField       = "_rev"
	CreatedAtField = "_createdAt"
	UpdatedAtField = "_updatedAt"
)

// Doc is a document. The nil Doc is the absent document.
type Doc map[string]any

// Exists reports whether d is present.
func (d Doc) Exists() bool {
	return d != nil
}

// Rev returns the revision of d, or "" if d is absent or has none.
func (d Doc) Rev() string {
	return d.str(RevField)
}

// ID returns the _id of d, or "".
func (d Doc) ID() string {
	return d.str(IDField)
}

func (d Doc) str(field string) string {
	if d == nil {
		return ""
	}
	s, _ := d[field].(string)
	return s
}

// Clone returns a deep copy of d. Cloning an absent document yields an
// absent document.
func (d Doc) Clone() Doc {
	if d == nil {
		return nil
	}
	return Doc(CloneValue(map[string]any(d)).(map[string]any))
}

// Fields returns the field names of d in sorted order.
func (d Doc) Fields() []string {
	return slices.Sorted(maps.Keys(d))
}

// Equal reports whether a and b hold the same content.
func Equal(a, b Doc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(map[string]any(a), map[string]any(b))
}

// CloneValue deep copies a value in the JSON value space. Maps and slices
// are copied, everything else is returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(x))
		for k, e := range x {
			res[k] = CloneValue(e)
		}
		return res
	case Doc:
		return map[string]any(x.Clone())
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = CloneValue(e)
		}
		return res
	default:
		return v
	}
}

// FormatTime formats t the way timestamps are stored in documents.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
