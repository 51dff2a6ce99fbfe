package changes

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/mutator/document"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns the field level changes turning from into to. Object fields
// are visited in sorted order and arrays are compared by position. Values
// in the changes are copies and share nothing with from or to. Diffing
// against an absent document yields a single create or delete event.
func Diff(from, to document.Doc) []Change {
	switch {
	case from == nil && to == nil:
		return nil
	case from == nil:
		return []Change{{Kind: KindCreate, Doc: to.Clone()}}
	case to == nil:
		return []Change{{Kind: KindDelete}}
	}
	var res []Change
	diffObject("", from, to, &res)
	return res
}

// Record appends the changes between from and to to rec.
func Record(rec Recorder, from, to document.Doc) {
	for _, c := range Diff(from, to) {
		switch c.Kind {
		case KindCreate:
			rec.Create(c.Doc)
		case KindDelete:
			rec.Delete()
		default:
			rec.Modify(c)
		}
	}
}

func diffObject(path string, from, to map[string]any, res *[]Change) {
	keys := slices.Collect(maps.Keys(from))
	for k := range to {
		if _, ok := from[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		p := joinField(path, k)
		fv, inFrom := from[k]
		tv, inTo := to[k]
		switch {
		case !inTo:
			*res = append(*res, Change{Kind: KindUnset, Path: p, From: document.CloneValue(fv)})
		case !inFrom:
			*res = append(*res, Change{Kind: KindSet, Path: p, To: document.CloneValue(tv)})
		default:
			diffValue(p, fv, tv, res)
		}
	}
}

func diffValue(path string, from, to any, res *[]Change) {
	switch f := from.(type) {
	case map[string]any:
		if t, ok := to.(map[string]any); ok {
			diffObject(path, f, t, res)
			return
		}
	case []any:
		if t, ok := to.([]any); ok {
			diffArray(path, f, t, res)
			return
		}
	case string:
		if t, ok := to.(string); ok {
			if f != t {
				*res = append(*res, Change{Kind: KindSet, Path: path, From: f, To: t, Patch: StringPatch(f, t)})
			}
			return
		}
	}
	if !reflect.DeepEqual(from, to) {
		*res = append(*res, Change{Kind: KindSet, Path: path, From: document.CloneValue(from), To: document.CloneValue(to)})
	}
}

func diffArray(path string, from, to []any, res *[]Change) {
	n := min(len(from), len(to))
	for i := range n {
		diffValue(joinIndex(path, i), from[i], to[i], res)
	}
	for i := n; i < len(to); i++ {
		*res = append(*res, Change{Kind: KindInsert, Path: joinIndex(path, i), To: document.CloneValue(to[i])})
	}
	for i := len(from) - 1; i >= n; i-- {
		*res = append(*res, Change{Kind: KindUnset, Path: joinIndex(path, i), From: document.CloneValue(from[i])})
	}
}

// StringPatch returns the diff-match-patch text turning from into to.
func StringPatch(from, to string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(from, to, strings.Contains(from, "\n") && strings.Contains(to, "\n"))
	return dmp.PatchToText(dmp.PatchMake(from, diffs))
}

func joinField(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func joinIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
