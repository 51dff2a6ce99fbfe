package patch

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/debug"
	"github.com/signadot/mutator/document"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	json "github.com/goccy/go-json"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type assign struct {
	path  Path
	value any
}

type delta struct {
	path Path
	by   float64
}

type insertion struct {
	parent Path
	sel    Segment
	where  string
	items  []any
}

type textPatch struct {
	path    Path
	patches []diffpatch.Patch
}

// Patcher is a compiled Patch. It holds no per document state and may be
// applied any number of times, concurrently.
type Patcher struct {
	patch *Patch

	cond         *vm.Program
	setIfMissing []assign
	set          []assign
	unset        []Path
	deltas       []delta
	insert       *insertion
	texts        []textPatch
	merge        []byte
	jsonPatch    jsonpatch.Patch
}

// Compile validates p and prepares it for application.
func Compile(p *Patch) (*Patcher, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil patch", ErrInvalid)
	}
	pr := &Patcher{patch: p}
	var err error
	if p.If != "" {
		pr.cond, err = expr.Compile(p.If, expr.Env(exprEnv(document.Doc{})), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: if %q: %w", ErrInvalid, p.If, err)
		}
	}
	if pr.setIfMissing, err = compileAssigns(p.SetIfMissing); err != nil {
		return nil, fmt.Errorf("setIfMissing: %w", err)
	}
	if pr.set, err = compileAssigns(p.Set); err != nil {
		return nil, fmt.Errorf("set: %w", err)
	}
	for _, u := range p.Unset {
		path, err := ParsePath(u)
		if err != nil {
			return nil, fmt.Errorf("unset: %w", err)
		}
		pr.unset = append(pr.unset, path)
	}
	for _, k := range slices.Sorted(maps.Keys(p.Inc)) {
		path, err := ParsePath(k)
		if err != nil {
			return nil, fmt.Errorf("inc: %w", err)
		}
		pr.deltas = append(pr.deltas, delta{path: path, by: p.Inc[k]})
	}
	for _, k := range slices.Sorted(maps.Keys(p.Dec)) {
		path, err := ParsePath(k)
		if err != nil {
			return nil, fmt.Errorf("dec: %w", err)
		}
		pr.deltas = append(pr.deltas, delta{path: path, by: -p.Dec[k]})
	}
	if p.Insert != nil {
		if pr.insert, err = compileInsert(p.Insert); err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
	}
	dmp := diffpatch.New()
	for _, k := range slices.Sorted(maps.Keys(p.DiffMatchPatch)) {
		path, err := ParsePath(k)
		if err != nil {
			return nil, fmt.Errorf("diffMatchPatch: %w", err)
		}
		patches, err := dmp.PatchFromText(p.DiffMatchPatch[k])
		if err != nil {
			return nil, fmt.Errorf("%w: diffMatchPatch %s: %w", ErrInvalid, k, err)
		}
		pr.texts = append(pr.texts, textPatch{path: path, patches: patches})
	}
	if p.Merge != nil {
		if pr.merge, err = json.Marshal(p.Merge); err != nil {
			return nil, fmt.Errorf("%w: merge: %w", ErrInvalid, err)
		}
	}
	if len(p.JSONPatch) != 0 {
		if err := checkJSONPatch(p.JSONPatch); err != nil {
			return nil, err
		}
		d, err := json.Marshal(p.JSONPatch)
		if err != nil {
			return nil, fmt.Errorf("%w: jsonPatch: %w", ErrInvalid, err)
		}
		if pr.jsonPatch, err = jsonpatch.DecodePatch(d); err != nil {
			return nil, fmt.Errorf("%w: jsonPatch: %w", ErrInvalid, err)
		}
	}
	return pr, nil
}

func checkJSONPatch(ops []map[string]any) error {
	for i, op := range ops {
		name, _ := op["op"].(string)
		switch name {
		case "add", "remove", "replace", "move", "copy", "test":
		default:
			return fmt.Errorf("%w: jsonPatch operation %d has op %v", ErrInvalid, i, op["op"])
		}
		if _, ok := op["path"].(string); !ok {
			return fmt.Errorf("%w: jsonPatch operation %d has no path", ErrInvalid, i)
		}
	}
	return nil
}

func compileAssigns(m map[string]any) ([]assign, error) {
	res := make([]assign, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		path, err := ParsePath(k)
		if err != nil {
			return nil, err
		}
		v, err := document.Normalize(m[k])
		if err != nil {
			return nil, fmt.Errorf("%w: value at %s: %w", ErrInvalid, k, err)
		}
		res = append(res, assign{path: path, value: v})
	}
	return res, nil
}

func compileInsert(in *Insert) (*insertion, error) {
	var where, at string
	n := 0
	for _, c := range []struct{ where, at string }{
		{"before", in.Before}, {"after", in.After}, {"replace", in.Replace},
	} {
		if c.at != "" {
			where, at = c.where, c.at
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("%w: exactly one of before, after, replace is required", ErrInvalid)
	}
	path, err := ParsePath(at)
	if err != nil {
		return nil, err
	}
	last := path[len(path)-1]
	if len(path) < 2 || last.isField() {
		return nil, fmt.Errorf("%w: %s %q does not select an array element", ErrPath, where, at)
	}
	items, err := document.Normalize(in.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: items: %w", ErrInvalid, err)
	}
	res := &insertion{parent: path[:len(path)-1], sel: last, where: where}
	if items != nil {
		res.items = items.([]any)
	}
	return res, nil
}

// Patch returns the patch p was compiled from.
func (pr *Patcher) Patch() *Patch {
	return pr.patch
}

// Apply applies the patch to doc, recording changes in rec. doc is not
// modified. Changes are only passed on to rec when the whole patch applies.
func (pr *Patcher) Apply(doc document.Doc, rec changes.Recorder) (document.Doc, error) {
	if rec == nil {
		rec = changes.Discard
	}
	if doc == nil {
		if debug.Patch() {
			debug.Logf("patch on absent document skipped\n")
		}
		return nil, nil
	}
	p := pr.patch
	if p.ID != "" && doc.ID() != "" && p.ID != doc.ID() {
		return nil, fmt.Errorf("%w: patch for %q applied to %q", ErrDocumentID, p.ID, doc.ID())
	}
	if p.IfRevisionID != "" && p.IfRevisionID != doc.Rev() {
		return nil, fmt.Errorf("%w: patch requires revision %q, document has %q",
			document.ErrRevisionMismatch, p.IfRevisionID, doc.Rev())
	}
	if pr.cond != nil {
		ok, err := pr.eval(doc)
		if err != nil {
			return nil, err
		}
		if !ok {
			if debug.Patch() {
				debug.Logf("patch condition %q false on %s\n", p.If, doc)
			}
			return doc, nil
		}
	}
	local := changes.NewChangeSet()
	res, err := pr.apply(doc.Clone(), local)
	if err != nil {
		return nil, err
	}
	for _, c := range local.Changes() {
		rec.Modify(c)
	}
	if debug.Patch() {
		debug.Logf("patch %d changes => %s\n", local.Len(), res)
	}
	return res, nil
}

func (pr *Patcher) eval(doc document.Doc) (bool, error) {
	out, err := expr.Run(pr.cond, exprEnv(doc))
	if err != nil {
		return false, fmt.Errorf("if %q: %w", pr.patch.If, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: if %q gave %T", ErrType, pr.patch.If, out)
	}
	return b, nil
}

func exprEnv(doc document.Doc) map[string]any {
	return map[string]any{
		"doc": map[string]any(doc),
		"rev": doc.Rev(),
		"get": func(path string) any {
			p, err := ParsePath(path)
			if err != nil {
				return nil
			}
			v, _ := p.Get(map[string]any(doc))
			return v
		},
	}
}

func (pr *Patcher) apply(doc document.Doc, rec *changes.ChangeSet) (document.Doc, error) {
	root := map[string]any(doc)
	for _, a := range pr.setIfMissing {
		_, _, err := a.path.update(root, true, func(old any, exists bool) (any, action, error) {
			if exists {
				return old, keep, nil
			}
			v := document.CloneValue(a.value)
			rec.Modify(changes.Change{Kind: changes.KindSet, Path: a.path.String(), To: document.CloneValue(v)})
			return v, replace, nil
		})
		if err != nil {
			return nil, fmt.Errorf("setIfMissing %s: %w", a.path, err)
		}
	}
	for _, a := range pr.set {
		_, _, err := a.path.update(root, true, func(old any, exists bool) (any, action, error) {
			v := document.CloneValue(a.value)
			rec.Modify(changes.Change{Kind: changes.KindSet, Path: a.path.String(), From: document.CloneValue(old), To: document.CloneValue(v)})
			return v, replace, nil
		})
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", a.path, err)
		}
	}
	for _, u := range pr.unset {
		_, _, err := u.update(root, false, func(old any, exists bool) (any, action, error) {
			if !exists {
				return nil, keep, nil
			}
			rec.Modify(changes.Change{Kind: changes.KindUnset, Path: u.String(), From: document.CloneValue(old)})
			return nil, remove, nil
		})
		if err != nil {
			return nil, fmt.Errorf("unset %s: %w", u, err)
		}
	}
	for _, d := range pr.deltas {
		_, _, err := d.path.update(root, false, func(old any, exists bool) (any, action, error) {
			if !exists {
				return nil, keep, nil
			}
			f, ok := toFloat(old)
			if !ok {
				return nil, keep, fmt.Errorf("%w: cannot increment a %s", ErrType, typeName(old))
			}
			v := f + d.by
			rec.Modify(changes.Change{Kind: changes.KindSet, Path: d.path.String(), From: old, To: v})
			return v, replace, nil
		})
		if err != nil {
			return nil, fmt.Errorf("inc %s: %w", d.path, err)
		}
	}
	if pr.insert != nil {
		if err := pr.insert.apply(root, rec); err != nil {
			return nil, err
		}
	}
	dmp := diffpatch.New()
	for _, tp := range pr.texts {
		_, _, err := tp.path.update(root, false, func(old any, exists bool) (any, action, error) {
			if !exists {
				return nil, keep, nil
			}
			s, ok := old.(string)
			if !ok {
				return nil, keep, fmt.Errorf("%w: cannot apply a text patch to a %s", ErrType, typeName(old))
			}
			ns, applied := dmp.PatchApply(tp.patches, s)
			for _, ok := range applied {
				if !ok {
					return nil, keep, fmt.Errorf("%w: text patch did not apply", ErrInvalid)
				}
			}
			rec.Modify(changes.Change{Kind: changes.KindSet, Path: tp.path.String(), From: s, To: ns, Patch: dmp.PatchToText(tp.patches)})
			return ns, replace, nil
		})
		if err != nil {
			return nil, fmt.Errorf("diffMatchPatch %s: %w", tp.path, err)
		}
	}
	if pr.merge != nil {
		next, err := pr.wholeDoc(doc, func(d []byte) ([]byte, error) {
			return jsonpatch.MergePatch(d, pr.merge)
		})
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		changes.Record(rec, doc, next)
		doc = next
	}
	if pr.jsonPatch != nil {
		next, err := pr.wholeDoc(doc, pr.jsonPatch.Apply)
		if err != nil {
			return nil, fmt.Errorf("jsonPatch: %w", err)
		}
		changes.Record(rec, doc, next)
		doc = next
	}
	return doc, nil
}

func (pr *Patcher) wholeDoc(doc document.Doc, f func([]byte) ([]byte, error)) (document.Doc, error) {
	d, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	out, err := f(d)
	if err != nil {
		return nil, err
	}
	next, err := document.Parse(out)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, errors.New("patch produced null")
	}
	return next, nil
}

func (in *insertion) apply(root map[string]any, rec *changes.ChangeSet) error {
	parent := in.parent.String()
	canCreate := in.where != "replace" && in.sel.Index != nil && (*in.sel.Index == 0 || *in.sel.Index == -1)
	_, _, err := in.parent.update(root, canCreate, func(old any, exists bool) (any, action, error) {
		var arr []any
		if exists && old != nil {
			a, ok := old.([]any)
			if !ok {
				return nil, keep, fmt.Errorf("%w: cannot insert into a %s", ErrType, typeName(old))
			}
			arr = a
		}
		var pos int
		if len(arr) == 0 {
			if !canCreate {
				return old, keep, nil
			}
			pos = 0
		} else {
			i, ok := in.sel.resolve(arr)
			if !ok {
				return old, keep, nil
			}
			switch in.where {
			case "before":
				pos = i
			case "after":
				pos = i + 1
			case "replace":
				pos = i
				rec.Modify(changes.Change{Kind: changes.KindUnset, Path: fmt.Sprintf("%s[%d]", parent, i), From: document.CloneValue(arr[i])})
				arr = append(arr[:i:i], arr[i+1:]...)
			}
		}
		items := document.CloneValue(in.items).([]any)
		res := make([]any, 0, len(arr)+len(items))
		res = append(res, arr[:pos]...)
		res = append(res, items...)
		res = append(res, arr[pos:]...)
		for k, item := range items {
			rec.Modify(changes.Change{Kind: changes.KindInsert, Path: fmt.Sprintf("%s[%d]", parent, pos+k), To: document.CloneValue(item)})
		}
		return res, replace, nil
	})
	if err != nil {
		return fmt.Errorf("insert %s %s: %w", in.where, Path(append(slices.Clone(in.parent), in.sel)), err)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
