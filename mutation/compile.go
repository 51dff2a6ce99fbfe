package mutation

import (
	"fmt"

	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/patch"
)

type step func(document.Doc, changes.Recorder) (document.Doc, error)

// compile builds the pipeline on first use. Nothing is kept when an
// operation fails to compile.
func (m *Mutation) compile() (pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.compiled != nil {
		return m.compiled, nil
	}
	var ts string
	if m.params.Timestamp != nil {
		ts = document.FormatTime(*m.params.Timestamp)
	}
	steps := make([]step, 0, len(m.params.Mutations)+1)
	for i, op := range m.params.Mutations {
		s, err := m.compileOp(op, ts)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		steps = append(steps, s)
	}
	if ts != "" {
		steps = append(steps, func(doc document.Doc, _ changes.Recorder) (document.Doc, error) {
			if doc != nil {
				doc[document.UpdatedAtField] = ts
			}
			return doc, nil
		})
	}
	prevRev := m.params.PreviousRev
	rev := m.params.ResultRev
	if rev == "" {
		rev = m.params.TransactionID
	}
	m.compiled = func(doc document.Doc, rec changes.Recorder) (document.Doc, error) {
		if prevRev != "" && prevRev != doc.Rev() {
			return nil, fmt.Errorf("%w: previous revision for this mutation was %q, but the document revision is %q",
				ErrRevisionMismatch, prevRev, doc.Rev())
		}
		local := changes.NewChangeSet()
		res := doc.Clone()
		for _, s := range steps {
			var err error
			if res, err = s(res, local); err != nil {
				return nil, err
			}
		}
		if res != nil && rev != "" {
			res[document.RevField] = rev
		}
		flush(local, rec)
		return res, nil
	}
	return m.compiled, nil
}

func (m *Mutation) compileOp(op Operation, ts string) (step, error) {
	switch x := deref(op).(type) {
	case Create:
		return m.createStep(x.Document, KindCreate, ts)
	case CreateIfNotExists:
		return m.createStep(x.Document, KindCreateIfNotExists, ts)
	case CreateOrReplace:
		return m.createStep(x.Document, KindCreateOrReplace, ts)
	case Delete:
		return func(_ document.Doc, rec changes.Recorder) (document.Doc, error) {
			rec.Delete()
			return nil, nil
		}, nil
	case Patch:
		pr, err := patch.Compile(x.Patch)
		if err != nil {
			return nil, err
		}
		return pr.Apply, nil
	case unsupported:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOperation, x.keys)
	case nil:
		return nil, fmt.Errorf("%w: nil operation", ErrUnsupportedOperation)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOperation, op)
	}
}

func (m *Mutation) createStep(body document.Doc, kind Kind, ts string) (step, error) {
	body, err := document.FromValue(map[string]any(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if body == nil {
		body = document.Doc{}
	}
	strict := m.strictCreate && kind == KindCreate
	return func(doc document.Doc, rec changes.Recorder) (document.Doc, error) {
		if doc != nil && kind != KindCreateOrReplace {
			if strict {
				return nil, fmt.Errorf("%w: %q", ErrDocumentExists, doc.ID())
			}
			return doc, nil
		}
		next := body.Clone()
		if ts != "" {
			next[document.CreatedAtField] = ts
		}
		rec.Create(next)
		return next, nil
	}, nil
}

func flush(cs *changes.ChangeSet, rec changes.Recorder) {
	for _, c := range cs.Changes() {
		switch c.Kind {
		case changes.KindCreate:
			rec.Create(c.Doc)
		case changes.KindDelete:
			rec.Delete()
		default:
			rec.Modify(c)
		}
	}
}
