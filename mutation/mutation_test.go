package mutation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/patch"
	"github.com/signadot/mutator/txid"
)

var ts = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

const tsString = "2024-05-06T07:08:09Z"

func setTitle(title string) Operation {
	return Patch{Patch: &patch.Patch{Set: map[string]any{"title": title}}}
}

func TestApplyCreate(t *testing.T) {
	m := New(Params{
		TransactionID: "tx1",
		Mutations:     []Operation{Create{Document: document.Doc{"title": "A"}}},
		Timestamp:     &ts,
	})
	got, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := document.Doc{
		"title":      "A",
		"_createdAt": tsString,
		"_updatedAt": tsString,
		"_rev":       "tx1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyCreateWithoutTimestamp(t *testing.T) {
	m := New(Params{
		ResultRev: "r1",
		Mutations: []Operation{Create{Document: document.Doc{"title": "A"}}},
	})
	got, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := document.Doc{"title": "A", "_rev": "r1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateKinds(t *testing.T) {
	existing := document.Doc{"_rev": "r0", "title": "old"}
	body := document.Doc{"title": "new"}
	tests := []struct {
		name string
		op   Operation
		doc  document.Doc
		want document.Doc
	}{
		{"create absent", Create{Document: body}, nil, document.Doc{"title": "new", "_rev": "r1"}},
		{"create existing", Create{Document: body}, existing, document.Doc{"title": "old", "_rev": "r1"}},
		{"createIfNotExists absent", CreateIfNotExists{Document: body}, nil, document.Doc{"title": "new", "_rev": "r1"}},
		{"createIfNotExists existing", CreateIfNotExists{Document: body}, existing, document.Doc{"title": "old", "_rev": "r1"}},
		{"createOrReplace absent", CreateOrReplace{Document: body}, nil, document.Doc{"title": "new", "_rev": "r1"}},
		{"createOrReplace existing", CreateOrReplace{Document: body}, existing, document.Doc{"title": "new", "_rev": "r1"}},
		{"pointer operation", &CreateOrReplace{Document: body}, existing, document.Doc{"title": "new", "_rev": "r1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Params{ResultRev: "r1", Mutations: []Operation{tt.op}})
			got, err := m.Apply(tt.doc, nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStrictCreate(t *testing.T) {
	existing := document.Doc{"_id": "a"}
	m := New(Params{Mutations: []Operation{Create{Document: document.Doc{}}}}, WithStrictCreate(true))
	if _, err := m.Apply(existing, nil); !errors.Is(err, ErrDocumentExists) {
		t.Errorf("expected ErrDocumentExists, got %v", err)
	}
	m = New(Params{Mutations: []Operation{CreateIfNotExists{Document: document.Doc{}}}}, WithStrictCreate(true))
	got, err := m.Apply(existing, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(existing, got); diff != "" {
		t.Errorf("createIfNotExists changed the document (-want +got):\n%s", diff)
	}
}

func TestDeleteThenReapply(t *testing.T) {
	m := New(Params{
		PreviousRev: "r1",
		ResultRev:   "r2",
		Mutations:   []Operation{Delete{ID: "a"}},
	})
	doc := document.Doc{"_rev": "r1", "title": "A"}
	got, err := m.Apply(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected absent document, got %s", got)
	}
	_, err = m.Apply(got, nil)
	if !errors.Is(err, ErrRevisionMismatch) {
		t.Errorf("expected ErrRevisionMismatch, got %v", err)
	}
}

func TestRevisionMismatchLeavesDocument(t *testing.T) {
	doc := document.Doc{"_rev": "r2", "title": "A"}
	before := doc.Clone()
	cs := changes.NewChangeSet()
	m := New(Params{PreviousRev: "r1", Mutations: []Operation{setTitle("B")}})
	got, err := m.Apply(doc, cs)
	if !errors.Is(err, ErrRevisionMismatch) {
		t.Fatalf("expected ErrRevisionMismatch, got %v", err)
	}
	if got != nil {
		t.Errorf("got a document on failure: %s", got)
	}
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Errorf("document changed (-before +after):\n%s", diff)
	}
	if cs.Len() != 0 {
		t.Errorf("changes recorded on failure: %v", cs.Changes())
	}
}

func TestNoPreviousRevNeverFailsPrecondition(t *testing.T) {
	docs := []document.Doc{
		nil,
		{},
		{"_rev": "x"},
		{"_rev": ""},
	}
	for _, doc := range docs {
		m := New(Params{Mutations: []Operation{setTitle("B")}})
		if _, err := m.Apply(doc, nil); errors.Is(err, ErrRevisionMismatch) {
			t.Errorf("precondition failed on %s", doc)
		}
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	doc := document.Doc{"_rev": "r1", "n": 1.0, "o": map[string]any{"k": "v"}}
	before := doc.Clone()
	m := New(Params{
		TransactionID: "tx",
		Timestamp:     &ts,
		Mutations: []Operation{
			Patch{Patch: &patch.Patch{Set: map[string]any{"o.k": "w"}, Inc: map[string]float64{"n": 1}}},
		},
	})
	if _, err := m.Apply(doc, nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, doc); diff != "" {
		t.Errorf("input changed (-before +after):\n%s", diff)
	}
}

func TestAppliesToMissingDocument(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
		want bool
	}{
		{"empty", nil, true},
		{"create", []Operation{Create{}}, true},
		{"createIfNotExists", []Operation{CreateIfNotExists{}}, true},
		{"createOrReplace", []Operation{CreateOrReplace{}}, true},
		{"delete", []Operation{Delete{}}, false},
		{"patch", []Operation{setTitle("x")}, false},
		{"patch then create", []Operation{setTitle("x"), Create{}}, false},
		{"create then patch", []Operation{Create{}, setTitle("x")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Params{Mutations: tt.ops})
			if got := m.AppliesToMissingDocument(); got != tt.want {
				t.Errorf("got %t want %t", got, tt.want)
			}
			if got := m.AppliesToMissingDocument(); got != tt.want {
				t.Errorf("second call got %t want %t", got, tt.want)
			}
		})
	}
}

func TestOperationsAreCopied(t *testing.T) {
	ops := []Operation{Create{Document: document.Doc{"a": 1.0}}}
	m := New(Params{Mutations: ops})
	ops[0] = Delete{}
	if !m.AppliesToMissingDocument() {
		t.Errorf("mutation saw a change to the caller's slice")
	}
	got := m.Operations()
	got[0] = Delete{}
	if kindOf(m.Operations()[0]) != KindCreate {
		t.Errorf("Operations() exposes internal slice")
	}
}

func TestCompileOnceAcrossDocuments(t *testing.T) {
	m := New(Params{
		TransactionID: "tx",
		Mutations: []Operation{
			CreateIfNotExists{Document: document.Doc{"n": 0.0}},
			Patch{Patch: &patch.Patch{Inc: map[string]float64{"n": 1}}},
		},
	})
	a, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Apply(document.Doc{"n": 10.0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a["n"] != 1.0 || b["n"] != 11.0 || c["n"] != 1.0 {
		t.Errorf("got %s, %s, %s", a, b, c)
	}
	a["n"] = 100.0
	d, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d["n"] != 1.0 {
		t.Errorf("state leaked between applications: %s", d)
	}
}

func TestCompiledRevisionIsFixed(t *testing.T) {
	m := New(Params{TransactionID: "tx1", Mutations: []Operation{Create{}}},
		WithIDGenerator(txid.NewSequence("g")))
	got, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	m.AssignRandomTransactionID()
	if m.TransactionID() != "ga1" || m.ResultRev() != "ga1" {
		t.Errorf("got transaction %q result %q", m.TransactionID(), m.ResultRev())
	}
	again, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rev() != "tx1" || again.Rev() != "tx1" {
		t.Errorf("revisions %q %q, want tx1", got.Rev(), again.Rev())
	}
}

func TestAssignRandomTransactionID(t *testing.T) {
	m := New(Params{Mutations: []Operation{Create{}}}, WithIDGenerator(txid.NewSequence("tx-")))
	m.AssignRandomTransactionID()
	got, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rev() != "tx-a1" {
		t.Errorf("got rev %q", got.Rev())
	}
	d := New(Params{})
	d.AssignRandomTransactionID()
	if d.TransactionID() == "" || d.TransactionID() != d.ResultRev() {
		t.Errorf("default generator gave %q/%q", d.TransactionID(), d.ResultRev())
	}
}

func TestUnsupportedOperation(t *testing.T) {
	tests := []struct {
		name string
		ops  []Operation
	}{
		{"nil", []Operation{nil}},
		{"nil pointer", []Operation{(*Create)(nil)}},
		{"unknown", []Operation{unsupported{raw: map[string]any{"frob": 1.0}, keys: []string{"frob"}}}},
		{"after valid", []Operation{Create{}, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Params{Mutations: tt.ops})
			for range 2 {
				if _, err := m.Apply(nil, nil); !errors.Is(err, ErrUnsupportedOperation) {
					t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
				}
			}
			if m.compiled != nil {
				t.Errorf("partial pipeline cached")
			}
		})
	}
}

func TestPatchErrorsPropagate(t *testing.T) {
	m := New(Params{Mutations: []Operation{
		Patch{Patch: &patch.Patch{Inc: map[string]float64{"title": 1}}},
	}})
	_, err := m.Apply(document.Doc{"title": "A"}, nil)
	if !errors.Is(err, patch.ErrType) {
		t.Errorf("expected patch.ErrType, got %v", err)
	}
	bad := New(Params{Mutations: []Operation{Patch{Patch: &patch.Patch{Unset: []string{"a.."}}}}})
	if _, err := bad.Apply(document.Doc{}, nil); !errors.Is(err, patch.ErrPath) {
		t.Errorf("expected patch.ErrPath, got %v", err)
	}
}

func TestApplyAllCreateDelete(t *testing.T) {
	cs := changes.NewChangeSet()
	ms := []*Mutation{
		New(Params{TransactionID: "t1", Mutations: []Operation{Create{Document: document.Doc{"title": "A"}}}}),
		New(Params{TransactionID: "t2", Mutations: []Operation{Delete{}}}),
	}
	got, err := ApplyAll(nil, ms, cs)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected absent document, got %s", got)
	}
	want := []changes.Kind{changes.KindCreate, changes.KindDelete}
	if diff := cmp.Diff(want, cs.Kinds()); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAllRevisionChain(t *testing.T) {
	ms := []*Mutation{
		New(Params{ResultRev: "r1", Mutations: []Operation{Create{Document: document.Doc{"n": 1.0}}}}),
		New(Params{PreviousRev: "r1", ResultRev: "r2", Mutations: []Operation{setTitle("B")}}),
		New(Params{PreviousRev: "r1", ResultRev: "r3", Mutations: []Operation{setTitle("C")}}),
		New(Params{ResultRev: "r4", Mutations: []Operation{setTitle("D")}}),
	}
	cs := changes.NewChangeSet()
	got, err := ApplyAll(nil, ms, cs)
	if !errors.Is(err, ErrRevisionMismatch) {
		t.Fatalf("expected ErrRevisionMismatch, got %v", err)
	}
	want := document.Doc{"n": 1.0, "title": "B", "_rev": "r2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partial result mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]changes.Kind{changes.KindCreate, changes.KindSet}, cs.Kinds()); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyPackageFunc(t *testing.T) {
	m := New(Params{TransactionID: "t", Mutations: []Operation{Create{}}})
	got, err := Apply(nil, m, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rev() != "t" {
		t.Errorf("got %s", got)
	}
}

func TestConcurrentFirstApply(t *testing.T) {
	m := New(Params{TransactionID: "t", Mutations: []Operation{
		CreateIfNotExists{Document: document.Doc{"n": 0.0}},
		Patch{Patch: &patch.Patch{Inc: map[string]float64{"n": 1}}},
	}})
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := m.Apply(nil, nil)
			if err == nil && got["n"] != 1.0 {
				err = errors.New("wrong result " + got.String())
			}
			errs[i] = err
		}()
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}
