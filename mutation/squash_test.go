package mutation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/patch"
)

func TestSquashPreservesOrder(t *testing.T) {
	a := New(Params{TransactionID: "a", PreviousRev: "r0", Mutations: []Operation{
		CreateIfNotExists{Document: document.Doc{"title": "x"}},
		setTitle("A"),
	}})
	b := New(Params{TransactionID: "b", Mutations: []Operation{setTitle("B")}})
	c := New(Params{TransactionID: "c", Mutations: []Operation{
		Patch{Patch: &patch.Patch{Set: map[string]any{"tags": []any{"t"}}}},
	}})
	s := Squash(nil, []*Mutation{a, b, c})
	if s.TransactionID() != "" || s.PreviousRev() != "" || s.ResultRev() != "" {
		t.Errorf("metadata carried over: %s", s)
	}
	if _, ok := s.Timestamp(); ok {
		t.Errorf("timestamp carried over")
	}
	var want []Operation
	for _, m := range []*Mutation{a, b, c} {
		want = append(want, m.Operations()...)
	}
	if len(s.Operations()) != len(want) {
		t.Fatalf("got %d operations want %d", len(s.Operations()), len(want))
	}
	for i, op := range s.Operations() {
		if op.Kind() != want[i].Kind() {
			t.Errorf("operation %d: got %s want %s", i, op.Kind(), want[i].Kind())
		}
	}

	got, err := s.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	seq, err := ApplyAll(nil, []*Mutation{
		New(Params{Mutations: a.Operations()}),
		New(Params{Mutations: b.Operations()}),
		New(Params{Mutations: c.Operations()}),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(seq, got); diff != "" {
		t.Errorf("squashed result differs (-sequential +squashed):\n%s", diff)
	}
	if diff := cmp.Diff(document.Doc{"title": "B", "tags": []any{"t"}}, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}

func TestSquashEmpty(t *testing.T) {
	s := Squash(nil, nil)
	if len(s.Operations()) != 0 {
		t.Errorf("got %d operations", len(s.Operations()))
	}
	if !s.AppliesToMissingDocument() {
		t.Errorf("empty squash does not apply to missing document")
	}
}

func TestSquashOptions(t *testing.T) {
	s := Squash(nil, []*Mutation{New(Params{Mutations: []Operation{Create{}}})}, WithStrictCreate(true))
	if _, err := s.Apply(document.Doc{}, nil); err == nil {
		t.Errorf("expected strict create to fail")
	}
}

func TestOptimize(t *testing.T) {
	tests := []struct {
		name string
		in   []Operation
		want []Kind
	}{
		{"empty", nil, []Kind{}},
		{"no reset", []Operation{Create{}, setTitle("a")}, []Kind{KindCreate, KindPatch}},
		{"delete", []Operation{Create{}, setTitle("a"), Delete{}}, []Kind{KindDelete}},
		{"replace", []Operation{setTitle("a"), CreateOrReplace{}, setTitle("b")}, []Kind{KindCreateOrReplace, KindPatch}},
		{"last reset wins", []Operation{Delete{}, Create{}, CreateOrReplace{}, setTitle("b")}, []Kind{KindCreateOrReplace, KindPatch}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []Kind{}
			for _, op := range Optimize(tt.in) {
				got = append(got, op.Kind())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Optimize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptimizeSameResult(t *testing.T) {
	ops := []Operation{
		CreateIfNotExists{Document: document.Doc{"a": 1.0}},
		setTitle("x"),
		CreateOrReplace{Document: document.Doc{"b": 2.0}},
		setTitle("y"),
	}
	full, err := New(Params{Mutations: ops}).Apply(document.Doc{"z": true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	opt, err := New(Params{Mutations: Optimize(ops)}).Apply(document.Doc{"z": true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(full, opt); diff != "" {
		t.Errorf("optimized result differs (-full +optimized):\n%s", diff)
	}
}
