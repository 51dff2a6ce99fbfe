package mutation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/mutator/document"

	json "github.com/goccy/go-json"
)

func TestParse(t *testing.T) {
	in := `{
		"transactionId": "tx1",
		"identity": "alice",
		"previousRev": "r0",
		"timestamp": "2024-05-06T07:08:09Z",
		"mutations": [
			{"createIfNotExists": {"_id": "a", "n": 1}},
			{"patch": {"id": "a", "inc": {"n": 2}}},
			{"delete": {"id": "a"}}
		]
	}`
	m, err := Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if m.TransactionID() != "tx1" || m.Identity() != "alice" || m.PreviousRev() != "r0" {
		t.Errorf("metadata not decoded: %s", m)
	}
	if got, ok := m.Timestamp(); !ok || !got.Equal(ts) {
		t.Errorf("timestamp %v %t", got, ok)
	}
	var kinds []Kind
	for _, op := range m.Operations() {
		kinds = append(kinds, op.Kind())
	}
	want := []Kind{KindCreateIfNotExists, KindPatch, KindDelete}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if id := m.Operations()[2].(Delete).ID; id != "a" {
		t.Errorf("delete id %q", id)
	}
}

func TestParseUnsupported(t *testing.T) {
	tests := []string{
		`{"mutations": [{"frobnicate": {}}]}`,
		`{"mutations": [{"create": {}, "delete": {"id": "a"}}]}`,
		`{"mutations": [{}]}`,
		`{"mutations": [{"create": null}]}`,
		`{"mutations": [{"createIfNotExists": null}]}`,
		`{"mutations": [{"createOrReplace": null}]}`,
	}
	for _, in := range tests {
		m, err := Parse([]byte(in))
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if m.AppliesToMissingDocument() {
			t.Errorf("%s: unsupported operation applies to missing document", in)
		}
		if _, err := m.Apply(nil, nil); !errors.Is(err, ErrUnsupportedOperation) {
			t.Errorf("%s: expected ErrUnsupportedOperation, got %v", in, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`{"mutations": 3}`,
		`{"mutations": [{"create": 3}]}`,
		`{"mutations": [{"patch": []}]}`,
		`not json`,
	}
	for _, in := range tests {
		if _, err := Parse([]byte(in)); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestParseList(t *testing.T) {
	one, err := ParseList([]byte(` {"transactionId": "a", "mutations": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].TransactionID() != "a" {
		t.Errorf("single: got %v", one)
	}
	many, err := ParseList([]byte(`[{"transactionId": "a"}, {"transactionId": "b"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(many) != 2 || many[1].TransactionID() != "b" {
		t.Errorf("list: got %v", many)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := `{"transactionId":"tx1","resultRev":"r1","mutations":[` +
		`{"create":{"title":"A"}},` +
		`{"patch":{"set":{"title":"B"}}},` +
		`{"frob":1},` +
		`{"delete":{"id":"a"}}]}`
	m, err := Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var want, got any
	if err := json.Unmarshal([]byte(in), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParsedCreateApplies(t *testing.T) {
	m, err := Parse([]byte(`{"resultRev": "r1", "mutations": [{"create": {"n": 1, "o": {"k": [1, 2]}}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Apply(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := document.Doc{"n": 1.0, "o": map[string]any{"k": []any{1.0, 2.0}}, "_rev": "r1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
	}
}
