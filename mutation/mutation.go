package mutation

import (
	"slices"
	"sync"
	"time"

	"github.com/signadot/mutator/changes"
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/txid"

	json "github.com/goccy/go-json"
)

// Params describes a mutation.
type Params struct {
	TransactionID string `json:"transactionId,omitempty"`
	// Transition classifies how the mutation fits into a larger sequence of
	// transactions. It is opaque to this package.
	Transition string `json:"transition,omitempty"`
	// Identity is the principal responsible for the mutation.
	Identity string `json:"identity,omitempty"`
	// PreviousRev, when set, is the revision the document must have.
	PreviousRev string `json:"previousRev,omitempty"`
	// ResultRev is the revision of the resulting document. When empty
	// TransactionID is used.
	ResultRev string     `json:"resultRev,omitempty"`
	Mutations Operations `json:"mutations"`
	// Timestamp, when set, is stamped as _createdAt on created documents and
	// as _updatedAt on every resulting document.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (p Params) clone() Params {
	p.Mutations = slices.Clone(p.Mutations)
	if p.Timestamp != nil {
		ts := *p.Timestamp
		p.Timestamp = &ts
	}
	return p
}

// Mutation is a set of operations on a single document. Mutations are
// compiled on first application; changes to metadata after that point do
// not affect how the mutation applies.
type Mutation struct {
	mu           sync.Mutex
	params       Params
	ids          txid.Generator
	strictCreate bool

	compiled         pipeline
	appliesToMissing *bool
}

type pipeline func(document.Doc, changes.Recorder) (document.Doc, error)

type Option func(*Mutation)

// WithIDGenerator sets the generator used by AssignRandomTransactionID.
func WithIDGenerator(g txid.Generator) Option {
	return func(m *Mutation) { m.ids = g }
}

// WithStrictCreate makes Create fail with ErrDocumentExists when the
// document already exists instead of being skipped.
func WithStrictCreate(v bool) Option {
	return func(m *Mutation) { m.strictCreate = v }
}

// New creates a mutation. The mutation keeps its own copy of the operation
// list.
func New(p Params, opts ...Option) *Mutation {
	m := &Mutation{params: p.clone(), ids: txid.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutation) TransactionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.TransactionID
}

func (m *Mutation) Transition() string {
	return m.params.Transition
}

func (m *Mutation) Identity() string {
	return m.params.Identity
}

func (m *Mutation) PreviousRev() string {
	return m.params.PreviousRev
}

func (m *Mutation) ResultRev() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.ResultRev
}

// Operations returns a copy of the operation list.
func (m *Mutation) Operations() []Operation {
	return slices.Clone(m.params.Mutations)
}

func (m *Mutation) Timestamp() (time.Time, bool) {
	if m.params.Timestamp == nil {
		return time.Time{}, false
	}
	return *m.params.Timestamp, true
}

// Params returns a copy of the parameters describing m.
func (m *Mutation) Params() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.clone()
}

// AssignRandomTransactionID gives m a fresh transaction id, used as both
// TransactionID and ResultRev.
func (m *Mutation) AssignRandomTransactionID() {
	id := m.ids.NewID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.TransactionID = id
	m.params.ResultRev = id
}

// AppliesToMissingDocument reports whether m can apply to an absent
// document: either its first operation creates the document or it has no
// operations. The answer is computed once.
func (m *Mutation) AppliesToMissingDocument() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appliesToMissing != nil {
		return *m.appliesToMissing
	}
	res := true
	if len(m.params.Mutations) != 0 {
		res = kindOf(m.params.Mutations[0]).IsCreate()
	}
	m.appliesToMissing = &res
	return res
}

func (m *Mutation) String() string {
	d, err := json.Marshal(m.Params())
	if err != nil {
		return "<mutation: " + err.Error() + ">"
	}
	return string(d)
}
