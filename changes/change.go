package changes

import (
	"fmt"

	"github.com/signadot/mutator/document"
)

type Kind int

const (
	KindCreate Kind = iota
	KindDelete
	KindSet
	KindUnset
	KindInsert
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindDelete:
		return "delete"
	case KindSet:
		return "set"
	case KindUnset:
		return "unset"
	case KindInsert:
		return "insert"
	default:
		return fmt.Sprintf("<kind %d>", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Change is a single recorded event.
type Change struct {
	Kind Kind `json:"kind"`
	// Path is the field path for field level changes, empty for
	// document creation and deletion.
	Path string `json:"path,omitempty"`
	From any    `json:"from,omitempty"`
	To   any    `json:"to,omitempty"`
	// Patch holds a diff-match-patch text when a string value changed.
	Patch string `json:"patch,omitempty"`
	// Doc is the created document for KindCreate.
	Doc document.Doc `json:"doc,omitempty"`
}

func (c Change) String() string {
	switch c.Kind {
	case KindCreate:
		return fmt.Sprintf("create %s", c.Doc)
	case KindDelete:
		return "delete"
	case KindUnset:
		return fmt.Sprintf("unset %s", c.Path)
	default:
		return fmt.Sprintf("%s %s: %v -> %v", c.Kind, c.Path, c.From, c.To)
	}
}

// Recorder receives change events. Recorders are append-only and are written
// by a single goroutine at a time.
type Recorder interface {
	Create(doc document.Doc)
	Delete()
	Modify(c Change)
}

// ChangeSet is the default Recorder, keeping every event in order.
type ChangeSet struct {
	changes []Change
}

func NewChangeSet() *ChangeSet {
	return &ChangeSet{}
}

func (cs *ChangeSet) Create(doc document.Doc) {
	cs.changes = append(cs.changes, Change{Kind: KindCreate, Doc: doc.Clone()})
}

func (cs *ChangeSet) Delete() {
	cs.changes = append(cs.changes, Change{Kind: KindDelete})
}

func (cs *ChangeSet) Modify(c Change) {
	cs.changes = append(cs.changes, c)
}

// Changes returns the recorded events in the order they happened.
func (cs *ChangeSet) Changes() []Change {
	return append([]Change(nil), cs.changes...)
}

func (cs *ChangeSet) Len() int {
	return len(cs.changes)
}

// Kinds returns the kind of each recorded event in order.
func (cs *ChangeSet) Kinds() []Kind {
	res := make([]Kind, len(cs.changes))
	for i := range cs.changes {
		res[i] = cs.changes[i].Kind
	}
	return res
}

type discard struct{}

func (discard) Create(document.Doc) {}
func (discard) Delete()             {}
func (discard) Modify(Change)       {}

// Discard is a Recorder which drops everything.
var Discard Recorder = discard{}
