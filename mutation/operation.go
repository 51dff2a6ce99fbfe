package mutation

import (
	"github.com/signadot/mutator/document"
	"github.com/signadot/mutator/patch"
)

type Kind int

const (
	KindUnsupported Kind = iota - 1
	KindCreate
	KindCreateIfNotExists
	KindCreateOrReplace
	KindDelete
	KindPatch
)

var kindNames = map[Kind]string{
	KindCreate:            "create",
	KindCreateIfNotExists: "createIfNotExists",
	KindCreateOrReplace:   "createOrReplace",
	KindDelete:            "delete",
	KindPatch:             "patch",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unsupported"
}

// IsCreate reports whether k creates documents which do not exist.
func (k Kind) IsCreate() bool {
	switch k {
	case KindCreate, KindCreateIfNotExists, KindCreateOrReplace:
		return true
	}
	return false
}

// Operation is one of Create, CreateIfNotExists, CreateOrReplace, Delete and
// Patch.
type Operation interface {
	Kind() Kind
	isOperation()
}

// Create creates Document when the document is absent and is otherwise
// skipped.
type Create struct {
	Document document.Doc
}

// CreateIfNotExists has the same rule as Create.
type CreateIfNotExists struct {
	Document document.Doc
}

// CreateOrReplace replaces the document, present or not.
type CreateOrReplace struct {
	Document document.Doc
}

// Delete removes the document. ID names the deleted document for routing
// and auditing; it is not checked.
type Delete struct {
	ID string
}

// Patch applies a patch to an existing document.
type Patch struct {
	Patch *patch.Patch
}

// unsupported holds a decoded operation descriptor of no known kind.
type unsupported struct {
	raw  map[string]any
	keys []string
}

func (Create) Kind() Kind            { return KindCreate }
func (CreateIfNotExists) Kind() Kind { return KindCreateIfNotExists }
func (CreateOrReplace) Kind() Kind   { return KindCreateOrReplace }
func (Delete) Kind() Kind            { return KindDelete }
func (Patch) Kind() Kind             { return KindPatch }
func (unsupported) Kind() Kind       { return KindUnsupported }

func (Create) isOperation()            {}
func (CreateIfNotExists) isOperation() {}
func (CreateOrReplace) isOperation()   {}
func (Delete) isOperation()            {}
func (Patch) isOperation()             {}
func (unsupported) isOperation()       {}

// deref turns pointers to operations into operation values. Nil operations
// and nil pointers come back as nil.
func deref(op Operation) Operation {
	switch x := op.(type) {
	case *Create:
		if x != nil {
			return *x
		}
	case *CreateIfNotExists:
		if x != nil {
			return *x
		}
	case *CreateOrReplace:
		if x != nil {
			return *x
		}
	case *Delete:
		if x != nil {
			return *x
		}
	case *Patch:
		if x != nil {
			return *x
		}
	case *unsupported:
		if x != nil {
			return *x
		}
	default:
		return op
	}
	return nil
}

func kindOf(op Operation) Kind {
	op = deref(op)
	if op == nil {
		return KindUnsupported
	}
	return op.Kind()
}
