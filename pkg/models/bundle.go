package models

import (
	"github.com/ontoserver/collabclient/pkg/constants"
)

// EditKind names the kind of an atomic edit. The core never interprets it
// beyond mapping it to the operation a user needs to perform it.
type EditKind string

const (
	EditAddAxiom                 EditKind = EditKind(OpAddAxiom)
	EditRemoveAxiom              EditKind = EditKind(OpRemoveAxiom)
	EditAddOntologyAnnotation    EditKind = EditKind(OpAddOntologyAnnotation)
	EditRemoveOntologyAnnotation EditKind = EditKind(OpRemoveOntologyAnnotation)
	EditAddImport                EditKind = EditKind(OpAddImport)
	EditRemoveImport             EditKind = EditKind(OpRemoveImport)
	EditModifyOntologyIRI        EditKind = EditKind(OpModifyOntologyIRI)
)

// Edit is one opaque atomic edit to a document.
type Edit struct {
	Kind    EditKind `json:"kind"`
	Content string   `json:"content"`
}

// RequiredOperation returns the catalog operation guarding this edit, if any.
func (e Edit) RequiredOperation() (OperationID, bool) {
	id := OperationID(e.Kind)
	_, ok := LookupOperation(id)
	return id, ok
}

// CommitBundle is an ordered set of edits plus the revision they were computed
// against. It is consumed exactly once by the commit coordinator.
type CommitBundle struct {
	Base    DocumentRevision `json:"base"`
	Edits   []Edit           `json:"edits"`
	Comment string           `json:"comment,omitempty"`

	consumed bool
}

func NewCommitBundle(base DocumentRevision, comment string, edits ...Edit) *CommitBundle {
	return &CommitBundle{
		Base:    base,
		Edits:   append([]Edit(nil), edits...),
		Comment: comment,
	}
}

func (b *CommitBundle) IsEmpty() bool {
	return len(b.Edits) == 0
}

// Consume marks the bundle as submitted. It fails on the second call.
func (b *CommitBundle) Consume() error {
	if b.consumed {
		return constants.ErrBundleConsumed
	}
	b.consumed = true
	return nil
}

func (b *CommitBundle) Consumed() bool {
	return b.consumed
}
