package review

import (
	"fmt"
	"sync"

	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

// Document is the local copy of a project a review commits from.
type Document interface {
	// Project reports the remote project the document is bound to.
	Project() (models.ProjectID, bool)
	// Head is the last revision the document is known to match.
	Head() models.DocumentRevision
	// Apply changes the local content. It does not record anything remotely.
	Apply(edits []models.Edit) error
	// Advance moves the document to the head of h, which must start at Head.
	Advance(h *models.ChangeHistory) error
}

// LocalDocument is an in-memory Document. Its content is the list of edits
// applied so far.
type LocalDocument struct {
	mu      sync.Mutex
	project *models.ProjectID
	history *models.ChangeHistory
	content []models.Edit
	pending []models.Edit
}

// NewLocalDocument returns a document that is not bound to any project.
func NewLocalDocument() *LocalDocument {
	return &LocalDocument{history: models.NewChangeHistory(models.RevisionBase)}
}

// NewVersionedDocument returns a document bound to project whose content is
// the replay of h.
func NewVersionedDocument(project models.ProjectID, h *models.ChangeHistory) (*LocalDocument, error) {
	content, err := h.ChangesBetween(h.StartRevision(), h.HeadRevision())
	if err != nil {
		return nil, err
	}
	own, err := h.Since(h.StartRevision())
	if err != nil {
		return nil, err
	}
	return &LocalDocument{project: &project, history: own, content: content}, nil
}

func (d *LocalDocument) Project() (models.ProjectID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.project == nil {
		return "", false
	}
	return *d.project, true
}

func (d *LocalDocument) Head() models.DocumentRevision {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.HeadRevision()
}

func (d *LocalDocument) Apply(edits []models.Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.content = append(d.content, edits...)
	d.pending = append(d.pending, edits...)
	return nil
}

func (d *LocalDocument) Advance(h *models.ChangeHistory) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if h.StartRevision() != d.history.HeadRevision() {
		return fmt.Errorf("%w: history starts at %v, document is at %v", constants.ErrRevisionOrder, h.StartRevision(), d.history.HeadRevision())
	}
	for _, e := range h.Entries {
		d.history.Append(e.Metadata, e.Edits)
	}
	d.pending = nil
	return nil
}

// Content returns every edit applied to the document.
func (d *LocalDocument) Content() []models.Edit {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Edit(nil), d.content...)
}

// Uncommitted returns the edits applied since the last Advance.
func (d *LocalDocument) Uncommitted() []models.Edit {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Edit(nil), d.pending...)
}

// History returns a copy of the document's history.
func (d *LocalDocument) History() *models.ChangeHistory {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, _ := d.history.Since(d.history.StartRevision())
	return h
}
