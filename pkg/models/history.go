package models

import (
	"fmt"

	"github.com/ontoserver/collabclient/pkg/constants"
)

// ChangeMetadata describes who recorded a revision, when, and why.
type ChangeMetadata struct {
	Author  UserID   `json:"author"`
	Date    DateTime `json:"date"`
	Comment string   `json:"comment"`
}

// RevisionEntry is what was recorded at one revision: the metadata and the
// ordered edits that advance it to the next revision.
type RevisionEntry struct {
	Metadata ChangeMetadata `json:"metadata"`
	Edits    []Edit         `json:"edits"`
}

// ChangeHistory is the closed interval [Start, Head] of a project's history.
// Entries[i] holds what was recorded at revision Start.Next(i), so there is
// exactly one entry per revision in [Start, Head).
type ChangeHistory struct {
	Start   DocumentRevision `json:"start"`
	Head    DocumentRevision `json:"head"`
	Entries []RevisionEntry  `json:"entries"`
}

func NewChangeHistory(start DocumentRevision) *ChangeHistory {
	return &ChangeHistory{Start: start, Head: start}
}

func (h *ChangeHistory) StartRevision() DocumentRevision {
	return h.Start
}

func (h *ChangeHistory) HeadRevision() DocumentRevision {
	return h.Head
}

// Len is the number of recorded revisions. It is always derived from the
// revision chain, never from a stored counter.
func (h *ChangeHistory) Len() int {
	n, err := Distance(h.Start, h.Head)
	if err != nil {
		return 0
	}
	return n
}

func (h *ChangeHistory) IsEmpty() bool {
	return h.Len() == 0
}

func (h *ChangeHistory) entry(rev DocumentRevision) (*RevisionEntry, error) {
	if rev < h.Start || rev >= h.Head {
		return nil, fmt.Errorf("%w: revision %v outside [%v, %v)", constants.ErrNotFound, rev, h.Start, h.Head)
	}
	offset, _ := Distance(h.Start, rev)
	if offset >= len(h.Entries) {
		return nil, fmt.Errorf("%w: no entry recorded for revision %v", constants.ErrNotFound, rev)
	}
	return &h.Entries[offset], nil
}

// MetadataFor returns the metadata recorded at rev.
func (h *ChangeHistory) MetadataFor(rev DocumentRevision) (ChangeMetadata, error) {
	e, err := h.entry(rev)
	if err != nil {
		return ChangeMetadata{}, err
	}
	return e.Metadata, nil
}

// EditsAt returns the edits recorded at rev, in application order.
func (h *ChangeHistory) EditsAt(rev DocumentRevision) ([]Edit, error) {
	e, err := h.entry(rev)
	if err != nil {
		return nil, err
	}
	return append([]Edit(nil), e.Edits...), nil
}

// ChangesBetween returns the ordered edits to replay to go from `from` to `to`.
func (h *ChangeHistory) ChangesBetween(from, to DocumentRevision) ([]Edit, error) {
	n, err := Distance(from, to)
	if err != nil {
		return nil, err
	}
	if from < h.Start || to > h.Head {
		return nil, fmt.Errorf("%w: range [%v, %v) outside [%v, %v]", constants.ErrNotFound, from, to, h.Start, h.Head)
	}

	var edits []Edit
	for i := 0; i < n; i++ {
		e, err := h.entry(from.Next(i))
		if err != nil {
			return nil, err
		}
		edits = append(edits, e.Edits...)
	}
	return edits, nil
}

// Append records a new revision at the current head and advances the head by one.
func (h *ChangeHistory) Append(meta ChangeMetadata, edits []Edit) DocumentRevision {
	h.Entries = append(h.Entries, RevisionEntry{
		Metadata: meta,
		Edits:    append([]Edit(nil), edits...),
	})
	h.Head = h.Head.Next(1)
	return h.Head
}

// Since returns the sub-history [from, Head]. It shares no storage with h.
func (h *ChangeHistory) Since(from DocumentRevision) (*ChangeHistory, error) {
	if from < h.Start || from > h.Head {
		return nil, fmt.Errorf("%w: revision %v outside [%v, %v]", constants.ErrNotFound, from, h.Start, h.Head)
	}
	offset, _ := Distance(h.Start, from)
	sub := &ChangeHistory{Start: from, Head: h.Head}
	for _, e := range h.Entries[offset:] {
		sub.Entries = append(sub.Entries, RevisionEntry{
			Metadata: e.Metadata,
			Edits:    append([]Edit(nil), e.Edits...),
		})
	}
	return sub, nil
}

// Verify checks that head is reachable from start and that every revision in
// [Start, Head) has an entry.
func (h *ChangeHistory) Verify() error {
	n, err := Distance(h.Start, h.Head)
	if err != nil {
		return err
	}
	if n != len(h.Entries) {
		return fmt.Errorf("%w: history spans %d revisions but holds %d entries", constants.ErrInvalidResponse, n, len(h.Entries))
	}
	return nil
}
