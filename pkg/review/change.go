// Package review lets a user accept or reject individual incoming changes
// before folding the accepted ones into a new commit.
//
// A review starts from [Diff], which turns a range of a change history into
// one [Change] per edit. A [Manager] tracks the [Status] of every change and
// commits the accepted edits through a [Committer].
package review

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/ontoserver/collabclient/pkg/models"
)

type Status int

const (
	Pending Status = iota
	Accepted
	Rejected
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Accepted:
		return "ACCEPTED"
	case Rejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts the names returned by Status.String.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{Pending, Accepted, Rejected} {
		if st.String() == s {
			return st, nil
		}
	}
	return Pending, fmt.Errorf("unknown review status %q", s)
}

// Change is one edit of a diff, identified independently of its content.
type Change struct {
	ID       uuid.UUID
	Revision models.DocumentRevision
	Author   models.UserID
	Date     models.DateTime
	Comment  string
	// Position is the index of the change in its diff.
	Position int
	Edit     models.Edit
}

// Diff returns the edits recorded between from and to as changes, in the
// order they were applied.
func Diff(h *models.ChangeHistory, from, to models.DocumentRevision) ([]Change, error) {
	n, err := models.Distance(from, to)
	if err != nil {
		return nil, err
	}

	var changes []Change
	for i := 0; i < n; i++ {
		rev := from.Next(i)
		meta, err := h.MetadataFor(rev)
		if err != nil {
			return nil, err
		}
		edits, err := h.EditsAt(rev)
		if err != nil {
			return nil, err
		}
		for _, e := range edits {
			id, err := uuid.NewV4()
			if err != nil {
				return nil, fmt.Errorf("change id: %w", err)
			}
			changes = append(changes, Change{
				ID:       id,
				Revision: rev,
				Author:   meta.Author,
				Date:     meta.Date,
				Comment:  meta.Comment,
				Position: len(changes),
				Edit:     e,
			})
		}
	}
	return changes, nil
}
