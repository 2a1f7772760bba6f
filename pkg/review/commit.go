package review

import (
	"context"
	"fmt"

	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

// CommentPrefix marks commits produced by a review.
const CommentPrefix = "[Review] "

// Committer submits a bundle to a project. *collabclient.Session implements it.
type Committer interface {
	Commit(ctx context.Context, project models.ProjectID, bundle *models.CommitBundle) (*models.ChangeHistory, error)
}

// Commit applies the accepted edits to doc and submits them as one commit.
//
// Reviews are cleared before anything else. When nothing was accepted no
// remote call is made and a nil history is returned. When doc is not bound to
// a project the edits stay applied locally, the reviews stay cleared, and the
// error wraps constants.ErrDocumentNotVersioned.
func (m *Manager) Commit(ctx context.Context, doc Document, committer Committer, comment string) (*models.ChangeHistory, error) {
	edits := m.ReviewOntologyChanges()
	m.ClearUncommittedReviews()
	if len(edits) == 0 {
		return nil, nil
	}

	if err := doc.Apply(edits); err != nil {
		return nil, fmt.Errorf("apply reviewed edits: %w", err)
	}

	project, ok := doc.Project()
	if !ok {
		m.logger.Warn("commit ignored, the document is not associated with a server")
		return nil, constants.ErrDocumentNotVersioned
	}

	bundle := models.NewCommitBundle(doc.Head(), CommentPrefix+comment, edits...)
	history, err := committer.Commit(ctx, project, bundle)
	if err != nil {
		return nil, err
	}
	if err := doc.Advance(history); err != nil {
		return nil, err
	}

	m.logger.Info("reviews committed", "project", project, "head", history.HeadRevision(), "edits", len(edits))
	m.emit(ReviewsCommitted)
	return history, nil
}
