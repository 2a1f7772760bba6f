package collabclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

// Commit submits bundle to project and returns the history from the bundle's
// base to the new head.
//
// Exactly one attempt is made. When the base is no longer the head the
// authority rejects the commit with an *OutOfSyncError; the caller must
// recompute its edits against the new head and build a new bundle.
// A bundle can be submitted only once, whatever the outcome.
func (s *Session) Commit(ctx context.Context, project models.ProjectID, bundle *models.CommitBundle) (*models.ChangeHistory, error) {
	if bundle == nil {
		return nil, &ClientRequestError{Message: "no commit bundle given", Err: constants.ErrInvalidArgument}
	}
	if err := bundle.Consume(); err != nil {
		return nil, err
	}

	history, err := call[*models.ChangeHistory](ctx, s, connection.Commit, project, bundle)
	if err != nil {
		var syncErr *OutOfSyncError
		if errors.As(err, &syncErr) {
			syncErr.Project = project
			syncErr.Base = bundle.Base
		}
		return nil, err
	}
	if history == nil {
		return nil, &ClientRequestError{Message: "commit returned no history", Err: constants.ErrInvalidResponse}
	}
	if err := history.Verify(); err != nil {
		return nil, &ClientRequestError{Message: "commit returned an inconsistent history", Err: err}
	}

	s.logger.Debug("commit accepted", "project", project, "head", history.HeadRevision())
	return history, nil
}

// ProjectRequest describes a project to create, with an optional first commit.
type ProjectRequest struct {
	ID          models.ProjectID
	Name        string
	Description string
	Owner       models.UserID
	Options     models.ProjectOptions
	Initial     *models.CommitBundle
}

// CreateProject creates a project and, when req.Initial carries edits,
// commits them as the project's first revision.
//
// If the first commit fails the project is deleted again. When that deletion
// fails too, a *CompensationError carrying both failures is returned.
func (s *Session) CreateProject(ctx context.Context, req ProjectRequest) (models.ServerDocument, error) {
	op := &projectCreation{session: s, req: req}
	if err := op.create(ctx); err != nil {
		return models.ServerDocument{}, err
	}
	if err := op.commitOrCompensate(ctx); err != nil {
		return models.ServerDocument{}, err
	}
	return op.doc, nil
}

// projectCreation runs create, then commit or compensate.
type projectCreation struct {
	session *Session
	req     ProjectRequest
	doc     models.ServerDocument
}

func (op *projectCreation) create(ctx context.Context) error {
	s := op.session
	project := models.Project{
		ID:          op.req.ID,
		Name:        op.req.Name,
		Description: op.req.Description,
		Owner:       op.req.Owner,
		Options:     op.req.Options,
	}
	if project.Owner == "" {
		project.Owner = s.userID
	}

	doc, err := call[models.ServerDocument](ctx, s, connection.CreateProject, project)
	if err == nil {
		if doc.History == nil {
			doc.History = models.NewChangeHistory(models.RevisionBase)
		}
		op.doc = doc
		return nil
	}

	var authErr *AuthorizationError
	switch {
	case errors.As(err, &authErr):
		return err
	case errors.Is(err, constants.ErrIDInUse):
		return &ClientRequestError{Message: fmt.Sprintf("project id %s is already used", op.req.ID), Err: err}
	}

	// The authority may have stored the project before failing.
	if delErr := exec(ctx, s, connection.DeleteProject, op.req.ID, true); delErr != nil && !errors.Is(delErr, constants.ErrNotFound) {
		s.logger.Warn("cleanup after failed project creation failed", "project", op.req.ID, "error", delErr)
	}
	return &ClientRequestError{Message: "failed to create a new project", Err: err}
}

func (op *projectCreation) commitOrCompensate(ctx context.Context) error {
	bundle := op.req.Initial
	if bundle == nil || bundle.IsEmpty() {
		return nil
	}

	history, err := op.session.Commit(ctx, op.req.ID, bundle)
	if err != nil {
		return op.compensate(ctx, err)
	}
	op.doc.History = history
	return nil
}

func (op *projectCreation) compensate(ctx context.Context, cause error) error {
	s := op.session
	s.logger.Info("initial commit failed, deleting project", "project", op.req.ID, "error", cause)

	if err := exec(ctx, s, connection.DeleteProject, op.req.ID, true); err != nil {
		s.logger.Error("compensating delete failed", "project", op.req.ID, "error", err)
		return &CompensationError{
			Action: fmt.Sprintf("deleting project %s", op.req.ID),
			Err:    err,
			Cause:  cause,
		}
	}
	return &ClientRequestError{Message: "failed to create a new project", Err: cause}
}
