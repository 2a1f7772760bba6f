package collabclient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axiom(content string) models.Edit {
	return models.Edit{Kind: models.EditAddAxiom, Content: content}
}

func TestCommitAdvancesHead(t *testing.T) {
	for _, scheme := range schemes {
		t.Run(scheme, func(t *testing.T) {
			server := newTestAuthority(t)
			s := newTestSession(t, server, scheme, models.User{ID: "alice"}, true)
			ctx := context.Background()

			doc, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza", Name: "Pizza"})
			require.NoError(t, err)
			require.NotNil(t, doc.History)
			assert.Equal(t, models.RevisionBase, doc.History.HeadRevision())

			history, err := s.Commit(ctx, "pizza", models.NewCommitBundle(0, "first", axiom("A"), axiom("B")))
			require.NoError(t, err)
			assert.Equal(t, models.DocumentRevision(0), history.StartRevision())
			assert.Equal(t, models.DocumentRevision(1), history.HeadRevision())

			meta, err := history.MetadataFor(0)
			require.NoError(t, err)
			assert.Equal(t, models.UserID("alice"), meta.Author)
			assert.Equal(t, "first", meta.Comment)

			history, err = s.Commit(ctx, "pizza", models.NewCommitBundle(1, "second", axiom("C")))
			require.NoError(t, err)
			assert.Equal(t, models.DocumentRevision(1), history.StartRevision())
			assert.Equal(t, models.DocumentRevision(2), history.HeadRevision())

			opened, err := s.OpenProject(ctx, "pizza")
			require.NoError(t, err)
			edits, err := opened.History.ChangesBetween(0, 2)
			require.NoError(t, err)
			assert.Equal(t, []models.Edit{axiom("A"), axiom("B"), axiom("C")}, edits)
		})
	}
}

func TestCommitOutOfSync(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	ctx := context.Background()

	_, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza", Initial: models.NewCommitBundle(0, "init", axiom("A"))})
	require.NoError(t, err)

	_, err = s.Commit(ctx, "pizza", models.NewCommitBundle(0, "stale", axiom("B")))
	var syncErr *OutOfSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, models.ProjectID("pizza"), syncErr.Project)
	assert.Equal(t, models.DocumentRevision(0), syncErr.Base)

	var reqErr *ClientRequestError
	assert.False(t, errors.As(err, &reqErr), "out of sync is reported as is")
	assert.Equal(t, 2, server.Calls(connection.Commit), "no automatic retry")

	head, ok := server.Head("pizza")
	require.True(t, ok)
	assert.Equal(t, models.DocumentRevision(1), head)
}

func TestCommitBundleIsSingleUse(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	ctx := context.Background()

	_, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza"})
	require.NoError(t, err)

	bundle := models.NewCommitBundle(0, "once", axiom("A"))
	_, err = s.Commit(ctx, "pizza", bundle)
	require.NoError(t, err)

	before := server.Calls(connection.Commit)
	_, err = s.Commit(ctx, "pizza", bundle)
	assert.ErrorIs(t, err, constants.ErrBundleConsumed)
	assert.Equal(t, before, server.Calls(connection.Commit))
}

func TestCommitWithoutBundle(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)

	_, err := s.Commit(context.Background(), "pizza", nil)
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.ErrorIs(t, err, constants.ErrInvalidArgument)
	assert.Zero(t, server.Calls(connection.Commit))
}

func TestCommitRequiresEditPermission(t *testing.T) {
	server := newTestAuthority(t)
	admin := newTestSession(t, server, "http", models.User{ID: "admin"}, true)
	reader := newTestSession(t, server, "http", models.User{ID: "reader"}, false)
	ctx := context.Background()

	_, err := admin.CreateProject(ctx, ProjectRequest{ID: "pizza"})
	require.NoError(t, err)
	_, err = admin.CreateRole(ctx, models.Role{ID: "viewer", Operations: []models.OperationID{models.OpOpenProject}})
	require.NoError(t, err)
	require.NoError(t, admin.AssignRole(ctx, "reader", "pizza", "viewer"))

	_, err = reader.Commit(ctx, "pizza", models.NewCommitBundle(0, "", axiom("A")))
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, string(connection.Commit), authErr.Method)
}

func TestConcurrentCommitsExactlyOneWins(t *testing.T) {
	server := newTestAuthority(t)
	admin := newTestSession(t, server, "http", models.User{ID: "admin"}, true)
	ctx := context.Background()
	_, err := admin.CreateProject(ctx, ProjectRequest{ID: "pizza"})
	require.NoError(t, err)

	sessions := []*Session{
		newTestSession(t, server, "http", models.User{ID: "alice"}, true),
		newTestSession(t, server, "ws", models.User{ID: "bob"}, true),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			_, errs[i] = s.Commit(ctx, "pizza", models.NewCommitBundle(0, string(s.UserID()), axiom(string(s.UserID()))))
		}(i, s)
	}
	wg.Wait()

	var succeeded, outOfSync int
	for _, err := range errs {
		var syncErr *OutOfSyncError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &syncErr):
			outOfSync++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfSync)

	head, _ := server.Head("pizza")
	assert.Equal(t, models.DocumentRevision(1), head)
}

func TestCreateProjectWithInitialCommit(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "ws", models.User{ID: "alice"}, true)
	ctx := context.Background()

	doc, err := s.CreateProject(ctx, ProjectRequest{
		ID:      "pizza",
		Name:    "Pizza",
		Initial: models.NewCommitBundle(0, "import", axiom("A"), axiom("B")),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectID("pizza"), doc.ProjectID)
	assert.Equal(t, models.DocumentRevision(1), doc.History.HeadRevision())

	projects, err := s.GetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, models.UserID("alice"), projects[0].Owner)
}

func TestCreateProjectIDInUse(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	ctx := context.Background()

	_, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza"})
	require.NoError(t, err)

	_, err = s.CreateProject(ctx, ProjectRequest{ID: "pizza"})
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, reqErr.Message, "already used")
	assert.ErrorIs(t, err, constants.ErrIDInUse)
	assert.Zero(t, server.Calls(connection.DeleteProject), "an existing project is never compensated")
	assert.True(t, server.HasProject("pizza"))
}

func TestCreateProjectUnauthorized(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "guest"}, false)

	_, err := s.CreateProject(context.Background(), ProjectRequest{ID: "pizza"})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, server.Calls(connection.DeleteProject))
}

func TestCreateProjectFailureCleansUp(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	server.FailOn(connection.CreateProject, &connection.RPCError{Code: constants.CodeServiceFault, Message: "storage offline"}, 1)

	_, err := s.CreateProject(context.Background(), ProjectRequest{ID: "pizza"})
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "failed to create a new project", reqErr.Message)
	assert.Equal(t, 1, server.Calls(connection.DeleteProject))
	assert.False(t, server.HasProject("pizza"))
}

func TestCreateProjectCompensatesFailedInitialCommit(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	ctx := context.Background()
	server.FailOn(connection.Commit, &connection.RPCError{Code: constants.CodeServiceFault, Message: "commit rejected"}, 1)

	_, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza", Initial: models.NewCommitBundle(0, "init", axiom("A"))})
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "failed to create a new project", reqErr.Message)
	var compErr *CompensationError
	assert.False(t, errors.As(err, &compErr))

	assert.False(t, server.HasProject("pizza"))
	projects, err := s.GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestCreateProjectCompensationFailure(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)
	ctx := context.Background()
	server.FailOn(connection.Commit, &connection.RPCError{Code: constants.CodeServiceFault, Message: "commit rejected"}, 1)
	server.FailOn(connection.DeleteProject, &connection.RPCError{Code: constants.CodeServiceFault, Message: "delete rejected"}, 1)

	_, err := s.CreateProject(ctx, ProjectRequest{ID: "pizza", Initial: models.NewCommitBundle(0, "init", axiom("A"))})
	var compErr *CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Contains(t, compErr.Err.Error(), "delete rejected")
	assert.Contains(t, compErr.Cause.Error(), "commit rejected")

	var fault *ServiceFault
	assert.ErrorAs(t, err, &fault)
	assert.True(t, server.HasProject("pizza"), "the authority keeps the partial result")
}

func TestOpenProjectNotFound(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "alice"}, true)

	_, err := s.OpenProject(context.Background(), "missing")
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}
