package review_test

import (
	"context"
	"testing"

	"github.com/ontoserver/collabclient"
	"github.com/ontoserver/collabclient/internal/fakeauthority"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/ontoserver/collabclient/pkg/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewAgainstAuthority(t *testing.T) {
	server, err := fakeauthority.New("review-secret").Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, server.Stop()) })

	token, err := server.RegisterUser(models.User{ID: "reviewer"}, true)
	require.NoError(t, err)
	session, err := collabclient.FromEndpointURLString(server.URL("http"), token)
	require.NoError(t, err)
	ctx := context.Background()

	edits := []models.Edit{
		{Kind: models.EditAddAxiom, Content: "A"},
		{Kind: models.EditAddAxiom, Content: "B"},
		{Kind: models.EditAddImport, Content: "C"},
	}
	_, err = session.CreateProject(ctx, collabclient.ProjectRequest{
		ID:      "pizza",
		Initial: models.NewCommitBundle(0, "seed", edits...),
	})
	require.NoError(t, err)

	opened, err := session.OpenProject(ctx, "pizza")
	require.NoError(t, err)
	doc, err := review.NewVersionedDocument("pizza", opened.History)
	require.NoError(t, err)

	changes, err := review.Diff(opened.History, 0, 1)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	m := review.NewManager(changes)
	require.NoError(t, m.SetReviewStatus(review.Accepted, changes[0], changes[2]))

	var committer review.Committer = session
	h, err := m.Commit(ctx, doc, committer, "keep A and C")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentRevision(2), h.HeadRevision())

	meta, err := h.MetadataFor(1)
	require.NoError(t, err)
	assert.Equal(t, "[Review] keep A and C", meta.Comment)
	assert.Equal(t, models.UserID("reviewer"), meta.Author)

	head, ok := server.Head("pizza")
	require.True(t, ok)
	assert.Equal(t, doc.Head(), head)
}
