package collabclient

import (
	"context"
	"testing"
	"time"

	"github.com/ontoserver/collabclient/internal/fakeauthority"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "collabclient-test-secret"

// newTestAuthority starts an in-memory authority on a random local port.
func newTestAuthority(t *testing.T) *fakeauthority.Server {
	t.Helper()

	server, err := fakeauthority.New(testSecret).Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, server.Stop())
	})
	return server
}

// newTestSession registers user on server and opens a session for it.
// scheme is "http" or "ws".
func newTestSession(t *testing.T, server *fakeauthority.Server, scheme string, user models.User, admin bool) *Session {
	t.Helper()

	token, err := server.RegisterUser(user, admin)
	require.NoError(t, err)

	s, err := FromEndpointURLString(server.URL(scheme), token, WithTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Disconnect(context.Background())
	})
	return s
}

var schemes = []string{"http", "ws"}
