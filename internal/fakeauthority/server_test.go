package fakeauthority_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/ontoserver/collabclient/internal/fakeauthority"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/connection/gorillaws"
	httpengine "github.com/ontoserver/collabclient/pkg/connection/http"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*fakeauthority.Server, models.AuthToken) {
	t.Helper()

	server, err := fakeauthority.New("secret").Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, server.Stop())
	})

	token, err := server.RegisterUser(models.User{ID: "root", Name: "Root"}, true)
	require.NoError(t, err)
	return server, token
}

func engines(t *testing.T, server *fakeauthority.Server) map[string]connection.Connection {
	t.Helper()

	config := func(scheme string) *connection.Config {
		u, err := url.Parse(server.URL(scheme))
		require.NoError(t, err)
		conf := connection.NewConfig(u)
		conf.Logger = logger.Discard()
		conf.Timeout = 5 * time.Second
		return conf
	}

	return map[string]connection.Connection{
		"http": httpengine.New(config("http")),
		"ws":   gorillaws.New(config("ws")),
	}
}

func TestServerOverBothTransports(t *testing.T) {
	server, token := startServer(t)
	ctx := context.Background()

	for name, conn := range engines(t, server) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, conn.Connect(ctx))
			defer conn.Close(ctx)

			project := models.ProjectID("pizza-" + name)
			doc, err := connection.Call[models.ServerDocument](conn, ctx, connection.CreateProject, token, models.Project{ID: project})
			require.NoError(t, err)
			require.NotNil(t, doc.History)
			assert.Equal(t, models.RevisionBase, doc.History.HeadRevision())

			bundle := models.NewCommitBundle(0, "init", models.Edit{Kind: models.EditAddAxiom, Content: "x"})
			sub, err := connection.Call[*models.ChangeHistory](conn, ctx, connection.Commit, token, project, bundle)
			require.NoError(t, err)
			require.NoError(t, sub.Verify())
			assert.Equal(t, models.DocumentRevision(1), sub.HeadRevision())

			_, err = connection.Call[*models.ChangeHistory](conn, ctx, connection.Commit, token, project, bundle)
			var rpcErr *connection.RPCError
			require.ErrorAs(t, err, &rpcErr)
			assert.Equal(t, constants.CodeOutOfSync, rpcErr.Code)
		})
	}
}

func TestServerDropsConnection(t *testing.T) {
	server, token := startServer(t)
	ctx := context.Background()

	for name, conn := range engines(t, server) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, conn.Connect(ctx))
			defer conn.Close(ctx)

			server.Inject(connection.GetRootDirectory, fakeauthority.Injection{Drop: true, Times: 1})
			_, err := connection.Call[string](conn, ctx, connection.GetRootDirectory, token)
			require.Error(t, err)
			var rpcErr *connection.RPCError
			assert.False(t, errors.As(err, &rpcErr), "a dropped connection is not a remote fault")
		})
	}
}

func TestServerHealth(t *testing.T) {
	server, _ := startServer(t)
	u, err := url.Parse(server.URL("http"))
	require.NoError(t, err)

	conn := httpengine.New(connection.NewConfig(u))
	require.NoError(t, conn.Connect(context.Background()))
}
