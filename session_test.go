package collabclient

import (
	"context"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/internal/codec"
	"github.com/ontoserver/collabclient/internal/fakeauthority"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	suite.Suite
	scheme  string
	server  *fakeauthority.Server
	session *Session
}

func TestSessionSuiteHTTP(t *testing.T) {
	suite.Run(t, &SessionTestSuite{scheme: "http"})
}

func TestSessionSuiteWS(t *testing.T) {
	suite.Run(t, &SessionTestSuite{scheme: "ws"})
}

func (s *SessionTestSuite) SetupTest() {
	s.server = newTestAuthority(s.T())
	s.session = newTestSession(s.T(), s.server, s.scheme, models.User{ID: "alice", Name: "Alice", Email: "alice@example.org"}, true)
}

func (s *SessionTestSuite) TestLazyConnect() {
	ctx := context.Background()
	s.Equal(connection.StateDisconnected, s.session.State())

	_, err := s.session.GetAllUsers(ctx)
	s.Require().NoError(err)
	s.Equal(connection.StateConnected, s.session.State())

	s.Require().NoError(s.session.Connect(ctx), "connecting twice is a no-op")
	s.Equal(connection.StateConnected, s.session.State())

	s.Require().NoError(s.session.Disconnect(ctx))
	s.Equal(connection.StateDisconnected, s.session.State())
	s.Require().NoError(s.session.Disconnect(ctx))

	users, err := s.session.GetAllUsers(ctx)
	s.Require().NoError(err)
	s.Equal(connection.StateConnected, s.session.State())
	s.Len(users, 1)
}

func (s *SessionTestSuite) TestReconnectsAfterTransportFailure() {
	ctx := context.Background()
	s.Require().NoError(s.session.Connect(ctx))

	s.server.Inject(connection.GetRootDirectory, fakeauthority.Injection{Drop: true, Times: 1})
	_, err := s.session.GetRootDirectory(ctx)
	s.Require().Error(err)

	var reqErr *ClientRequestError
	s.Require().ErrorAs(err, &reqErr)
	var transportErr *TransportError
	s.Require().ErrorAs(err, &transportErr)
	s.Equal(string(connection.GetRootDirectory), transportErr.Method)
	s.Equal(connection.StateDisconnected, s.session.State())

	s.Require().NoError(s.session.SetRootDirectory(ctx, "/srv/projects"))
	dir, err := s.session.GetRootDirectory(ctx)
	s.Require().NoError(err)
	s.Equal("/srv/projects", dir)
}

func (s *SessionTestSuite) TestServiceFaultIsClientRequestError() {
	ctx := context.Background()
	s.server.FailOn(connection.GetAllRoles, &connection.RPCError{Code: constants.CodeServiceFault, Message: "disk full"}, 1)

	_, err := s.session.GetAllRoles(ctx)
	var reqErr *ClientRequestError
	s.Require().ErrorAs(err, &reqErr)
	s.Contains(reqErr.Error(), "disk full")

	var fault *ServiceFault
	s.Require().ErrorAs(err, &fault)
	s.Equal(constants.CodeServiceFault, fault.Code)
	s.Equal(connection.StateConnected, s.session.State(), "a remote fault keeps the connection")

	roles, err := s.session.GetAllRoles(ctx)
	s.Require().NoError(err)
	s.NotEmpty(roles)
}

func (s *SessionTestSuite) TestNoActiveProjectMakesNoRemoteCall() {
	ctx := context.Background()
	before := s.server.TotalCalls()

	_, err := s.session.GetActiveRoles(ctx)
	var syncErr *SynchronizationError
	s.Require().ErrorAs(err, &syncErr)
	s.ErrorIs(err, constants.ErrNoActiveProject)

	_, err = s.session.GetActiveOperations(ctx)
	s.Require().ErrorIs(err, constants.ErrNoActiveProject)

	res := s.session.CheckPermission(ctx, models.OpAddAxiom)
	s.False(res.Allowed)
	s.ErrorIs(res.Err, constants.ErrNoActiveProject)
	s.False(s.session.CanAddAxiom(ctx))

	s.Equal(before, s.server.TotalCalls())
	s.Equal(connection.StateDisconnected, s.session.State())
}

func (s *SessionTestSuite) TestActiveProject() {
	ctx := context.Background()
	_, err := s.session.CreateProject(ctx, ProjectRequest{ID: "pizza", Name: "Pizza"})
	s.Require().NoError(err)

	s.Require().NoError(s.session.AssignRole(ctx, "alice", "pizza", fakeauthority.AdminRole))

	s.session.SetActiveProject("pizza")
	id, err := s.session.ActiveProject()
	s.Require().NoError(err)
	s.Equal(models.ProjectID("pizza"), id)

	ops, err := s.session.GetActiveOperations(ctx)
	s.Require().NoError(err)
	s.Len(ops, len(models.Catalog()))

	roles, err := s.session.GetActiveRoles(ctx)
	s.Require().NoError(err)
	s.Require().Len(roles, 1)
	s.Equal(fakeauthority.AdminRole, roles[0].ID)

	s.session.ClearActiveProject()
	_, err = s.session.ActiveProject()
	s.ErrorIs(err, constants.ErrNoActiveProject)
}

func (s *SessionTestSuite) TestServerConfiguration() {
	ctx := context.Background()

	props, err := s.session.GetServerProperties(ctx)
	s.Require().NoError(err)
	s.NotNil(props)
	s.Empty(props)

	s.Require().NoError(s.session.SetServerProperty(ctx, "theme", "dark"))
	props, err = s.session.GetServerProperties(ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"theme": "dark"}, props)

	s.Require().NoError(s.session.UnsetServerProperty(ctx, "theme"))
	props, err = s.session.GetServerProperties(ctx)
	s.Require().NoError(err)
	s.Empty(props)

	s.Require().NoError(s.session.SetHostAddress(ctx, "collab.example.org"))
	s.Require().NoError(s.session.SetSecondaryPort(ctx, 5200))
	host, err := s.session.GetHost(ctx)
	s.Require().NoError(err)
	s.Equal("collab.example.org", host.URI)
	s.Equal(5200, host.SecondaryPort)

	err = s.session.SetSecondaryPort(ctx, 70000)
	var reqErr *ClientRequestError
	s.ErrorAs(err, &reqErr)
}

func TestFromEndpointURLString(t *testing.T) {
	server := newTestAuthority(t)
	token, err := server.RegisterUser(models.User{ID: "bob"}, false)
	require.NoError(t, err)

	_, err = FromEndpointURLString("ftp://"+server.Address(), token)
	assert.ErrorIs(t, err, constants.ErrUnsupportedScheme)

	_, err = FromEndpointURLString("not a url", token)
	assert.Error(t, err)

	_, err = FromEndpointURLString(server.URL("http"), "garbage")
	assert.Error(t, err)

	s, err := FromEndpointURLString(server.URL("ws"), token)
	require.NoError(t, err)
	assert.Equal(t, models.UserID("bob"), s.UserID())
	assert.Equal(t, token, s.AuthToken())
}

func TestUnreachableAuthority(t *testing.T) {
	server, err := fakeauthority.New(testSecret).Start("127.0.0.1:0")
	require.NoError(t, err)
	token, err := server.RegisterUser(models.User{ID: "carol"}, false)
	require.NoError(t, err)
	addr := server.URL("http")
	require.NoError(t, server.Stop())

	s, err := FromEndpointURLString(addr, token)
	require.NoError(t, err)
	s.SetActiveProject("pizza")

	ctx := context.Background()
	err = s.Connect(ctx)
	var reqErr *ClientRequestError
	require.ErrorAs(t, err, &reqErr)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, connection.StateDisconnected, s.State())

	assert.False(t, s.IsAllowed(ctx, models.OpAddAxiom), "unreachable authority denies")
	assert.False(t, s.CanOpenProject(ctx))
}

func TestUserInfoIsCached(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "dave", Name: "Dave", Email: "dave@example.org"}, false)
	before := server.TotalCalls()

	info := s.UserInfo()
	assert.Equal(t, models.UserInfo{ID: "dave", Name: "Dave", Email: "dave@example.org"}, info)
	assert.Equal(t, info, s.UserInfo())
	assert.Equal(t, before, server.TotalCalls())
}

func TestSessionIsSafeForConcurrentUse(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "ws", models.User{ID: "erin"}, true)
	ctx := context.Background()

	errs := make(chan error, 16)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := s.GetAllOperations(ctx)
			errs <- err
		}()
	}
	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, cap(errs), server.Calls(connection.GetAllOperations))
}

func TestAuthorizationErrorIsNotWrapped(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "frank"}, false)

	_, err := s.CreateUser(context.Background(), models.User{ID: "grace"})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	var reqErr *ClientRequestError
	assert.False(t, errors.As(err, &reqErr))
}

func TestActiveQueriesWrapRemoteFailures(t *testing.T) {
	server := newTestAuthority(t)
	s := newTestSession(t, server, "http", models.User{ID: "heidi"}, true)
	ctx := context.Background()
	s.SetActiveProject("pizza")

	denied := &connection.RPCError{Code: constants.CodeAuthorization, Message: "denied"}
	server.FailOn(connection.GetRoles, denied, 1)
	server.FailOn(connection.GetOperations, denied, 1)

	_, rolesErr := s.GetActiveRoles(ctx)
	_, opsErr := s.GetActiveOperations(ctx)
	for _, err := range []error{rolesErr, opsErr} {
		var reqErr *ClientRequestError
		require.ErrorAs(t, err, &reqErr)
		var authErr *AuthorizationError
		require.ErrorAs(t, err, &authErr)
	}
}

// peerClosingConn reports itself closed once the peer is gone.
type peerClosingConn struct {
	peerGone bool
	closes   int
}

func (c *peerClosingConn) Connect(context.Context) error { return nil }

func (c *peerClosingConn) Close(context.Context) error {
	c.closes++
	return nil
}

func (c *peerClosingConn) IsClosed() bool { return c.peerGone }

func (c *peerClosingConn) GetUnmarshaler() codec.Unmarshaler { return models.Cbor{} }

func (c *peerClosingConn) Send(context.Context, string, ...any) (*connection.RPCResponse[cbor.RawMessage], error) {
	if c.peerGone {
		return nil, constants.ErrConnectionClosed
	}
	return &connection.RPCResponse[cbor.RawMessage]{ID: "1"}, nil
}

func TestReconnectsWhenPeerClosed(t *testing.T) {
	server := newTestAuthority(t)
	token, err := server.RegisterUser(models.User{ID: "dave"}, false)
	require.NoError(t, err)

	var conns []*peerClosingConn
	s, err := FromConnection(func() connection.Connection {
		conn := &peerClosingConn{}
		conns = append(conns, conn)
		return conn
	}, token)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.GetRootDirectory(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)

	conns[0].peerGone = true
	_, err = s.GetRootDirectory(ctx)
	require.NoError(t, err, "a connection closed by the peer is replaced before sending")
	require.Len(t, conns, 2)
	assert.Equal(t, 1, conns[0].closes)
	assert.Equal(t, connection.StateConnected, s.State())
}
