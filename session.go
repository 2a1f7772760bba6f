package collabclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/connection/gorillaws"
	"github.com/ontoserver/collabclient/pkg/connection/http"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
)

// Session is one authenticated user talking to one authority.
//
// The connection is established lazily by the first call and re-established
// after Disconnect or a transport failure. Exchanges are strictly sequential;
// a Session may be shared between goroutines.
type Session struct {
	newConn func() connection.Connection
	logger  logger.Logger
	timeout time.Duration
	// compression is nil unless WithCompression was given.
	compression *bool

	// connMu serializes the connection lifecycle and every exchange.
	connMu sync.Mutex
	conn   connection.Connection
	state  connection.State

	token  models.AuthToken
	userID models.UserID

	mu            sync.Mutex
	activeProject *models.ProjectID
	userInfo      *models.UserInfo
}

type Option func(s *Session)

// WithTimeout bounds every exchange of sessions built from an endpoint URL.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithCompression toggles WebSocket write compression for sessions built
// from a ws or wss endpoint. It is on by default.
func WithCompression(enabled bool) Option {
	return func(s *Session) {
		s.compression = &enabled
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// FromEndpointURLString creates a session for the authority at endpoint.
// The scheme selects the engine: http and https use HTTP, ws and wss use WebSocket.
func FromEndpointURLString(endpoint string, token models.AuthToken, opts ...Option) (*Session, error) {
	u, err := url.ParseRequestURI(endpoint)
	if err != nil {
		return nil, err
	}

	s, err := FromConnection(nil, token, opts...)
	if err != nil {
		return nil, err
	}

	conf := connection.NewConfig(u)
	conf.Logger = s.logger
	if s.timeout > 0 {
		conf.Timeout = s.timeout
	}
	if s.compression != nil {
		conf.Compression = *s.compression
	}

	switch u.Scheme {
	case "http", "https":
		s.newConn = func() connection.Connection { return http.New(conf) }
	case "ws", "wss":
		s.newConn = func() connection.Connection { return gorillaws.New(conf) }
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedScheme, u.Scheme)
	}

	return s, nil
}

// FromConnection creates a session using connections built by newConn.
// newConn is called again whenever the session reconnects.
func FromConnection(newConn func() connection.Connection, token models.AuthToken, opts ...Option) (*Session, error) {
	claims, err := token.Claims()
	if err != nil {
		return nil, err
	}

	s := &Session{
		newConn: newConn,
		token:   token,
		userID:  models.UserID(claims.Subject),
		state:   connection.StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}

	return s, nil
}

func (s *Session) AuthToken() models.AuthToken {
	return s.token
}

func (s *Session) UserID() models.UserID {
	return s.userID
}

// UserInfo returns the user's id, name and email as carried by the token.
// It is computed once and never re-fetched.
func (s *Session) UserInfo() models.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userInfo == nil {
		info := models.UserInfo{ID: string(s.userID)}
		if claims, err := s.token.Claims(); err == nil {
			info = claims.UserInfo()
		}
		s.userInfo = &info
	}
	return *s.userInfo
}

// SetActiveProject binds the session to a project.
func (s *Session) SetActiveProject(id models.ProjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeProject = &id
}

func (s *Session) ClearActiveProject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeProject = nil
}

// ActiveProject fails with a *SynchronizationError wrapping
// constants.ErrNoActiveProject when no project is bound.
func (s *Session) ActiveProject() (models.ProjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeProject == nil {
		return "", &SynchronizationError{Err: constants.ErrNoActiveProject}
	}
	return *s.activeProject, nil
}

// State reports the connection state.
func (s *Session) State() connection.State {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.state
}

// Connect establishes the connection. It is a no-op when already connected.
func (s *Session) Connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.connectLocked(ctx)
}

// Disconnect closes the connection. The next call reconnects.
func (s *Session) Disconnect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.state != connection.StateConnected {
		return nil
	}
	err := s.conn.Close(ctx)
	s.conn = nil
	s.mustTransitionTo(connection.StateDisconnected)
	return err
}

// closer is implemented by engines that notice when the peer goes away.
type closer interface {
	IsClosed() bool
}

func (s *Session) connectLocked(ctx context.Context) error {
	if s.state == connection.StateConnected {
		c, ok := s.conn.(closer)
		if !ok || !c.IsClosed() {
			return nil
		}
		s.logger.Debug("connection closed by peer, reconnecting")
		s.dropLocked(ctx)
	}

	s.mustTransitionTo(connection.StateConnecting)
	conn := s.newConn()
	if err := conn.Connect(ctx); err != nil {
		s.mustTransitionTo(connection.StateDisconnected)
		return &ClientRequestError{
			Message: "failed to connect to the authority",
			Err:     &TransportError{Method: "connect", Err: err},
		}
	}
	s.conn = conn
	s.mustTransitionTo(connection.StateConnected)
	return nil
}

// dropLocked forgets a connection that failed at the transport level.
func (s *Session) dropLocked(ctx context.Context) {
	if s.state != connection.StateConnected {
		return
	}
	if err := s.conn.Close(ctx); err != nil {
		s.logger.Debug("closing broken connection failed", "error", err)
	}
	s.conn = nil
	s.mustTransitionTo(connection.StateDisconnected)
}

func (s *Session) transitionTo(newState connection.State) error {
	newState, err := s.state.TransitionTo(newState)
	if err != nil {
		return err
	}

	s.state = newState
	s.logger.Debug("Session state transitioned", "new_state", newState)

	return nil
}

func (s *Session) mustTransitionTo(newState connection.State) {
	if err := s.transitionTo(newState); err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
}

// call performs one exchange with the session token prepended to params,
// connecting first if needed, and translates failures.
func call[Result any](ctx context.Context, s *Session, method connection.RPCFunction, params ...any) (Result, error) {
	var zero Result

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if err := s.connectLocked(ctx); err != nil {
		return zero, err
	}

	res, err := connection.Call[Result](s.conn, ctx, method, append([]any{s.token}, params...)...)
	if err != nil {
		translated := translate(method, err)
		var transportErr *TransportError
		if errors.As(translated, &transportErr) {
			s.dropLocked(ctx)
		}
		return zero, translated
	}
	return res, nil
}

// exec is call for methods without a result.
func exec(ctx context.Context, s *Session, method connection.RPCFunction, params ...any) error {
	_, err := call[any](ctx, s, method, params...)
	return err
}
