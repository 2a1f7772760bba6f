// Package fakeauthority provides an in-memory remote authority for tests and
// for local experiments through the CLI.
//
// It implements the whole RPC surface with real semantics: tokens are HS256
// JWTs, every mutating call is checked against the caller's roles, and commits
// use the same optimistic check as a production authority (base must equal
// head). Failures can be injected per method.
//
// The authority is served over HTTP (POST /rpc, GET /health) through a
// gorilla/mux router, and over WebSocket (GET /rpc with an Upgrade header)
// through gws.
package fakeauthority

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ontoserver/collabclient/internal/codec"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
)

const (
	// AdminRole holds every operation of the catalog.
	AdminRole models.RoleID = "admin"

	defaultIssuer   = "fakeauthority"
	defaultTokenTTL = 24 * time.Hour
)

// Request is the server-side view of a connection.RPCRequest.
// Params stay raw until a handler knows their types.
type Request struct {
	ID     any               `json:"id"`
	Method string            `json:"method"`
	Params []cbor.RawMessage `json:"params"`
}

type Authority struct {
	mu sync.Mutex

	secret   []byte
	issuer   string
	tokenTTL time.Duration
	now      func() time.Time

	users       map[models.UserID]models.User
	admins      map[models.UserID]bool
	projects    map[models.ProjectID]models.Project
	histories   map[models.ProjectID]*models.ChangeHistory
	roles       map[models.RoleID]models.Role
	operations  map[models.OperationID]models.Operation
	assignments map[models.UserID]map[models.ProjectID]map[models.RoleID]struct{}

	host       models.Host
	rootDir    string
	properties map[string]string

	injections map[string][]*Injection
	calls      map[string]int

	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler
	logger      logger.Logger
	handlers    map[string]handlerFunc
}

type Option func(a *Authority)

func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

func WithLogger(l logger.Logger) Option {
	return func(a *Authority) {
		a.logger = l
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Authority) {
		a.tokenTTL = ttl
	}
}

// New creates an authority signing tokens with secret. The operation catalog
// and the AdminRole are preloaded.
func New(secret string, opts ...Option) *Authority {
	c := models.Cbor{}
	a := &Authority{
		secret:      []byte(secret),
		issuer:      defaultIssuer,
		tokenTTL:    defaultTokenTTL,
		now:         time.Now,
		users:       make(map[models.UserID]models.User),
		admins:      make(map[models.UserID]bool),
		projects:    make(map[models.ProjectID]models.Project),
		histories:   make(map[models.ProjectID]*models.ChangeHistory),
		roles:       make(map[models.RoleID]models.Role),
		operations:  make(map[models.OperationID]models.Operation),
		assignments: make(map[models.UserID]map[models.ProjectID]map[models.RoleID]struct{}),
		properties:  make(map[string]string),
		injections:  make(map[string][]*Injection),
		calls:       make(map[string]int),
		marshaler:   c,
		unmarshaler: c,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}

	admin := models.Role{ID: AdminRole, Name: "Administrator", Description: "Every operation"}
	for _, op := range models.Catalog() {
		a.operations[op.ID] = op
		admin.Operations = append(admin.Operations, op.ID)
	}
	a.roles[AdminRole] = admin
	a.handlers = a.routes()

	return a
}

// RegisterUser adds a user directly, bypassing authorization, and returns a
// token for it. Admins may perform every operation on every project.
func (a *Authority) RegisterUser(u models.User, admin bool) (models.AuthToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.users[u.ID]; ok {
		return "", fmt.Errorf("%w: user %s", constants.ErrIDInUse, u.ID)
	}
	a.users[u.ID] = u
	a.admins[u.ID] = admin

	return a.issueToken(u)
}

// IssueToken returns a fresh token for an existing user.
func (a *Authority) IssueToken(id models.UserID) (models.AuthToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	u, ok := a.users[id]
	if !ok {
		return "", fmt.Errorf("%w: user %s", constants.ErrNotFound, id)
	}
	return a.issueToken(u)
}

func (a *Authority) issueToken(u models.User) (models.AuthToken, error) {
	now := a.now()
	claims := &models.TokenClaims{
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return models.AuthToken(signed), nil
}

// verify must be called with mu held.
func (a *Authority) verify(token string) (models.User, *connection.RPCError) {
	claims := &models.TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return models.User{}, authorizationError("invalid token: %v", err)
	}

	u, ok := a.users[models.UserID(claims.Subject)]
	if !ok {
		return models.User{}, authorizationError("unknown user %s", claims.Subject)
	}
	return u, nil
}

// Head returns the current head revision of a project.
func (a *Authority) Head(id models.ProjectID) (models.DocumentRevision, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, ok := a.histories[id]
	if !ok {
		return 0, false
	}
	return h.HeadRevision(), true
}

// HasProject reports whether the project exists.
func (a *Authority) HasProject(id models.ProjectID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.projects[id]
	return ok
}

// Calls returns how many requests for method reached the authority,
// including rejected and injected ones.
func (a *Authority) Calls(method connection.RPCFunction) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[string(method)]
}

// TotalCalls returns the number of requests across all methods.
func (a *Authority) TotalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0
	for _, n := range a.calls {
		total += n
	}
	return total
}

// allowed must be called with mu held.
func (a *Authority) allowed(user models.UserID, op models.OperationID, project models.ProjectID) bool {
	if a.admins[user] {
		return true
	}
	if p, ok := a.projects[project]; ok && p.Owner == user {
		return true
	}
	for roleID := range a.assignments[user][project] {
		if roleHolds(a.roles[roleID], op) {
			return true
		}
	}
	return false
}

// allowedAnywhere is allowed for operations not tied to a project.
func (a *Authority) allowedAnywhere(user models.UserID, op models.OperationID) bool {
	if a.admins[user] {
		return true
	}
	for _, roles := range a.assignments[user] {
		for roleID := range roles {
			if roleHolds(a.roles[roleID], op) {
				return true
			}
		}
	}
	return false
}

func roleHolds(r models.Role, op models.OperationID) bool {
	for _, id := range r.Operations {
		if id == op {
			return true
		}
	}
	return false
}

func sortedValues[K ~string, V any](m map[K]V) []V {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
