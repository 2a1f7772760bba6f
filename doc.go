// Package collabclient is the client side of a collaborative editing protocol
// for versioned documents.
//
// A [Session] is one authenticated user talking to one remote authority. The
// authority owns the canonical revision history of every project, the user,
// role and operation registry, and the server configuration. The session
// exposes all of it as plain Go calls.
//
// # Connection Engines
//
// There are 2 connection engines, HTTP and WebSocket. Pass the authority
// endpoint URL to [FromEndpointURLString] and the scheme picks the engine:
// http and https use [github.com/ontoserver/collabclient/pkg/connection/http],
// ws and wss use [github.com/ontoserver/collabclient/pkg/connection/gorillaws].
//
// The connection is established by the first call and re-established after a
// transport failure. All exchanges are CBOR encoded.
//
// # Committing
//
// Edits are submitted as a [models.CommitBundle] computed against a base
// revision. [Session.Commit] makes exactly one attempt: if another writer
// advanced the head in the meantime the commit fails with an
// [*OutOfSyncError] and nothing is recorded. Recompute the edits against the
// new head and build a new bundle.
//
// [Session.CreateProject] creates a project and its first revision in two
// steps and deletes the project again when the second step fails.
//
// # Errors
//
// Remote failures are sorted into a small set of types:
//
//   - [*AuthorizationError] when the user lacks a privilege
//   - [*OutOfSyncError] when a commit lost the race
//   - [*SynchronizationError] when the session has no active project
//   - [*ClientRequestError] for everything else, wrapping a
//     [*ServiceFault] or a [*TransportError]
//   - [*CompensationError] when a rollback failed
//
// Use [errors.As] to tell them apart.
//
// # Reviews
//
// The [github.com/ontoserver/collabclient/pkg/review] package lets a user
// accept or reject incoming changes before they are folded into a new commit.
package collabclient
