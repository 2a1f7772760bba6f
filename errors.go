package collabclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

// AuthorizationError reports that the session user lacks the privilege for
// the requested operation. It is never wrapped into a ClientRequestError.
type AuthorizationError struct {
	Method  string
	Message string
	Err     error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: not authorized: %s", e.Method, e.Message)
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

// OutOfSyncError reports a commit whose base revision is no longer the head.
// The edits must be recomputed against the new head before a retry.
type OutOfSyncError struct {
	Project models.ProjectID
	Base    models.DocumentRevision
	Message string
	Err     error
}

func (e *OutOfSyncError) Error() string {
	return fmt.Sprintf("commit to %s based on %v is out of sync: %s", e.Project, e.Base, e.Message)
}

func (e *OutOfSyncError) Unwrap() error {
	return e.Err
}

// SynchronizationError is a local precondition failure about the document's
// link to a remote project. Nothing is sent over the wire.
type SynchronizationError struct {
	Err error
}

func (e *SynchronizationError) Error() string {
	return e.Err.Error()
}

func (e *SynchronizationError) Unwrap() error {
	return e.Err
}

// ServiceFault is any other failure reported by the authority.
type ServiceFault struct {
	Method string
	Code   int
	Err    error
}

func (e *ServiceFault) Error() string {
	return fmt.Sprintf("%s failed (code %d): %v", e.Method, e.Code, e.Err)
}

func (e *ServiceFault) Unwrap() error {
	return e.Err
}

// TransportError reports that the authority could not be reached or answered
// with something that is not a response.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: cannot reach the authority: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClientRequestError is what every ServiceFault and TransportError becomes at
// the public API. Message is meant for the user; Err keeps the cause.
type ClientRequestError struct {
	Message string
	Err     error
}

func (e *ClientRequestError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" || e.Message == e.Err.Error() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ClientRequestError) Unwrap() error {
	return e.Err
}

// CompensationError reports a failed rollback. Err is the rollback failure,
// Cause the failure that triggered the rollback. The remote state may need
// manual cleanup.
type CompensationError struct {
	Action string
	Err    error
	Cause  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s failed, the authority may hold a partial result: %v (rolling back after: %v)", e.Action, e.Err, e.Cause)
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

// translate applies the session's error policy to a failed exchange.
func translate(method connection.RPCFunction, err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *connection.RPCError
	if !errors.As(err, &rpcErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &ClientRequestError{Message: fmt.Sprintf("%s was interrupted", method), Err: &TransportError{Method: string(method), Err: err}}
		}
		return &ClientRequestError{Err: &TransportError{Method: string(method), Err: err}}
	}

	switch rpcErr.Code {
	case constants.CodeAuthorization:
		return &AuthorizationError{Method: string(method), Message: rpcErr.Error(), Err: rpcErr}
	case constants.CodeOutOfSync:
		return &OutOfSyncError{Message: rpcErr.Error(), Err: rpcErr}
	default:
		return &ClientRequestError{
			Message: rpcErr.Error(),
			Err:     &ServiceFault{Method: string(method), Code: rpcErr.Code, Err: rpcErr},
		}
	}
}
