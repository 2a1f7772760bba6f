package constants

import "errors"

var (
	ErrIDInUse              = errors.New("id already in use")
	ErrNotFound             = errors.New("not found")
	ErrTimeout              = errors.New("timeout")
	ErrNoBaseURL            = errors.New("base url not set")
	ErrNoMarshaler          = errors.New("marshaler is not set")
	ErrNoUnmarshaler        = errors.New("unmarshaler is not set")
	ErrInvalidResponse      = errors.New("invalid response from the remote authority")
	ErrInvalidResponseID    = errors.New("invalid response id")
	ErrConnectionClosed     = errors.New("connection closed")
	ErrUnsupportedScheme    = errors.New("unsupported endpoint scheme")
	ErrRevisionOrder        = errors.New("head revision precedes start revision")
	ErrBundleConsumed       = errors.New("commit bundle already submitted")
	ErrNoActiveProject      = errors.New("the current document is not linked to a remote project")
	ErrMethodNotAvailable   = errors.New("method not available on this connection")
	ErrDocumentNotVersioned = errors.New("document is not associated with a remote project")
	ErrUnknownChange        = errors.New("change is not part of this review")
	ErrInvalidArgument      = errors.New("invalid argument")
)
