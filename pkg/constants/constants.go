package constants

import "time"

const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultWSTimeout   = 30 * time.Second

	// OneSecondToNanoSecond converts between the two halves of a DateTime on the wire.
	OneSecondToNanoSecond = 1_000_000_000
)

var (
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
	WebsocketScheme       = "ws"
	SecureWebsocketScheme = "wss"
)

// RPC error codes sent by the remote authority.
const (
	CodeParseError    = -32700
	CodeInvalidParams = -32602
	CodeMethodMissing = -32601
	CodeServiceFault  = -32000
	CodeAuthorization = -32001
	CodeOutOfSync     = -32002
	CodeIDInUse       = -32003
	CodeNotFound      = -32004
)
