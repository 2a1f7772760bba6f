package connection

import "github.com/oklog/ulid/v2"

// NewRequestID returns a fresh, lexically sortable request id.
func NewRequestID() string {
	return ulid.Make().String()
}
