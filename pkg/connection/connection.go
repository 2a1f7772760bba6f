package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/internal/codec"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
	"github.com/ontoserver/collabclient/pkg/models"
)

// Connection is a handle to the remote authority.
// Implementations are not required to be safe for concurrent use;
// callers serialize access.
type Connection interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	// Send performs one request/response exchange. A response carrying an
	// error is returned as a non-nil *RPCError.
	Send(ctx context.Context, method string, params ...any) (*RPCResponse[cbor.RawMessage], error)
	GetUnmarshaler() codec.Unmarshaler
}

type Config struct {
	URL         url.URL
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
	// Timeout bounds a single exchange. Zero leaves it to the context.
	Timeout time.Duration
	// Compression enables WebSocket write compression. The HTTP engine ignores it.
	Compression bool
}

// NewConfig creates a Config for the authority endpoint specified by the URL,
// such as "ws://localhost:8080" or "http://localhost:8080".
func NewConfig(u *url.URL) *Config {
	c := models.Cbor{}
	return &Config{
		URL:         *u,
		BaseURL:     fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Marshaler:   c,
		Unmarshaler: c,
		Logger:      logger.New(slog.NewTextHandler(os.Stdout, nil)),
		Timeout:     constants.DefaultHTTPTimeout,
		Compression: true,
	}
}

// Validate reports the first missing piece a connection needs.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if c.Marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if c.Unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return nil
}
