package gorillaws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/internal/codec"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"

	gorilla "github.com/gorilla/websocket"
)

// DefaultDialer is gorilla's default dialer with compression enabled
// and the "cbor" subprotocol requested.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"cbor"},
}

const closeMessageCode = gorilla.CloseNormalClosure

// Connection multiplexes request/response exchanges over one WebSocket.
// A background read loop routes each response to the waiting Send by id.
type Connection struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	Conn *gorilla.Conn
	// connLock guards Conn for writes and for Close.
	connLock sync.Mutex

	// Timeout bounds the wait for a response after the request was written.
	// Zero leaves it to the caller's context.
	Timeout time.Duration

	// Compression toggles per-message write compression once dialed.
	Compression bool

	logger logger.Logger

	responseChannels     map[string]chan connection.RPCResponse[cbor.RawMessage]
	responseChannelsLock sync.RWMutex

	// connCloseCh is closed once the socket is gone; Send fails fast after that.
	connCloseCh    chan int
	connCloseError error
	closed         bool
}

var _ connection.Connection = (*Connection)(nil)

func New(p *connection.Config) *Connection {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultWSTimeout
	}
	log := p.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Connection{
		BaseURL:          p.BaseURL,
		Marshaler:        p.Marshaler,
		Unmarshaler:      p.Unmarshaler,
		Timeout:          timeout,
		Compression:      p.Compression,
		logger:           log,
		responseChannels: make(map[string]chan connection.RPCResponse[cbor.RawMessage]),
	}
}

// IsClosed reports whether the socket has been closed, locally or by the peer.
func (c *Connection) IsClosed() bool {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	return c.closed || c.Conn == nil
}

func (c *Connection) Connect(ctx context.Context) error {
	conn, res, err := DefaultDialer.DialContext(ctx, fmt.Sprintf("%s/rpc", c.BaseURL), nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	c.connLock.Lock()
	defer c.connLock.Unlock()

	c.Conn = conn
	c.closed = false
	c.connCloseError = nil
	conn.EnableWriteCompression(c.Compression)

	c.connCloseCh = make(chan int)

	go c.readLoop(conn, c.connCloseCh)

	return nil
}

// Close sends a close frame, bounded by ctx, then closes the socket.
func (c *Connection) Close(ctx context.Context) error {
	c.connLock.Lock()
	defer c.connLock.Unlock()

	if c.Conn == nil {
		return nil
	}

	conn := c.Conn
	c.Conn = nil
	c.markClosed(constants.ErrConnectionClosed)

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if err := conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(closeMessageCode, "")); err != nil {
		c.logger.Debug("failed to write close message", "error", err)
	}

	return conn.Close()
}

func (c *Connection) GetUnmarshaler() codec.Unmarshaler {
	return c.Unmarshaler
}

func (c *Connection) Send(ctx context.Context, method string, params ...any) (*connection.RPCResponse[cbor.RawMessage], error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	c.connLock.Lock()
	closeCh := c.connCloseCh
	c.connLock.Unlock()
	if closeCh == nil {
		return nil, constants.ErrConnectionClosed
	}

	select {
	case <-closeCh:
		return nil, c.closeError()
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	id := connection.NewRequestID()
	request := &connection.RPCRequest{
		ID:     id,
		Method: method,
		Params: params,
	}

	responseChan, err := c.createResponseChannel(id)
	if err != nil {
		return nil, err
	}
	defer c.removeResponseChannel(id)

	if err := c.write(request); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", constants.ErrTimeout, method)
		}
		return nil, ctx.Err()
	case <-closeCh:
		return nil, c.closeError()
	case res := <-responseChan:
		if res.Error != nil {
			return nil, res.Error
		}
		return &res, nil
	}
}

func (c *Connection) write(v any) error {
	data, err := c.Marshaler.Marshal(v)
	if err != nil {
		return err
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.Conn == nil {
		return constants.ErrConnectionClosed
	}
	err = c.Conn.WriteMessage(gorilla.BinaryMessage, data)
	if errors.Is(err, gorilla.ErrCloseSent) {
		c.markClosed(err)
	}

	return err
}

func (c *Connection) createResponseChannel(id string) (chan connection.RPCResponse[cbor.RawMessage], error) {
	c.responseChannelsLock.Lock()
	defer c.responseChannelsLock.Unlock()

	if _, ok := c.responseChannels[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}

	ch := make(chan connection.RPCResponse[cbor.RawMessage], 1)
	c.responseChannels[id] = ch

	return ch, nil
}

func (c *Connection) getResponseChannel(id string) (chan connection.RPCResponse[cbor.RawMessage], bool) {
	c.responseChannelsLock.RLock()
	defer c.responseChannelsLock.RUnlock()
	ch, ok := c.responseChannels[id]
	return ch, ok
}

func (c *Connection) removeResponseChannel(id string) {
	c.responseChannelsLock.Lock()
	defer c.responseChannelsLock.Unlock()
	delete(c.responseChannels, id)
}

// markClosed must be called with connLock held.
func (c *Connection) markClosed(err error) {
	if c.closed {
		return
	}
	c.closed = true
	c.connCloseError = err
	if c.connCloseCh != nil {
		close(c.connCloseCh)
	}
}

func (c *Connection) closeError() error {
	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.connCloseError == nil {
		return constants.ErrConnectionClosed
	}
	return fmt.Errorf("%w: %w", constants.ErrConnectionClosed, c.connCloseError)
}

func (c *Connection) readLoop(conn *gorilla.Conn, closeCh chan int) {
	for {
		select {
		case <-closeCh:
			return
		default:
		}

		// gorilla read errors are permanent, so any error ends the loop.
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure) {
				c.logger.Error("websocket closed unexpectedly", "error", err)
			}
			c.connLock.Lock()
			c.markClosed(err)
			c.connLock.Unlock()
			return
		}
		c.handleResponse(data)
	}
}

func (c *Connection) handleResponse(data []byte) {
	var rpcRes connection.RPCResponse[cbor.RawMessage]
	if err := c.Unmarshaler.Unmarshal(data, &rpcRes); err != nil {
		c.logger.Error("failed to decode response", "error", err)
		return
	}

	if rpcRes.ID == nil || rpcRes.ID == "" {
		c.logger.Error("response without id", "error", fmt.Sprint(rpcRes.Error))
		return
	}

	responseChan, ok := c.getResponseChannel(fmt.Sprintf("%v", rpcRes.ID))
	if !ok {
		c.logger.Error(fmt.Sprintf("unavailable ResponseChannel %+v", rpcRes.ID))
		return
	}
	responseChan <- rpcRes
}
