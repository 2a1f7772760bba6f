package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/internal/codec"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/logger"
)

// Connection talks to the authority with one HTTP POST per exchange.
type Connection struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	httpClient *http.Client
	logger     logger.Logger
}

var _ connection.Connection = (*Connection)(nil)

func New(p *connection.Config) *Connection {
	con := Connection{
		Marshaler:   p.Marshaler,
		Unmarshaler: p.Unmarshaler,
		BaseURL:     p.BaseURL,
		logger:      p.Logger,
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	con.httpClient = &http.Client{
		Timeout: timeout,
	}
	if con.logger == nil {
		con.logger = logger.Discard()
	}

	return &con
}

// Connect probes the health endpoint.
func (c *Connection) Connect(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}
	_, err = c.MakeRequest(httpReq)
	return err
}

func (c *Connection) Close(ctx context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Connection) SetHTTPClient(client *http.Client) *Connection {
	c.httpClient = client
	return c
}

func (c *Connection) GetUnmarshaler() codec.Unmarshaler {
	return c.Unmarshaler
}

func (c *Connection) Send(ctx context.Context, method string, params ...any) (*connection.RPCResponse[cbor.RawMessage], error) {
	if c.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	request := &connection.RPCRequest{
		ID:     connection.NewRequestID(),
		Method: method,
		Params: params,
	}
	reqBody, err := c.Marshaler.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/rpc", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/cbor")
	req.Header.Set("Content-Type", "application/cbor")

	respData, err := c.MakeRequest(req)
	if err != nil {
		return nil, err
	}

	var res connection.RPCResponse[cbor.RawMessage]
	if err := c.Unmarshaler.Unmarshal(respData, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}
	if res.ID != nil && fmt.Sprint(res.ID) != request.ID {
		return nil, fmt.Errorf("%w: sent %s, got %v", constants.ErrInvalidResponseID, request.ID, res.ID)
	}
	if res.Error != nil {
		return nil, res.Error
	}

	return &res, nil
}

// MakeRequest returns the body of a 2xx response. Other statuses are
// decoded into an *RPCError when the body allows it.
func (c *Connection) MakeRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}

	contentType := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	switch contentType {
	case "application/cbor":
		var errorResponse connection.RPCResponse[any]
		if err := c.Unmarshaler.Unmarshal(respBytes, &errorResponse); err != nil {
			return nil, fmt.Errorf("%w: status %d: %w", constants.ErrInvalidResponse, resp.StatusCode, err)
		}
		if errorResponse.Error == nil {
			return nil, fmt.Errorf("%w: status %d without error body", constants.ErrInvalidResponse, resp.StatusCode)
		}
		return nil, errorResponse.Error
	case "application/json":
		return nil, decodeJSONError(resp.StatusCode, respBytes)
	default:
		c.logger.Debug("unexpected response from authority", "status", resp.StatusCode, "content_type", contentType)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}
}

// decodeJSONError reads error bodies produced by proxies sitting in front of
// the authority. Both {"error":{...}} and flat {"code":..,"message":..} shapes occur.
func decodeJSONError(status int, body []byte) error {
	keys := []string{"error"}
	if _, _, _, err := jsonparser.Get(body, "error"); err != nil {
		keys = nil
	}

	rpcErr := &connection.RPCError{Code: status}
	if code, err := jsonparser.GetInt(body, append(keys, "code")...); err == nil {
		rpcErr.Code = int(code)
	}
	if msg, err := jsonparser.GetString(body, append(keys, "message")...); err == nil {
		rpcErr.Message = msg
	}
	if desc, err := jsonparser.GetString(body, append(keys, "description")...); err == nil {
		rpcErr.Description = desc
	}
	if rpcErr.Message == "" && rpcErr.Description == "" {
		return errors.New(http.StatusText(status))
	}
	return rpcErr
}
