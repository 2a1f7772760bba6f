package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
	"github.com/stretchr/testify/suite"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

// NewTestClient returns *http.Client with Transport replaced to avoid making real calls
func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

type HTTPTestSuite struct {
	suite.Suite
	codec models.Cbor
}

func TestHttpTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}

func (s *HTTPTestSuite) newEngine(fn RoundTripFunc) *Connection {
	conf := &connection.Config{
		BaseURL:     "http://authority.test",
		Marshaler:   s.codec,
		Unmarshaler: s.codec,
	}
	return New(conf).SetHTTPClient(NewTestClient(fn))
}

func (s *HTTPTestSuite) cborResponse(status int, v any) *http.Response {
	body, err := s.codec.Marshal(v)
	s.Require().NoError(err)
	header := make(http.Header)
	header.Set("Content-Type", "application/cbor")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     header,
	}
}

func (s *HTTPTestSuite) TestConnectProbesHealth() {
	engine := s.newEngine(func(req *http.Request) *http.Response {
		s.Equal("http://authority.test/health", req.URL.String())
		s.Equal(http.MethodGet, req.Method)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Header: make(http.Header)}
	})
	s.Require().NoError(engine.Connect(context.Background()))
}

func (s *HTTPTestSuite) TestSendRoundTrip() {
	engine := s.newEngine(func(req *http.Request) *http.Response {
		s.Equal("http://authority.test/rpc", req.URL.String())
		s.Equal("application/cbor", req.Header.Get("Content-Type"))

		var request struct {
			ID     string            `json:"id"`
			Method string            `json:"method"`
			Params []cbor.RawMessage `json:"params"`
		}
		data, err := io.ReadAll(req.Body)
		s.Require().NoError(err)
		s.Require().NoError(s.codec.Unmarshal(data, &request))
		s.Equal("getRootDirectory", request.Method)
		s.Len(request.Params, 1)

		return s.cborResponse(http.StatusOK, connection.RPCResponse[string]{
			ID:     request.ID,
			Result: ptr("/srv/projects"),
		})
	})

	dir, err := connection.Call[string](engine, context.Background(), connection.GetRootDirectory, "token")
	s.Require().NoError(err)
	s.Equal("/srv/projects", dir)
}

func (s *HTTPTestSuite) TestSendRejectsForeignResponseID() {
	engine := s.newEngine(func(req *http.Request) *http.Response {
		return s.cborResponse(http.StatusOK, connection.RPCResponse[string]{ID: "other", Result: ptr("x")})
	})

	_, err := engine.Send(context.Background(), "getRootDirectory", "token")
	s.ErrorIs(err, constants.ErrInvalidResponseID)
}

func (s *HTTPTestSuite) TestSendReturnsRPCError() {
	engine := s.newEngine(func(req *http.Request) *http.Response {
		return s.cborResponse(http.StatusOK, connection.RPCResponse[any]{
			Error: &connection.RPCError{Code: constants.CodeOutOfSync, Message: "base R1 is behind head R3"},
		})
	})

	_, err := engine.Send(context.Background(), "commit", "token")
	var rpcErr *connection.RPCError
	s.Require().True(errors.As(err, &rpcErr))
	s.Equal(constants.CodeOutOfSync, rpcErr.Code)
}

func (s *HTTPTestSuite) TestMakeRequestStatusErrors() {
	cases := map[string]struct {
		resp  func() *http.Response
		check func(err error)
	}{
		"cbor body": {
			resp: func() *http.Response {
				return s.cborResponse(http.StatusBadRequest, connection.RPCResponse[any]{
					Error: &connection.RPCError{Code: constants.CodeIDInUse, Message: "There was a problem"},
				})
			},
			check: func(err error) {
				s.ErrorIs(err, constants.ErrIDInUse)
			},
		},
		"json nested body": {
			resp: func() *http.Response {
				return jsonResponse(http.StatusBadGateway, `{"error":{"code":-32004,"message":"gone"}}`)
			},
			check: func(err error) {
				s.ErrorIs(err, constants.ErrNotFound)
				s.EqualError(err, "gone")
			},
		},
		"json flat body": {
			resp: func() *http.Response {
				return jsonResponse(http.StatusServiceUnavailable, `{"message":"upstream down"}`)
			},
			check: func(err error) {
				var rpcErr *connection.RPCError
				s.Require().True(errors.As(err, &rpcErr))
				s.Equal(http.StatusServiceUnavailable, rpcErr.Code)
			},
		},
		"plain body": {
			resp: func() *http.Response {
				return &http.Response{
					StatusCode: http.StatusInternalServerError,
					Body:       io.NopCloser(bytes.NewBufferString("boom\n")),
					Header:     make(http.Header),
				}
			},
			check: func(err error) {
				s.EqualError(err, "status 500: boom")
			},
		},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			engine := s.newEngine(func(req *http.Request) *http.Response { return tc.resp() })
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://authority.test/rpc", http.NoBody)
			_, err := engine.MakeRequest(req)
			s.Require().Error(err)
			tc.check(err)
		})
	}
}

func (s *HTTPTestSuite) TestSendWithoutBaseURL() {
	engine := s.newEngine(nil)
	engine.BaseURL = ""
	_, err := engine.Send(context.Background(), "getHost", "token")
	s.ErrorIs(err, constants.ErrNoBaseURL)
}

func jsonResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json; charset=utf-8")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func ptr[T any](v T) *T {
	return &v
}
