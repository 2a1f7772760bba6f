package fakeauthority

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lxzan/gws"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
)

const (
	contentTypeCBOR = "application/cbor"
	shutdownTimeout = 5 * time.Second
)

// Router serves the authority over HTTP and WebSocket on the same /rpc path.
func (a *Authority) Router() *mux.Router {
	router := mux.NewRouter()

	upgrader := gws.NewUpgrader(&socketHandler{authority: a}, &gws.ServerOption{})

	router.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r)
		if err != nil {
			a.logger.Error("websocket upgrade failed", "error", err)
			return
		}
		go socket.ReadLoop()
	}).Methods(http.MethodGet).Headers("Upgrade", "websocket")
	router.HandleFunc("/rpc", a.handleRPC).Methods(http.MethodPost)

	return router
}

func (a *Authority) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *Authority) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.respond(w, http.StatusBadRequest, connection.RPCResponse[any]{
			Error: rpcError(constants.CodeParseError, "read body: %v", err),
		})
		return
	}

	var req Request
	if err := a.unmarshaler.Unmarshal(body, &req); err != nil {
		a.respond(w, http.StatusBadRequest, connection.RPCResponse[any]{
			Error: rpcError(constants.CodeParseError, "Parse error"),
		})
		return
	}

	out := a.Handle(&req)
	if out.Drop {
		// net/http aborts the connection without a response.
		panic(http.ErrAbortHandler)
	}
	a.respond(w, http.StatusOK, out.Response)
}

func (a *Authority) respond(w http.ResponseWriter, status int, res connection.RPCResponse[any]) {
	data, err := a.marshaler.Marshal(res)
	if err != nil {
		a.logger.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeCBOR)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		a.logger.Debug("failed to write response", "error", err)
	}
}

// socketHandler implements gws.Event. gws delivers messages of one socket
// sequentially, which matches the one-exchange-at-a-time protocol.
type socketHandler struct {
	authority *Authority
}

func (h *socketHandler) OnOpen(socket *gws.Conn) {
	h.authority.logger.Debug("websocket opened", "remote", socket.RemoteAddr().String())
}

func (h *socketHandler) OnClose(socket *gws.Conn, err error) {
	h.authority.logger.Debug("websocket closed", "error", err)
}

func (h *socketHandler) OnPing(socket *gws.Conn, payload []byte) {
	if err := socket.WritePong(payload); err != nil {
		h.authority.logger.Error("failed to write pong", "error", err)
	}
}

func (h *socketHandler) OnPong(socket *gws.Conn, payload []byte) {
}

func (h *socketHandler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	a := h.authority
	var req Request
	if err := a.unmarshaler.Unmarshal(message.Bytes(), &req); err != nil {
		h.write(socket, connection.RPCResponse[any]{
			Error: rpcError(constants.CodeParseError, "Parse error"),
		})
		return
	}

	out := a.Handle(&req)
	if out.Drop {
		socket.NetConn().Close()
		return
	}
	h.write(socket, out.Response)
}

func (h *socketHandler) write(socket *gws.Conn, res connection.RPCResponse[any]) {
	data, err := h.authority.marshaler.Marshal(res)
	if err != nil {
		h.authority.logger.Error("failed to marshal response", "error", err)
		return
	}
	if err := socket.WriteMessage(gws.OpcodeBinary, data); err != nil {
		h.authority.logger.Error("failed to write response", "error", err)
	}
}

// Server is a running authority bound to a local address.
type Server struct {
	*Authority

	listener net.Listener
	server   *http.Server
}

// Start serves a on addr. Use "127.0.0.1:0" to bind to a random available port.
func (a *Authority) Start(addr string) (*Server, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Authority: a,
		listener:  listener,
		server: &http.Server{
			Handler:           a.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("fakeauthority server error", "error", err)
		}
	}()

	return s, nil
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// URL returns the base URL for scheme, "http" or "ws".
func (s *Server) URL(scheme string) string {
	return scheme + "://" + s.Address()
}

// Stop shuts the server down, waiting briefly for active requests.
// Hijacked WebSocket connections are closed by their peers.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Serve runs the authority on addr until ctx is cancelled.
func (a *Authority) Serve(ctx context.Context, addr string) error {
	s, err := a.Start(addr)
	if err != nil {
		return err
	}
	a.logger.Info("fakeauthority listening", "addr", s.Address())

	<-ctx.Done()
	return s.Stop()
}
