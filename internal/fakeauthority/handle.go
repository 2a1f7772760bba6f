package fakeauthority

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

type handlerFunc func(caller models.User, p params) (any, *connection.RPCError)

// params decodes positional parameters after the token.
type params struct {
	raw []cbor.RawMessage
	a   *Authority
}

func (p params) decode(i int, dst any) *connection.RPCError {
	if i >= len(p.raw) {
		return invalidParams("missing parameter %d", i+1)
	}
	if err := p.a.unmarshaler.Unmarshal(p.raw[i], dst); err != nil {
		return invalidParams("parameter %d: %v", i+1, err)
	}
	return nil
}

// Outcome is what a transport front end must do with a request.
type Outcome struct {
	Response connection.RPCResponse[any]
	// Drop tells the front end to abort the connection without answering.
	Drop bool
}

// Handle runs one request. It is safe for concurrent use; requests are
// applied one at a time.
func (a *Authority) Handle(req *Request) Outcome {
	out := Outcome{Response: connection.RPCResponse[any]{ID: req.ID}}

	a.mu.Lock()
	a.calls[req.Method]++
	inj := a.nextInjection(req.Method)
	a.mu.Unlock()

	a.logger.Debug("fakeauthority request", "method", req.Method, "params", len(req.Params))

	if inj != nil {
		if inj.Delay > 0 {
			time.Sleep(inj.Delay)
		}
		if inj.Drop {
			out.Drop = true
			return out
		}
		if inj.Err != nil {
			out.Response.Error = inj.Err
			return out
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	handler, ok := a.handlers[req.Method]
	if !ok {
		out.Response.Error = rpcError(constants.CodeMethodMissing, "method %q not found", req.Method)
		return out
	}

	p := params{raw: req.Params, a: a}

	var token string
	if err := p.decode(0, &token); err != nil {
		out.Response.Error = authorizationError("missing auth token")
		return out
	}
	caller, rpcErr := a.verify(token)
	if rpcErr != nil {
		out.Response.Error = rpcErr
		return out
	}

	p.raw = p.raw[1:]
	result, rpcErr := handler(caller, p)
	if rpcErr != nil {
		a.logger.Debug("fakeauthority rejected request", "method", req.Method, "code", rpcErr.Code, "error", rpcErr.Message)
		out.Response.Error = rpcErr
		return out
	}
	if result != nil {
		out.Response.Result = &result
	}
	return out
}
