package fakeauthority

import (
	"fmt"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
)

func rpcError(code int, format string, args ...any) *connection.RPCError {
	return &connection.RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func authorizationError(format string, args ...any) *connection.RPCError {
	return rpcError(constants.CodeAuthorization, format, args...)
}

func notFound(format string, args ...any) *connection.RPCError {
	return rpcError(constants.CodeNotFound, format, args...)
}

func idInUse(format string, args ...any) *connection.RPCError {
	return rpcError(constants.CodeIDInUse, format, args...)
}

func invalidParams(format string, args ...any) *connection.RPCError {
	return rpcError(constants.CodeInvalidParams, format, args...)
}

func serviceFault(format string, args ...any) *connection.RPCError {
	return rpcError(constants.CodeServiceFault, format, args...)
}
