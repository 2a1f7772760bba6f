package connection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/stretchr/testify/assert"
)

func TestRPCErrorMessage(t *testing.T) {
	assert.Equal(t, "short", RPCError{Message: "short"}.Error())
	assert.Equal(t, "long", RPCError{Message: "short", Description: "long"}.Error())
}

func TestRPCErrorIs(t *testing.T) {
	inUse := &RPCError{Code: constants.CodeIDInUse, Message: "project pizza exists"}
	wrapped := fmt.Errorf("createProject: %w", inUse)

	assert.True(t, errors.Is(wrapped, constants.ErrIDInUse))
	assert.False(t, errors.Is(wrapped, constants.ErrNotFound))
	assert.True(t, errors.Is(wrapped, &RPCError{}))

	var rpcErr *RPCError
	assert.True(t, errors.As(wrapped, &rpcErr))
	assert.Equal(t, constants.CodeIDInUse, rpcErr.Code)

	missing := &RPCError{Code: constants.CodeNotFound}
	assert.True(t, errors.Is(missing, constants.ErrNotFound))
}

func TestRequestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		assert.Len(t, id, 26)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
