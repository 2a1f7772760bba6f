package connection

import (
	"github.com/ontoserver/collabclient/pkg/constants"
)

// RPCError is the error member of a response.
type RPCError struct {
	Code        int    `json:"code"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r RPCError) Error() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Message
}

// Is matches any *RPCError, and the sentinel errors named by the well-known codes.
func (r *RPCError) Is(target error) bool {
	if target == nil {
		return r == nil
	}

	if _, ok := target.(*RPCError); ok {
		return true
	}

	switch r.Code {
	case constants.CodeIDInUse:
		return target == constants.ErrIDInUse
	case constants.CodeNotFound:
		return target == constants.ErrNotFound
	case constants.CodeMethodMissing:
		return target == constants.ErrMethodNotAvailable
	}
	return false
}

type RPCRequest struct {
	ID     any    `json:"id"`
	Method string `json:"method,omitempty"`
	Params []any  `json:"params,omitempty"`
}

type RPCResponse[T any] struct {
	// ID echoes the request id.
	ID     any       `json:"id"`
	Error  *RPCError `json:"error,omitempty"`
	Result *T        `json:"result,omitempty"`
}

type RPCFunction string

const (
	CreateUser           RPCFunction = "createUser"
	DeleteUser           RPCFunction = "deleteUser"
	UpdateUser           RPCFunction = "updateUser"
	GetAllUsers          RPCFunction = "getAllUsers"
	CreateProject        RPCFunction = "createProject"
	DeleteProject        RPCFunction = "deleteProject"
	UpdateProject        RPCFunction = "updateProject"
	OpenProject          RPCFunction = "openProject"
	GetProjects          RPCFunction = "getProjects"
	GetAllProjects       RPCFunction = "getAllProjects"
	CreateRole           RPCFunction = "createRole"
	DeleteRole           RPCFunction = "deleteRole"
	UpdateRole           RPCFunction = "updateRole"
	GetRoles             RPCFunction = "getRoles"
	GetProjectRoles      RPCFunction = "getProjectRoles"
	GetAllRoles          RPCFunction = "getAllRoles"
	CreateOperation      RPCFunction = "createOperation"
	DeleteOperation      RPCFunction = "deleteOperation"
	UpdateOperation      RPCFunction = "updateOperation"
	GetOperations        RPCFunction = "getOperations"
	GetProjectOperations RPCFunction = "getProjectOperations"
	GetRoleOperations    RPCFunction = "getRoleOperations"
	GetAllOperations     RPCFunction = "getAllOperations"
	AssignRole           RPCFunction = "assignRole"
	RetractRole          RPCFunction = "retractRole"
	IsOperationAllowed   RPCFunction = "isOperationAllowed"
	Commit               RPCFunction = "commit"
	GetHost              RPCFunction = "getHost"
	SetHostAddress       RPCFunction = "setHostAddress"
	SetSecondaryPort     RPCFunction = "setSecondaryPort"
	GetRootDirectory     RPCFunction = "getRootDirectory"
	SetRootDirectory     RPCFunction = "setRootDirectory"
	GetServerProperties  RPCFunction = "getServerProperties"
	SetServerProperty    RPCFunction = "setServerProperty"
	UnsetServerProperty  RPCFunction = "unsetServerProperty"
)

func (f RPCFunction) String() string {
	return string(f)
}
