package fakeauthority

import (
	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/constants"
	"github.com/ontoserver/collabclient/pkg/models"
)

func (a *Authority) routes() map[string]handlerFunc {
	m := map[connection.RPCFunction]handlerFunc{
		connection.CreateUser:           a.createUser,
		connection.DeleteUser:           a.deleteUser,
		connection.UpdateUser:           a.updateUser,
		connection.GetAllUsers:          a.getAllUsers,
		connection.CreateProject:        a.createProject,
		connection.DeleteProject:        a.deleteProject,
		connection.UpdateProject:        a.updateProject,
		connection.OpenProject:          a.openProject,
		connection.GetProjects:          a.getProjects,
		connection.GetAllProjects:       a.getAllProjects,
		connection.CreateRole:           a.createRole,
		connection.DeleteRole:           a.deleteRole,
		connection.UpdateRole:           a.updateRole,
		connection.GetRoles:             a.getRoles,
		connection.GetProjectRoles:      a.getProjectRoles,
		connection.GetAllRoles:          a.getAllRoles,
		connection.CreateOperation:      a.createOperation,
		connection.DeleteOperation:      a.deleteOperation,
		connection.UpdateOperation:      a.updateOperation,
		connection.GetOperations:        a.getOperations,
		connection.GetProjectOperations: a.getProjectOperations,
		connection.GetRoleOperations:    a.getRoleOperations,
		connection.GetAllOperations:     a.getAllOperations,
		connection.AssignRole:           a.assignRole,
		connection.RetractRole:          a.retractRole,
		connection.IsOperationAllowed:   a.isOperationAllowed,
		connection.Commit:               a.commit,
		connection.GetHost:              a.getHost,
		connection.SetHostAddress:       a.setHostAddress,
		connection.SetSecondaryPort:     a.setSecondaryPort,
		connection.GetRootDirectory:     a.getRootDirectory,
		connection.SetRootDirectory:     a.setRootDirectory,
		connection.GetServerProperties:  a.getServerProperties,
		connection.SetServerProperty:    a.setServerProperty,
		connection.UnsetServerProperty:  a.unsetServerProperty,
	}

	out := make(map[string]handlerFunc, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func (a *Authority) require(caller models.User, op models.OperationID) *connection.RPCError {
	if !a.allowedAnywhere(caller.ID, op) {
		return authorizationError("user %s is not allowed to perform %s", caller.ID, op)
	}
	return nil
}

func (a *Authority) requireOn(caller models.User, op models.OperationID, project models.ProjectID) *connection.RPCError {
	if !a.allowed(caller.ID, op, project) {
		return authorizationError("user %s is not allowed to perform %s on project %s", caller.ID, op, project)
	}
	return nil
}

// users

func (a *Authority) createUser(caller models.User, p params) (any, *connection.RPCError) {
	var u models.User
	if err := p.decode(0, &u); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpAddUser); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, invalidParams("user id is empty")
	}
	if _, ok := a.users[u.ID]; ok {
		return nil, idInUse("user id %s is already used", u.ID)
	}
	a.users[u.ID] = u
	return u, nil
}

func (a *Authority) deleteUser(caller models.User, p params) (any, *connection.RPCError) {
	var id models.UserID
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpRemoveUser); err != nil {
		return nil, err
	}
	if _, ok := a.users[id]; !ok {
		return nil, notFound("user %s not found", id)
	}
	delete(a.users, id)
	delete(a.admins, id)
	delete(a.assignments, id)
	return nil, nil
}

func (a *Authority) updateUser(caller models.User, p params) (any, *connection.RPCError) {
	var id models.UserID
	var u models.User
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := p.decode(1, &u); err != nil {
		return nil, err
	}
	if caller.ID != id {
		if err := a.require(caller, models.OpModifyUser); err != nil {
			return nil, err
		}
	}
	if _, ok := a.users[id]; !ok {
		return nil, notFound("user %s not found", id)
	}
	u.ID = id
	a.users[id] = u
	return nil, nil
}

func (a *Authority) getAllUsers(models.User, params) (any, *connection.RPCError) {
	return sortedValues(a.users), nil
}

// projects

func (a *Authority) document(id models.ProjectID, from models.DocumentRevision) (models.ServerDocument, *connection.RPCError) {
	h, ok := a.histories[id]
	if !ok {
		return models.ServerDocument{}, notFound("project %s not found", id)
	}
	sub, err := h.Since(from)
	if err != nil {
		return models.ServerDocument{}, serviceFault("%v", err)
	}
	return models.ServerDocument{Host: a.host, ProjectID: id, History: sub}, nil
}

func (a *Authority) createProject(caller models.User, p params) (any, *connection.RPCError) {
	var project models.Project
	if err := p.decode(0, &project); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpAddProject); err != nil {
		return nil, err
	}
	if project.ID == "" {
		return nil, invalidParams("project id is empty")
	}
	if _, ok := a.projects[project.ID]; ok {
		return nil, idInUse("project id %s is already used", project.ID)
	}
	if project.Owner == "" {
		project.Owner = caller.ID
	}
	a.projects[project.ID] = project
	a.histories[project.ID] = models.NewChangeHistory(models.RevisionBase)
	return a.document(project.ID, models.RevisionBase)
}

func (a *Authority) deleteProject(caller models.User, p params) (any, *connection.RPCError) {
	var id models.ProjectID
	var purge bool
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := p.decode(1, &purge); err != nil {
		return nil, err
	}
	if err := a.requireOn(caller, models.OpRemoveProject, id); err != nil {
		return nil, err
	}
	if _, ok := a.projects[id]; !ok {
		return nil, notFound("project %s not found", id)
	}
	delete(a.projects, id)
	if purge {
		delete(a.histories, id)
	}
	for _, byProject := range a.assignments {
		delete(byProject, id)
	}
	return nil, nil
}

func (a *Authority) updateProject(caller models.User, p params) (any, *connection.RPCError) {
	var id models.ProjectID
	var project models.Project
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := p.decode(1, &project); err != nil {
		return nil, err
	}
	if err := a.requireOn(caller, models.OpModifyProject, id); err != nil {
		return nil, err
	}
	if _, ok := a.projects[id]; !ok {
		return nil, notFound("project %s not found", id)
	}
	project.ID = id
	a.projects[id] = project
	return nil, nil
}

func (a *Authority) openProject(caller models.User, p params) (any, *connection.RPCError) {
	var id models.ProjectID
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := a.requireOn(caller, models.OpOpenProject, id); err != nil {
		return nil, err
	}
	if _, ok := a.projects[id]; !ok {
		return nil, notFound("project %s not found", id)
	}
	return a.document(id, models.RevisionBase)
}

func (a *Authority) getProjects(_ models.User, p params) (any, *connection.RPCError) {
	var user models.UserID
	if err := p.decode(0, &user); err != nil {
		return nil, err
	}
	out := []models.Project{}
	for _, project := range sortedValues(a.projects) {
		if _, assigned := a.assignments[user][project.ID]; assigned || project.Owner == user {
			out = append(out, project)
		}
	}
	return out, nil
}

func (a *Authority) getAllProjects(models.User, params) (any, *connection.RPCError) {
	return sortedValues(a.projects), nil
}

// roles

func (a *Authority) createRole(caller models.User, p params) (any, *connection.RPCError) {
	var r models.Role
	if err := p.decode(0, &r); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpAddRole); err != nil {
		return nil, err
	}
	if r.ID == "" {
		return nil, invalidParams("role id is empty")
	}
	if _, ok := a.roles[r.ID]; ok {
		return nil, idInUse("role id %s is already used", r.ID)
	}
	a.roles[r.ID] = r
	return r, nil
}

func (a *Authority) deleteRole(caller models.User, p params) (any, *connection.RPCError) {
	var id models.RoleID
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpRemoveRole); err != nil {
		return nil, err
	}
	if _, ok := a.roles[id]; !ok {
		return nil, notFound("role %s not found", id)
	}
	delete(a.roles, id)
	for _, byProject := range a.assignments {
		for _, roles := range byProject {
			delete(roles, id)
		}
	}
	return nil, nil
}

func (a *Authority) updateRole(caller models.User, p params) (any, *connection.RPCError) {
	var id models.RoleID
	var r models.Role
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := p.decode(1, &r); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyRole); err != nil {
		return nil, err
	}
	if _, ok := a.roles[id]; !ok {
		return nil, notFound("role %s not found", id)
	}
	r.ID = id
	a.roles[id] = r
	return nil, nil
}

func (a *Authority) rolesOf(user models.UserID, project models.ProjectID) []models.Role {
	out := []models.Role{}
	for _, r := range sortedValues(a.roles) {
		if _, ok := a.assignments[user][project][r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (a *Authority) getRoles(_ models.User, p params) (any, *connection.RPCError) {
	var user models.UserID
	var project models.ProjectID
	if err := p.decode(0, &user); err != nil {
		return nil, err
	}
	if err := p.decode(1, &project); err != nil {
		return nil, err
	}
	return a.rolesOf(user, project), nil
}

func (a *Authority) getProjectRoles(_ models.User, p params) (any, *connection.RPCError) {
	var user models.UserID
	if err := p.decode(0, &user); err != nil {
		return nil, err
	}
	out := map[models.ProjectID][]models.Role{}
	for project := range a.assignments[user] {
		out[project] = a.rolesOf(user, project)
	}
	return out, nil
}

func (a *Authority) getAllRoles(models.User, params) (any, *connection.RPCError) {
	return sortedValues(a.roles), nil
}

// operations

func (a *Authority) createOperation(caller models.User, p params) (any, *connection.RPCError) {
	var op models.Operation
	if err := p.decode(0, &op); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpAddOperation); err != nil {
		return nil, err
	}
	if op.ID == "" {
		return nil, invalidParams("operation id is empty")
	}
	if _, ok := a.operations[op.ID]; ok {
		return nil, idInUse("operation id %s is already used", op.ID)
	}
	a.operations[op.ID] = op
	return op, nil
}

func (a *Authority) deleteOperation(caller models.User, p params) (any, *connection.RPCError) {
	var id models.OperationID
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpRemoveOperation); err != nil {
		return nil, err
	}
	if _, ok := a.operations[id]; !ok {
		return nil, notFound("operation %s not found", id)
	}
	if _, builtin := models.LookupOperation(id); builtin {
		return nil, serviceFault("operation %s is part of the fixed catalog", id)
	}
	delete(a.operations, id)
	return nil, nil
}

func (a *Authority) updateOperation(caller models.User, p params) (any, *connection.RPCError) {
	var id models.OperationID
	var op models.Operation
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	if err := p.decode(1, &op); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyOperation); err != nil {
		return nil, err
	}
	if _, ok := a.operations[id]; !ok {
		return nil, notFound("operation %s not found", id)
	}
	op.ID = id
	a.operations[id] = op
	return nil, nil
}

func (a *Authority) operationsOf(roles []models.Role) []models.Operation {
	seen := map[models.OperationID]models.Operation{}
	for _, r := range roles {
		for _, id := range r.Operations {
			if op, ok := a.operations[id]; ok {
				seen[id] = op
			}
		}
	}
	return sortedValues(seen)
}

func (a *Authority) getOperations(_ models.User, p params) (any, *connection.RPCError) {
	var user models.UserID
	var project models.ProjectID
	if err := p.decode(0, &user); err != nil {
		return nil, err
	}
	if err := p.decode(1, &project); err != nil {
		return nil, err
	}
	return a.operationsOf(a.rolesOf(user, project)), nil
}

func (a *Authority) getProjectOperations(_ models.User, p params) (any, *connection.RPCError) {
	var user models.UserID
	if err := p.decode(0, &user); err != nil {
		return nil, err
	}
	out := map[models.ProjectID][]models.Operation{}
	for project := range a.assignments[user] {
		out[project] = a.operationsOf(a.rolesOf(user, project))
	}
	return out, nil
}

func (a *Authority) getRoleOperations(_ models.User, p params) (any, *connection.RPCError) {
	var id models.RoleID
	if err := p.decode(0, &id); err != nil {
		return nil, err
	}
	r, ok := a.roles[id]
	if !ok {
		return nil, notFound("role %s not found", id)
	}
	return a.operationsOf([]models.Role{r}), nil
}

func (a *Authority) getAllOperations(models.User, params) (any, *connection.RPCError) {
	return sortedValues(a.operations), nil
}

// role assignment

func (a *Authority) decodeAssignment(p params) (models.UserID, models.ProjectID, models.RoleID, *connection.RPCError) {
	var user models.UserID
	var project models.ProjectID
	var role models.RoleID
	if err := p.decode(0, &user); err != nil {
		return "", "", "", err
	}
	if err := p.decode(1, &project); err != nil {
		return "", "", "", err
	}
	if err := p.decode(2, &role); err != nil {
		return "", "", "", err
	}
	if _, ok := a.users[user]; !ok {
		return "", "", "", notFound("user %s not found", user)
	}
	if _, ok := a.projects[project]; !ok {
		return "", "", "", notFound("project %s not found", project)
	}
	if _, ok := a.roles[role]; !ok {
		return "", "", "", notFound("role %s not found", role)
	}
	return user, project, role, nil
}

func (a *Authority) assignRole(caller models.User, p params) (any, *connection.RPCError) {
	user, project, role, err := a.decodeAssignment(p)
	if err != nil {
		return nil, err
	}
	if err := a.requireOn(caller, models.OpAssignRole, project); err != nil {
		return nil, err
	}
	if a.assignments[user] == nil {
		a.assignments[user] = map[models.ProjectID]map[models.RoleID]struct{}{}
	}
	if a.assignments[user][project] == nil {
		a.assignments[user][project] = map[models.RoleID]struct{}{}
	}
	a.assignments[user][project][role] = struct{}{}
	return nil, nil
}

func (a *Authority) retractRole(caller models.User, p params) (any, *connection.RPCError) {
	user, project, role, err := a.decodeAssignment(p)
	if err != nil {
		return nil, err
	}
	if err := a.requireOn(caller, models.OpRetractRole, project); err != nil {
		return nil, err
	}
	delete(a.assignments[user][project], role)
	if len(a.assignments[user][project]) == 0 {
		delete(a.assignments[user], project)
	}
	return nil, nil
}

func (a *Authority) isOperationAllowed(_ models.User, p params) (any, *connection.RPCError) {
	var op models.OperationID
	var project models.ProjectID
	var user models.UserID
	if err := p.decode(0, &op); err != nil {
		return nil, err
	}
	if err := p.decode(1, &project); err != nil {
		return nil, err
	}
	if err := p.decode(2, &user); err != nil {
		return nil, err
	}
	if _, ok := a.operations[op]; !ok {
		return nil, notFound("operation %s not found", op)
	}
	return a.allowed(user, op, project), nil
}

// versioning

func (a *Authority) commit(caller models.User, p params) (any, *connection.RPCError) {
	var project models.ProjectID
	var bundle models.CommitBundle
	if err := p.decode(0, &project); err != nil {
		return nil, err
	}
	if err := p.decode(1, &bundle); err != nil {
		return nil, err
	}
	h, ok := a.histories[project]
	if _, exists := a.projects[project]; !ok || !exists {
		return nil, notFound("project %s not found", project)
	}
	if err := a.requireOn(caller, models.OpOpenProject, project); err != nil {
		return nil, err
	}
	for _, e := range bundle.Edits {
		if op, guarded := e.RequiredOperation(); guarded {
			if err := a.requireOn(caller, op, project); err != nil {
				return nil, err
			}
		}
	}
	if len(bundle.Edits) == 0 {
		return nil, invalidParams("commit carries no edits")
	}
	if bundle.Base != h.HeadRevision() {
		return nil, rpcError(constants.CodeOutOfSync, "commit base %v is not the head revision %v of project %s", bundle.Base, h.HeadRevision(), project)
	}

	h.Append(models.ChangeMetadata{
		Author:  caller.ID,
		Date:    models.NewDateTime(a.now()),
		Comment: bundle.Comment,
	}, bundle.Edits)

	sub, err := h.Since(bundle.Base)
	if err != nil {
		return nil, serviceFault("%v", err)
	}
	return sub, nil
}

// server configuration

func (a *Authority) getHost(models.User, params) (any, *connection.RPCError) {
	return a.host, nil
}

func (a *Authority) setHostAddress(caller models.User, p params) (any, *connection.RPCError) {
	var uri string
	if err := p.decode(0, &uri); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyServerSettings); err != nil {
		return nil, err
	}
	a.host.URI = uri
	return nil, nil
}

func (a *Authority) setSecondaryPort(caller models.User, p params) (any, *connection.RPCError) {
	var port int
	if err := p.decode(0, &port); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyServerSettings); err != nil {
		return nil, err
	}
	if port < 0 || port > 65535 {
		return nil, invalidParams("port %d out of range", port)
	}
	a.host.SecondaryPort = port
	return nil, nil
}

func (a *Authority) getRootDirectory(models.User, params) (any, *connection.RPCError) {
	return a.rootDir, nil
}

func (a *Authority) setRootDirectory(caller models.User, p params) (any, *connection.RPCError) {
	var dir string
	if err := p.decode(0, &dir); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyServerSettings); err != nil {
		return nil, err
	}
	a.rootDir = dir
	return nil, nil
}

func (a *Authority) getServerProperties(models.User, params) (any, *connection.RPCError) {
	out := make(map[string]string, len(a.properties))
	for k, v := range a.properties {
		out[k] = v
	}
	return out, nil
}

func (a *Authority) setServerProperty(caller models.User, p params) (any, *connection.RPCError) {
	var key, value string
	if err := p.decode(0, &key); err != nil {
		return nil, err
	}
	if err := p.decode(1, &value); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyServerSettings); err != nil {
		return nil, err
	}
	a.properties[key] = value
	return nil, nil
}

func (a *Authority) unsetServerProperty(caller models.User, p params) (any, *connection.RPCError) {
	var key string
	if err := p.decode(0, &key); err != nil {
		return nil, err
	}
	if err := a.require(caller, models.OpModifyServerSettings); err != nil {
		return nil, err
	}
	delete(a.properties, key)
	return nil, nil
}
