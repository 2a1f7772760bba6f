package collabclient

import (
	"context"
	"fmt"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/models"
)

// Users

func (s *Session) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	return call[models.User](ctx, s, connection.CreateUser, u)
}

func (s *Session) DeleteUser(ctx context.Context, id models.UserID) error {
	return exec(ctx, s, connection.DeleteUser, id)
}

func (s *Session) UpdateUser(ctx context.Context, id models.UserID, u models.User) error {
	return exec(ctx, s, connection.UpdateUser, id, u)
}

func (s *Session) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return call[[]models.User](ctx, s, connection.GetAllUsers)
}

// Projects

func (s *Session) DeleteProject(ctx context.Context, id models.ProjectID, purge bool) error {
	return exec(ctx, s, connection.DeleteProject, id, purge)
}

func (s *Session) UpdateProject(ctx context.Context, id models.ProjectID, p models.Project) error {
	return exec(ctx, s, connection.UpdateProject, id, p)
}

// OpenProject returns the project's document handle with its full history.
func (s *Session) OpenProject(ctx context.Context, id models.ProjectID) (models.ServerDocument, error) {
	doc, err := call[models.ServerDocument](ctx, s, connection.OpenProject, id)
	if err != nil {
		return models.ServerDocument{}, err
	}
	if doc.History == nil {
		return models.ServerDocument{}, &ClientRequestError{Message: fmt.Sprintf("project %s has no history", id)}
	}
	if err := doc.History.Verify(); err != nil {
		return models.ServerDocument{}, &ClientRequestError{Message: "received an inconsistent history", Err: err}
	}
	return doc, nil
}

// GetProjects lists the projects the session user can access.
func (s *Session) GetProjects(ctx context.Context) ([]models.Project, error) {
	return s.GetProjectsOf(ctx, s.userID)
}

func (s *Session) GetProjectsOf(ctx context.Context, user models.UserID) ([]models.Project, error) {
	return call[[]models.Project](ctx, s, connection.GetProjects, user)
}

func (s *Session) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	return call[[]models.Project](ctx, s, connection.GetAllProjects)
}

// Roles

func (s *Session) CreateRole(ctx context.Context, r models.Role) (models.Role, error) {
	return call[models.Role](ctx, s, connection.CreateRole, r)
}

func (s *Session) DeleteRole(ctx context.Context, id models.RoleID) error {
	return exec(ctx, s, connection.DeleteRole, id)
}

func (s *Session) UpdateRole(ctx context.Context, id models.RoleID, r models.Role) error {
	return exec(ctx, s, connection.UpdateRole, id, r)
}

// GetRoles lists the roles user holds on project.
func (s *Session) GetRoles(ctx context.Context, user models.UserID, project models.ProjectID) ([]models.Role, error) {
	return call[[]models.Role](ctx, s, connection.GetRoles, user, project)
}

// GetProjectRoles lists the roles user holds, per project.
func (s *Session) GetProjectRoles(ctx context.Context, user models.UserID) (map[models.ProjectID][]models.Role, error) {
	return call[map[models.ProjectID][]models.Role](ctx, s, connection.GetProjectRoles, user)
}

func (s *Session) GetAllRoles(ctx context.Context) ([]models.Role, error) {
	return call[[]models.Role](ctx, s, connection.GetAllRoles)
}

// GetActiveRoles lists the session user's roles on the active project.
// Every failure comes back as a *ClientRequestError.
func (s *Session) GetActiveRoles(ctx context.Context) ([]models.Role, error) {
	project, err := s.ActiveProject()
	if err != nil {
		return nil, &ClientRequestError{Message: "cannot list roles", Err: err}
	}
	res, err := s.GetRoles(ctx, s.userID, project)
	if err != nil {
		return nil, &ClientRequestError{Message: "cannot list roles", Err: err}
	}
	return res, nil
}

// Operations

func (s *Session) CreateOperation(ctx context.Context, op models.Operation) (models.Operation, error) {
	return call[models.Operation](ctx, s, connection.CreateOperation, op)
}

func (s *Session) DeleteOperation(ctx context.Context, id models.OperationID) error {
	return exec(ctx, s, connection.DeleteOperation, id)
}

func (s *Session) UpdateOperation(ctx context.Context, id models.OperationID, op models.Operation) error {
	return exec(ctx, s, connection.UpdateOperation, id, op)
}

// GetOperations lists the operations user may perform on project.
func (s *Session) GetOperations(ctx context.Context, user models.UserID, project models.ProjectID) ([]models.Operation, error) {
	return call[[]models.Operation](ctx, s, connection.GetOperations, user, project)
}

func (s *Session) GetProjectOperations(ctx context.Context, user models.UserID) (map[models.ProjectID][]models.Operation, error) {
	return call[map[models.ProjectID][]models.Operation](ctx, s, connection.GetProjectOperations, user)
}

func (s *Session) GetRoleOperations(ctx context.Context, role models.RoleID) ([]models.Operation, error) {
	return call[[]models.Operation](ctx, s, connection.GetRoleOperations, role)
}

func (s *Session) GetAllOperations(ctx context.Context) ([]models.Operation, error) {
	return call[[]models.Operation](ctx, s, connection.GetAllOperations)
}

// GetActiveOperations lists what the session user may do on the active project.
func (s *Session) GetActiveOperations(ctx context.Context) ([]models.Operation, error) {
	project, err := s.ActiveProject()
	if err != nil {
		return nil, &ClientRequestError{Message: "cannot list operations", Err: err}
	}
	res, err := s.GetOperations(ctx, s.userID, project)
	if err != nil {
		return nil, &ClientRequestError{Message: "cannot list operations", Err: err}
	}
	return res, nil
}

// Role assignment

func (s *Session) AssignRole(ctx context.Context, user models.UserID, project models.ProjectID, role models.RoleID) error {
	return exec(ctx, s, connection.AssignRole, user, project, role)
}

func (s *Session) RetractRole(ctx context.Context, user models.UserID, project models.ProjectID, role models.RoleID) error {
	return exec(ctx, s, connection.RetractRole, user, project, role)
}

// Server configuration

func (s *Session) GetHost(ctx context.Context) (models.Host, error) {
	return call[models.Host](ctx, s, connection.GetHost)
}

func (s *Session) SetHostAddress(ctx context.Context, uri string) error {
	return exec(ctx, s, connection.SetHostAddress, uri)
}

func (s *Session) SetSecondaryPort(ctx context.Context, port int) error {
	return exec(ctx, s, connection.SetSecondaryPort, port)
}

func (s *Session) GetRootDirectory(ctx context.Context) (string, error) {
	return call[string](ctx, s, connection.GetRootDirectory)
}

func (s *Session) SetRootDirectory(ctx context.Context, dir string) error {
	return exec(ctx, s, connection.SetRootDirectory, dir)
}

func (s *Session) GetServerProperties(ctx context.Context) (map[string]string, error) {
	props, err := call[map[string]string](ctx, s, connection.GetServerProperties)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = map[string]string{}
	}
	return props, nil
}

func (s *Session) SetServerProperty(ctx context.Context, key, value string) error {
	return exec(ctx, s, connection.SetServerProperty, key, value)
}

func (s *Session) UnsetServerProperty(ctx context.Context, key string) error {
	return exec(ctx, s, connection.UnsetServerProperty, key)
}
