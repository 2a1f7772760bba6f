package collabclient

import (
	"context"

	"github.com/ontoserver/collabclient/pkg/connection"
	"github.com/ontoserver/collabclient/pkg/models"
)

// PermissionResult is the outcome of an authorization query. Err is set when
// the authority could not give an answer; Allowed is then false.
type PermissionResult struct {
	Allowed bool
	Err     error
}

// IsOperationAllowed asks the authority whether user may perform op on project.
func (s *Session) IsOperationAllowed(ctx context.Context, op models.OperationID, project models.ProjectID, user models.UserID) (bool, error) {
	return call[bool](ctx, s, connection.IsOperationAllowed, op, project, user)
}

// CheckPermission asks whether the session user may perform op on the active
// project. Decisions are never cached since roles change between calls.
func (s *Session) CheckPermission(ctx context.Context, op models.OperationID) PermissionResult {
	project, err := s.ActiveProject()
	if err != nil {
		return PermissionResult{Err: err}
	}
	allowed, err := s.IsOperationAllowed(ctx, op, project, s.userID)
	if err != nil {
		return PermissionResult{Err: err}
	}
	return PermissionResult{Allowed: allowed}
}

// IsAllowed is CheckPermission for UI gating: any failure means false.
func (s *Session) IsAllowed(ctx context.Context, op models.OperationID) bool {
	res := s.CheckPermission(ctx, op)
	if res.Err != nil {
		s.logger.Debug("permission check failed, denying", "operation", op, "error", res.Err)
		return false
	}
	return res.Allowed
}

func (s *Session) CanPerformOperation(ctx context.Context, op models.OperationID) bool {
	return s.IsAllowed(ctx, op)
}

func (s *Session) CanAddAxiom(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddAxiom)
}

func (s *Session) CanRemoveAxiom(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveAxiom)
}

func (s *Session) CanAddAnnotation(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddOntologyAnnotation)
}

func (s *Session) CanRemoveAnnotation(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveOntologyAnnotation)
}

func (s *Session) CanAddImport(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddImport)
}

func (s *Session) CanRemoveImport(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveImport)
}

func (s *Session) CanModifyOntologyID(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyOntologyIRI)
}

func (s *Session) CanCreateUser(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddUser)
}

func (s *Session) CanDeleteUser(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveUser)
}

func (s *Session) CanUpdateUser(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyUser)
}

func (s *Session) CanCreateProject(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddProject)
}

func (s *Session) CanDeleteProject(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveProject)
}

func (s *Session) CanUpdateProject(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyProject)
}

func (s *Session) CanOpenProject(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpOpenProject)
}

func (s *Session) CanCreateRole(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddRole)
}

func (s *Session) CanDeleteRole(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveRole)
}

func (s *Session) CanUpdateRole(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyRole)
}

func (s *Session) CanCreateOperation(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAddOperation)
}

func (s *Session) CanDeleteOperation(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRemoveOperation)
}

func (s *Session) CanUpdateOperation(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyOperation)
}

func (s *Session) CanAssignRole(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpAssignRole)
}

func (s *Session) CanRetractRole(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpRetractRole)
}

func (s *Session) CanStopServer(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpStopServer)
}

func (s *Session) CanUpdateServerConfig(ctx context.Context) bool {
	return s.IsAllowed(ctx, models.OpModifyServerSettings)
}
