package models

// AuthToken is an opaque credential bound to one authenticated user.
type AuthToken string

type (
	UserID      string
	ProjectID   string
	RoleID      string
	OperationID string
)

type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserInfo is the cached projection of the session user.
type UserInfo struct {
	ID    string
	Name  string
	Email string
}

type ProjectOptions map[string]string

type Project struct {
	ID          ProjectID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       UserID         `json:"owner"`
	Options     ProjectOptions `json:"options,omitempty"`
}

type Role struct {
	ID          RoleID        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Operations  []OperationID `json:"operations"`
}

type OperationType string

const (
	OperationRead    OperationType = "read"
	OperationWrite   OperationType = "write"
	OperationExecute OperationType = "execute"
)

type Operation struct {
	ID          OperationID   `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Type        OperationType `json:"type"`
}

type Host struct {
	URI           string `json:"uri"`
	SecondaryPort int    `json:"secondary_port,omitempty"`
}

// ServerDocument is the handle returned when a project is created or opened.
type ServerDocument struct {
	Host      Host           `json:"host"`
	ProjectID ProjectID      `json:"project"`
	History   *ChangeHistory `json:"history"`
}
