// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

// Role represents a user's role as reported by the remote API.
// The session store treats it as opaque; only the navigation chrome reads it.
type Role string

const (
	RoleDevelopmentLead Role = "jefe_desarrollo"
	RoleWorkforceLead   Role = "jefe_workforce"
	RoleDeveloper       Role = "desarrollador"
	RoleWorkforce       Role = "workforce"
)

// Label returns a human-readable name for the role.
func (r Role) Label() string {
	switch r {
	case RoleDevelopmentLead:
		return "Jefe de Desarrollo"
	case RoleWorkforceLead:
		return "Jefe de Workforce"
	case RoleDeveloper:
		return "Desarrollador"
	case RoleWorkforce:
		return "Workforce"
	default:
		return string(r)
	}
}

// Persisted storage keys. Both are written and cleared together.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Session is an immutable snapshot of one browser's authentication state.
// IsAuthenticated is true iff Token is non-nil.
type Session struct {
	User            *User
	Token           *string
	IsAuthenticated bool
	IsLoading       bool
	Error           *string
}

// TokenValue returns the bearer token or "" when absent.
func (s Session) TokenValue() string {
	if s.Token == nil {
		return ""
	}
	return *s.Token
}

// ErrorValue returns the last error message or "" when absent.
func (s Session) ErrorValue() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Result is returned by every fallible session operation.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Ok is the successful Result.
func Ok() Result { return Result{Success: true} }

// Fail returns a failed Result carrying msg.
func Fail(msg string) Result { return Result{Error: msg} }

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role,omitempty"`
}

// ProfileUpdate is the profile update request body.
type ProfileUpdate struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// PasswordChange is the change-password request body.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthPayload is returned by login and registration.
type AuthPayload struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
