package models

type UserRole string
type SessionStatus string

const (
	UserRolePassenger UserRole = "passenger"
	UserRoleDriver    UserRole = "driver"

	SessionStatusInitializing SessionStatus = "initializing"
	SessionStatusReady        SessionStatus = "ready"
)

// User is the identity of the signed-in principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session is the in-memory authentication state. User and Role are set
// together or not at all; Status flips to ready exactly once, after the
// persisted state has been read at startup.
type Session struct {
	User   *User         `json:"user"`
	Role   UserRole      `json:"role,omitempty"`
	Status SessionStatus `json:"status"`
}

// Authenticated reports whether a principal is signed in.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role UserRole) bool {
	return role == UserRolePassenger || role == UserRoleDriver
}
