package models

// Role is the authorization level of an account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Status tells whether an account may log in at all.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// UserProfile is the client-side snapshot of an account, captured at
// login or renewal time. The remote verifier owns the canonical record;
// the client never mutates a profile locally.
//
// JSON tags follow the remote wire contract.
type UserProfile struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Role        Role   `json:"user_type"`
	Status      Status `json:"status"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}
