package model

import "time"

// Roles accepted in the users.role column. Self-registration always gets
// RoleUser; the other roles are assigned by an administrator.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User represents an application user record as stored in the `users`
// table. Credential fields never leave the server: the password hash and
// the reset ticket columns are excluded from JSON output.
//
// Fields:
//
//	ID                – primary key identifier of the user.
//	Name              – display name.
//	Email             – unique, lower-cased email address.
//	Photo             – optional avatar path.
//	Role              – one of user, guide, lead-guide, admin.
//	PasswordHash      – bcrypt hashed password.
//	PasswordChangedAt – when the password was last rotated (null if never).
//	ResetTokenHash    – SHA-256 hex digest of an outstanding reset ticket.
//	ResetExpiresAt    – expiry of the reset ticket.
//	Active            – soft-delete flag; deactivated users are invisible.
type User struct {
	ID                uint64     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	Photo             string     `db:"photo" json:"photo,omitempty"`
	Role              string     `db:"role" json:"role"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `db:"password_changed_at" json:"-"`
	ResetTokenHash    *string    `db:"reset_token_hash" json:"-"`
	ResetExpiresAt    *time.Time `db:"reset_expires_at" json:"-"`
	Active            bool       `db:"active" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidRole reports whether s is one of the accepted role names.
func ValidRole(s string) bool {
	switch s {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}
