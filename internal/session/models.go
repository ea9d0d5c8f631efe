package session

import "time"

// User is a credential-store record. TenantID is nil exactly for
// super-admin accounts; PasswordHash is bcrypt and never leaves this
// package.
type User struct {
	ID           int64     `json:"id" db:"id"`
	TenantID     *int64    `json:"tenant_id,omitempty" db:"tenant_id"`
	SuperAdmin   bool      `json:"super_admin" db:"super_admin"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Session is the login/refresh result returned to clients.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
