package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the lifecycle state of a user.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

// User is the partial user view the token engine works with. The core
// reads identity fields for claims and writes the single refresh-token
// slot; everything else belongs to the account-management surface.
type User struct {
	ID            string     `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	FullName      string     `json:"full_name" db:"full_name"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	TenantID      string     `json:"tenant_id" db:"tenant_id"`
	TenantName    string     `json:"tenant,omitempty" db:"-"`
	RoleID        string     `json:"role_id" db:"role_id"`
	RoleName      string     `json:"role,omitempty" db:"-"`
	RefreshToken  *string    `json:"-" db:"refresh_token"`
	EmailVerified bool       `json:"email_verified" db:"email_verified"`
	Status        UserStatus `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(b)
	return nil
}

// CheckPassword compares the presented password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Tenant is an isolated customer organization.
type Tenant struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Role names a set of permissions within a tenant.
type Role struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
