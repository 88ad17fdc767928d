package models

import "time"

// DefaultScope is granted when an authorization request carries no
// explicit scope.
const DefaultScope = "openid email profile"

// Grant is the context behind an authorization code: proof that a
// specific user approved a specific client for a specific redirect URI
// and scope. Grants are redeemable at most once and only before
// ExpiresAt.
type Grant struct {
	Code        string    `json:"-" db:"code"`
	ClientID    string    `json:"client_id" db:"client_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	RedirectURI string    `json:"redirect_uri" db:"redirect_uri"`
	Scope       string    `json:"scope" db:"scope"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
}

// IsExpired reports whether the grant's absolute expiry has passed.
func (g *Grant) IsExpired() bool {
	return time.Now().After(g.ExpiresAt)
}
