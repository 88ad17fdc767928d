package models

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Client is a registered third-party application.
type Client struct {
	ID           string    `json:"client_id" db:"id"`
	Secret       string    `json:"-" db:"secret"`
	Name         string    `json:"name" db:"name"`
	RedirectURIs []string  `json:"redirect_uris" db:"redirect_uris"`
	UserID       string    `json:"created_by" db:"user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// GetID client id
func (c *Client) GetID() string {
	return c.ID
}

// GetUserID owning user id
func (c *Client) GetUserID() string {
	return c.UserID
}

// VerifySecret compares the presented secret against the stored one.
// Secrets created through the registration API are stored as bcrypt
// hashes; plaintext rows from older deployments are compared in
// constant time.
func (c *Client) VerifySecret(secret string) bool {
	if strings.HasPrefix(c.Secret, "$2a$") || strings.HasPrefix(c.Secret, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) == 1
}

// AllowsRedirectURI reports whether uri is a member of the registered
// redirect URI allow-list. Matching is exact; no prefix or wildcard
// rules apply.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// HashClientSecret returns the bcrypt hash used for stored client secrets.
func HashClientSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
