package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/credentix/credentix/models"
)

// ErrGrantNotFound is returned when a code is absent, expired, or
// already consumed. The three cases are deliberately indistinguishable
// so the token endpoint cannot be used as an oracle.
var ErrGrantNotFound = errors.New("authorization grant not found")

// GrantTTL is the lifetime of an authorization code.
const GrantTTL = 5 * time.Minute

// GrantStore owns AuthorizationGrant records for their lifetime.
type GrantStore interface {
	// Issue generates a random code and persists the grant context
	// with the store's TTL.
	Issue(ctx context.Context, clientID, userID, redirectURI, scope string) (string, error)

	// Redeem atomically fetches and invalidates the grant for code.
	// Two concurrent calls for the same code yield exactly one grant
	// and one ErrGrantNotFound.
	Redeem(ctx context.Context, code string) (*models.Grant, error)
}

// NewCode returns a hex-encoded code with 32 bytes of entropy.
func NewCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// newGrant builds the grant context recorded behind a fresh code.
func newGrant(code, clientID, userID, redirectURI, scope string, ttl time.Duration) *models.Grant {
	if scope == "" {
		scope = models.DefaultScope
	}
	now := time.Now().UTC()
	return &models.Grant{
		Code:        code,
		ClientID:    clientID,
		UserID:      userID,
		RedirectURI: redirectURI,
		Scope:       scope,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}
