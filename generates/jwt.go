package generates

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/keys"
	"github.com/credentix/credentix/models"
)

// Token lifetimes. Expiry comparisons use seconds-since-epoch with the
// verifying clock and no skew window.
const (
	AccessTokenExp  = 15 * time.Minute
	RefreshTokenExp = 7 * 24 * time.Hour
	IDTokenExp      = 15 * time.Minute
)

// AccessClaims are the claims embedded in an HS256 access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
	Tenant string `json:"tenant,omitempty"`
}

// RefreshClaims carry the subject only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// IDClaims are the OpenID Connect identity claims signed with RS256.
type IDClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Tenant        string `json:"tenant,omitempty"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Nonce         string `json:"nonce,omitempty"`
}

// NewJWTGenerate creates the token codec. Access and refresh tokens use
// distinct symmetric secrets so a refresh token can never verify as an
// access token; ID tokens are signed through the keys provider.
func NewJWTGenerate(issuer string, accessSecret, refreshSecret []byte, kp *keys.Provider) *JWTGenerate {
	return &JWTGenerate{
		Issuer:        issuer,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Keys:          kp,
	}
}

// JWTGenerate mints and verifies the access/refresh/ID token triple.
// It holds no mutable state and is safe for concurrent use.
type JWTGenerate struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	Keys          *keys.Provider
}

// AccessToken mints an HS256 access token for the user.
func (g *JWTGenerate) AccessToken(u *models.User) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExp)),
			ID:        uuid.NewString(),
		},
		Email:  u.Email,
		Name:   u.FullName,
		Role:   u.RoleName,
		Tenant: u.TenantName,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.AccessSecret)
}

// RefreshToken mints an HS256 refresh token carrying the subject only.
func (g *JWTGenerate) RefreshToken(u *models.User) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenExp)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.RefreshSecret)
}

// IDToken mints an RS256 ID token audience-bound to the client.
func (g *JWTGenerate) IDToken(u *models.User, clientID, nonce string) (string, error) {
	now := time.Now()
	claims := &IDClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(IDTokenExp)),
		},
		Email:         u.Email,
		Name:          u.FullName,
		Tenant:        u.TenantName,
		Role:          u.RoleName,
		EmailVerified: u.EmailVerified,
		Nonce:         nonce,
	}
	return g.Keys.Sign(claims)
}

// ParseAccessToken verifies the signature and expiry of an access token
// and returns its claims.
func (g *JWTGenerate) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	err := g.parseHS(tokenString, claims, g.AccessSecret)
	if err != nil {
		return nil, mapAccessError(err)
	}
	return claims, nil
}

// ParseRefreshToken verifies the signature and expiry of a refresh token
// and returns its claims.
func (g *JWTGenerate) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	err := g.parseHS(tokenString, claims, g.RefreshSecret)
	if err != nil {
		return nil, mapRefreshError(err)
	}
	return claims, nil
}

func (g *JWTGenerate) parseHS(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrMalformedToken
		}
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

func mapAccessError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.ErrExpiredAccessToken
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return errors.ErrMalformedToken
	default:
		return errors.ErrInvalidAccessToken
	}
}

func mapRefreshError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.ErrExpiredRefreshToken
	case stderrors.Is(err, jwt.ErrTokenMalformed):
		return errors.ErrMalformedToken
	default:
		return errors.ErrInvalidRefreshToken
	}
}
