package generates_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/credentix/credentix/errors"
	"github.com/credentix/credentix/generates"
	"github.com/credentix/credentix/keys"
	"github.com/credentix/credentix/models"
)

func newTestCodec(t *testing.T) *generates.JWTGenerate {
	t.Helper()
	kp, err := keys.Generate("")
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return generates.NewJWTGenerate("http://issuer.test", []byte("access-secret"), []byte("refresh-secret"), kp)
}

func testUser() *models.User {
	return &models.User{
		ID:            "u-1",
		Email:         "alice@example.com",
		FullName:      "Alice Example",
		TenantName:    "Default Organization",
		RoleName:      "user",
		EmailVerified: true,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	g := newTestCodec(t)
	u := testUser()

	tok, err := g.AccessToken(u)
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	claims, err := g.ParseAccessToken(tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != u.ID {
		t.Fatalf("sub = %q, want %q", claims.Subject, u.ID)
	}
	if claims.Email != u.Email || claims.Name != u.FullName {
		t.Fatalf("identity claims mismatch: %+v", claims)
	}
	if claims.Role != "user" || claims.Tenant != "Default Organization" {
		t.Fatalf("role/tenant claims mismatch: %+v", claims)
	}
	if claims.Issuer != "http://issuer.test" {
		t.Fatalf("iss = %q", claims.Issuer)
	}
	exp := time.Until(claims.ExpiresAt.Time)
	if exp < 14*time.Minute || exp > 15*time.Minute {
		t.Fatalf("access token expiry %v, want ~15m", exp)
	}
	if claims.ID == "" {
		t.Fatal("missing jti")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	g := newTestCodec(t)
	u := testUser()

	tok, err := g.RefreshToken(u)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	claims, err := g.ParseRefreshToken(tok)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if claims.Subject != u.ID {
		t.Fatalf("sub = %q, want %q", claims.Subject, u.ID)
	}
	exp := time.Until(claims.ExpiresAt.Time)
	if exp < 7*24*time.Hour-time.Minute || exp > 7*24*time.Hour {
		t.Fatalf("refresh token expiry %v, want ~7d", exp)
	}
}

func TestTokensDoNotCrossVerify(t *testing.T) {
	g := newTestCodec(t)
	u := testUser()

	refresh, _ := g.RefreshToken(u)
	if _, err := g.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token verified as access token")
	}
	access, _ := g.AccessToken(u)
	if _, err := g.ParseRefreshToken(access); err == nil {
		t.Fatal("access token verified as refresh token")
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	g := newTestCodec(t)
	other := newTestCodec(t)
	other.AccessSecret = []byte("a different secret entirely")

	tok, _ := g.AccessToken(testUser())
	_, err := other.ParseAccessToken(tok)
	if err != errors.ErrInvalidAccessToken {
		t.Fatalf("err = %v, want ErrInvalidAccessToken", err)
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	g := newTestCodec(t)
	// mint a token that expired a minute ago
	now := time.Now()
	claims := &generates.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.Issuer,
			Subject:   "u-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-16 * time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.AccessSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := g.ParseAccessToken(tok); err != errors.ErrExpiredAccessToken {
		t.Fatalf("err = %v, want ErrExpiredAccessToken", err)
	}
}

func TestParseAccessTokenMalformed(t *testing.T) {
	g := newTestCodec(t)
	if _, err := g.ParseAccessToken("not.a.jwt"); err != errors.ErrMalformedToken {
		t.Fatalf("err = %v, want ErrMalformedToken", err)
	}
}

func TestIDTokenSignedRS256WithKid(t *testing.T) {
	kp, err := keys.Generate("credentix-key-1")
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	g := generates.NewJWTGenerate("http://issuer.test", []byte("a"), []byte("r"), kp)
	u := testUser()

	tok, err := g.IDToken(u, "client-1", "nonce-xyz")
	if err != nil {
		t.Fatalf("IDToken: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("not a compact JWT: %q", tok)
	}

	claims := &generates.IDClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(tk *jwt.Token) (interface{}, error) {
		if tk.Method != jwt.SigningMethodRS256 {
			t.Fatalf("alg = %v, want RS256", tk.Method.Alg())
		}
		return kp.Public(), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("verify id token: %v", err)
	}
	if parsed.Header["kid"] != "credentix-key-1" {
		t.Fatalf("kid = %v", parsed.Header["kid"])
	}
	if claims.Subject != u.ID {
		t.Fatalf("sub = %q", claims.Subject)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "client-1" {
		t.Fatalf("aud = %v", claims.Audience)
	}
	if claims.Nonce != "nonce-xyz" {
		t.Fatalf("nonce = %q", claims.Nonce)
	}
	if !claims.EmailVerified {
		t.Fatal("email_verified should carry through")
	}
}
