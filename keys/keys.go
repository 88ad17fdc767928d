// Package keys holds the RSA key material used for ID token signatures
// and JWKS publication. The key pair is loaded once at process start
// and is read-only afterwards; there is no rotation.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKeyID is the fixed kid published in the JWKS document and
// stamped into every ID token header.
const DefaultKeyID = "credentix-key-1"

// Provider signs ID tokens with a single static RSA key.
type Provider struct {
	priv *rsa.PrivateKey
	kid  string
}

// Load reads a PEM-encoded RSA private key (PKCS#1 or PKCS#8) from
// path. Callers treat an error as fatal; a missing or malformed key is
// not a runtime-recoverable condition.
func Load(path, kid string) (*Provider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("signing key %s: no PEM block found", path)
	}
	var priv *rsa.PrivateKey
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		priv = k
	} else if k, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("signing key %s: not an RSA key", path)
		}
		priv = rk
	} else {
		return nil, fmt.Errorf("signing key %s: unsupported key format", path)
	}
	return New(priv, kid), nil
}

// New wraps an already-parsed private key. Used by Load and by tests.
func New(priv *rsa.PrivateKey, kid string) *Provider {
	if kid == "" {
		kid = DefaultKeyID
	}
	return &Provider{priv: priv, kid: kid}
}

// Generate creates an ephemeral key pair. Development only; production
// deployments provision the key file and use Load.
func Generate(kid string) (*Provider, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return New(priv, kid), nil
}

// KeyID returns the fixed kid.
func (p *Provider) KeyID() string { return p.kid }

// Public returns the verification key.
func (p *Provider) Public() *rsa.PublicKey {
	return p.priv.Public().(*rsa.PublicKey)
}

// Sign produces a compact RS256 JWT carrying the kid header.
func (p *Provider) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = p.kid
	return token.SignedString(p.priv)
}

// JWK returns the public key as a JSON Web Key suitable for the JWKS
// document.
func (p *Provider) JWK() map[string]interface{} {
	pub := p.Public()
	return map[string]interface{}{
		"kty": "RSA",
		"kid": p.kid,
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}
