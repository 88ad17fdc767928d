package server

import "time"

// Config configuration parameters
type Config struct {
	TokenType            string   // token type reported to clients
	AllowedResponseTypes []string // allowed authorization response types
	AllowedGrantTypes    []string // allowed token grant types
	Issuer               string   // issuer URL for tokens and discovery
	DefaultScope         string   // scope granted when none requested
	// DependencyTimeout bounds every store and cache call made while
	// serving a request.
	DependencyTimeout time.Duration
}

// NewConfig create to configuration instance
func NewConfig() *Config {
	return &Config{
		TokenType:            "Bearer",
		AllowedResponseTypes: []string{"code"},
		AllowedGrantTypes:    []string{"authorization_code", "refresh_token"},
		Issuer:               "http://localhost:8000", // overridden by deployment config
		DefaultScope:         "openid email profile",
		DependencyTimeout:    5 * time.Second,
	}
}

// CheckResponseType check allows response type
func (c *Config) CheckResponseType(rt string) bool {
	for _, art := range c.AllowedResponseTypes {
		if art == rt {
			return true
		}
	}
	return false
}

// CheckGrantType check allows grant type
func (c *Config) CheckGrantType(gt string) bool {
	for _, agt := range c.AllowedGrantTypes {
		if agt == gt {
			return true
		}
	}
	return false
}
