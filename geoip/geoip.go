// Package geoip resolves client addresses to a country code for
// sign-in notifications. Lookups go through ip-api.com and every
// failure degrades to an empty result.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Client performs IP geolocation lookups.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a lookup client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type lookupResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
	Message     string `json:"message"`
}

// LookupCountry returns the ISO 3166-1 alpha-2 country code for ip, or
// "" when the lookup fails. Private and loopback addresses resolve via
// the server's public IP, which keeps local development useful.
func (c *Client) LookupCountry(ctx context.Context, ip string) string {
	ip = strings.TrimSpace(ip)

	url := "http://ip-api.com/json/?fields=status,countryCode,message"
	if ip != "" && !isPrivateIP(ip) {
		url = fmt.Sprintf("http://ip-api.com/json/%s?fields=status,countryCode,message", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ""
	}
	if result.Status != "success" {
		return ""
	}
	return result.CountryCode
}

func isPrivateIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// ClientIP extracts the originating client IP from a request, honoring
// X-Forwarded-For and X-Real-IP before falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
