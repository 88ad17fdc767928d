package server_test

import (
	"context"
	"net/http"
	"testing"
)

func TestLoginIssuesTokenPair(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "u1", "alice@example.com", "user")

	status, body := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body = %v", status, body)
	}
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("missing tokens: %v", body)
	}
	if body["id_token"] != nil {
		t.Fatal("login must not mint an ID token")
	}
	claims, err := e.codec.ParseAccessToken(access)
	if err != nil || claims.Subject != "u1" {
		t.Fatalf("issued access token: %v %v", claims, err)
	}

	stored, _ := e.users.GetByID(context.Background(), "u1")
	if stored.RefreshToken == nil || *stored.RefreshToken != refresh {
		t.Fatal("login must fill the refresh slot")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "u1", "alice@example.com", "user")

	statusUnknown, bodyUnknown := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct horse",
	})
	statusBadPass, bodyBadPass := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if statusUnknown != http.StatusUnauthorized || statusBadPass != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 for both", statusUnknown, statusBadPass)
	}
	// identical bodies: the response must not reveal which check failed
	if bodyUnknown["error"] != bodyBadPass["error"] || bodyUnknown["error_description"] != bodyBadPass["error_description"] {
		t.Fatalf("login failures leak which check failed: %v vs %v", bodyUnknown, bodyBadPass)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{"email": "a@b.c"})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestRefreshEndpointRotates(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "u1", "alice@example.com", "user")

	_, body := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	first := body["refresh_token"].(string)

	status, body := e.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": first})
	if status != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %v", status, body)
	}
	second := body["refresh_token"].(string)
	if second == first {
		t.Fatal("refresh must rotate the token")
	}

	// old token is dead after rotation
	status, body = e.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": first})
	if status != http.StatusBadRequest || body["error"] != "invalid_grant" {
		t.Fatalf("stale refresh = %d %v, want 400 invalid_grant", status, body)
	}
}

func TestLogoutClearsRefreshSlot(t *testing.T) {
	e := newTestEnv(t)
	u := e.seedUser(t, "u1", "alice@example.com", "user")

	_, body := e.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	refresh := body["refresh_token"].(string)
	access := e.accessTokenFor(t, u)

	status, _ := e.postJSON(t, "/api/v1/auth/logout", access, nil)
	if status != http.StatusOK {
		t.Fatalf("logout status = %d", status)
	}

	stored, _ := e.users.GetByID(context.Background(), "u1")
	if stored.RefreshToken != nil {
		t.Fatal("logout must clear the refresh slot")
	}

	// refresh after logout fails even though the token still verifies
	status, body = e.postJSON(t, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": refresh})
	if status != http.StatusBadRequest || body["error"] != "invalid_grant" {
		t.Fatalf("refresh after logout = %d %v, want 400 invalid_grant", status, body)
	}
}

func TestLogoutRequiresBearerToken(t *testing.T) {
	e := newTestEnv(t)
	status, _ := e.postJSON(t, "/api/v1/auth/logout", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
}
