package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/credentix/credentix/generates"
	"github.com/credentix/credentix/keys"
	"github.com/credentix/credentix/models"
	"github.com/credentix/credentix/server"
	"github.com/credentix/credentix/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires a full server against in-memory stores.
type testEnv struct {
	srv     *server.Server
	ts      *httptest.Server
	clients *store.MemClientStore
	users   *store.MemUserStore
	grants  *store.BuntGrantStore
	codec   *generates.JWTGenerate
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kp, err := keys.Generate("")
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	codec := generates.NewJWTGenerate("http://issuer.test", []byte("test-access-secret"), []byte("test-refresh-secret"), kp)

	clients := store.NewClientStore()
	users := store.NewMemUserStore()
	grants, err := store.NewBuntGrantStore(":memory:")
	if err != nil {
		t.Fatalf("grant store: %v", err)
	}

	cfg := server.NewConfig()
	cfg.Issuer = "http://issuer.test"

	srv := server.NewServer(cfg, clients, users, grants, codec, kp)
	ts := httptest.NewServer(server.NewGinEngine(srv))
	t.Cleanup(func() {
		ts.Close()
		grants.Close()
	})

	return &testEnv{srv: srv, ts: ts, clients: clients, users: users, grants: grants, codec: codec}
}

// seedUser registers an active user with the given role and password
// "correct horse".
func (e *testEnv) seedUser(t *testing.T, id, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:            id,
		Email:         email,
		FullName:      "Test User",
		TenantName:    "Default Organization",
		RoleName:      role,
		EmailVerified: true,
		Status:        models.UserActive,
	}
	if err := u.SetPassword("correct horse"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	e.users.Set(u)
	return u
}

// seedClient registers a confidential client. The stored secret is the
// plaintext value; the bcrypt path is covered in models.
func (e *testEnv) seedClient(t *testing.T, id, secret string, redirectURIs ...string) *models.Client {
	t.Helper()
	c := &models.Client{
		ID:           id,
		Secret:       secret,
		Name:         "Test App",
		RedirectURIs: redirectURIs,
	}
	if err := e.clients.Upsert(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

// accessTokenFor mints a valid bearer token for the user.
func (e *testEnv) accessTokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.codec.AccessToken(u)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return tok
}

// noRedirect returns a client that surfaces 302s instead of following.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// authorize performs GET /oauth2/authorize with a bearer token and
// returns the response.
func (e *testEnv) authorize(t *testing.T, token string, params url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/oauth2/authorize?"+params.Encode(), nil)
	if err != nil {
		t.Fatalf("build authorize request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := noRedirect().Do(req)
	if err != nil {
		t.Fatalf("authorize request: %v", err)
	}
	return resp
}

// token POSTs the form to /oauth2/token and decodes the JSON body.
func (e *testEnv) token(t *testing.T, form url.Values) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(e.ts.URL+"/oauth2/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("token request: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return resp.StatusCode, body
}

// postJSON POSTs a JSON body with optional bearer token.
func (e *testEnv) postJSON(t *testing.T, path, token string, payload any) (int, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+path, bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// getJSON GETs a path with optional bearer token.
func (e *testEnv) getJSON(t *testing.T, path, token string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}
