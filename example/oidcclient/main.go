package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

var (
	authBaseURL   = env("OIDC_AUTH_BASE_URL", "http://localhost:8000")
	clientID      = env("OIDC_CLIENT_ID", "demo-client")
	clientSecret  = env("OIDC_CLIENT_SECRET", "password")
	redirectURL   = env("OIDC_REDIRECT_URL", "http://localhost:9094/oauth2/callback")
	stateExpected = env("OIDC_STATE", "xyz")
)

var (
	conf      *oauth2.Config
	lastToken *oauth2.Token
	idToken   string
	lastError string
)

func main() {
	conf = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authBaseURL + "/oauth2/authorize",
			TokenURL: authBaseURL + "/oauth2/token",
		},
	}

	http.HandleFunc("/", handleIndex)
	http.HandleFunc("/authorize", handleAuthorize)
	http.HandleFunc("/oauth2/callback", handleCallback)
	http.HandleFunc("/userinfo", handleUserInfo)

	port := os.Getenv("OIDC_CLIENT_PORT")
	if port == "" {
		port = "9094"
	}
	log.Printf("OIDC example client running at http://localhost:%s", port)
	log.Printf("Config: AUTH_BASE=%s CLIENT_ID=%s REDIRECT_URL=%s", authBaseURL, clientID, redirectURL)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	warn := ""
	if lastToken == nil {
		warn = `<div style="color:#b45309;background:#fff7ed;border:1px solid #fdba74;padding:8px;margin-bottom:8px;">No access token yet. Log in at the authorization server first (POST /api/v1/auth/login establishes the session), then click "Authorize". Ensure the server has this redirect URL registered: <code>` + redirectURL + `</code>.</div>`
	}
	if lastError != "" {
		warn += `<div style="color:#991b1b;background:#fee2e2;border:1px solid #fca5a5;padding:8px;margin-bottom:8px;">` + lastError + `</div>`
	}
	access, refresh := "", ""
	if lastToken != nil {
		access = lastToken.AccessToken
		refresh = lastToken.RefreshToken
	}
	fmt.Fprintf(w, `<h1>OIDC Example Client</h1>
	%s
	<ul>
		<li><a href="/authorize">Start OIDC Authorization Code flow</a></li>
		<li><a href="/userinfo">Call UserInfo (requires access token)</a></li>
	</ul>
	<pre>access_token=%s
refresh_token=%s
id_token=%s</pre>`, warn, access, refresh, idToken)
}

func handleAuthorize(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, conf.AuthCodeURL(stateExpected), http.StatusFound)
}

func handleCallback(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	if r.Form.Get("state") != stateExpected {
		lastError = "invalid state returned from authorization server"
		http.Error(w, "invalid state", 400)
		return
	}
	code := r.Form.Get("code")
	if code == "" {
		lastError = "authorization server did not return code"
		http.Error(w, "missing code", 400)
		return
	}
	tok, err := conf.Exchange(context.Background(), code)
	if err != nil {
		lastError = "token exchange failed: " + err.Error()
		http.Error(w, lastError, 500)
		return
	}
	lastToken = tok
	idToken, _ = tok.Extra("id_token").(string)
	lastError = ""
	respJSON(w, map[string]any{
		"access_token":  tok.AccessToken,
		"refresh_token": tok.RefreshToken,
		"id_token":      idToken,
		"token_type":    tok.TokenType,
		"expiry":        tok.Expiry,
	})
}

func handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if lastToken == nil {
		http.Error(w, "missing access token; run /authorize first", 400)
		return
	}
	client := conf.Client(context.Background(), lastToken)
	resp, err := client.Get(authBaseURL + "/oauth2/userinfo")
	if err != nil {
		lastError = "userinfo request failed: " + err.Error()
		http.Error(w, err.Error(), 500)
		return
	}
	defer resp.Body.Close()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func respJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
