package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/phenrril/storefront/internal/adapters/oauth/google"
)

func fakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub": "g-42", "email": "eva@example.cz", "email_verified": verified,
			"given_name": "Eva", "family_name": "Dvořáková",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srv *httptest.Server) *google.Provider {
	p := google.New("client", "secret", "http://localhost:8080")
	p.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.UserInfoURL = srv.URL + "/userinfo"
	return p
}

func TestNewDisabledWithoutCredentials(t *testing.T) {
	require.Nil(t, google.New("", "secret", "http://x"))
	require.Nil(t, google.New("client", "", "http://x"))
}

func TestAuthCodeURL(t *testing.T) {
	p := google.New("client", "secret", "https://shop.example.cz")
	u := p.AuthCodeURL("state-1")
	require.True(t, strings.HasPrefix(u, "https://accounts.google.com/"))
	require.Contains(t, u, "state=state-1")
	require.Contains(t, u, "redirect_uri=https%3A%2F%2Fshop.example.cz%2Fapi%2Fauth%2Fgoogle%2Fcallback")
}

func TestProfile(t *testing.T) {
	p := newProvider(fakeGoogle(t, true))
	prof, err := p.Profile(context.Background(), "the-code")
	require.NoError(t, err)
	require.Equal(t, "g-42", prof.Sub)
	require.Equal(t, "eva@example.cz", prof.Email)
	require.Equal(t, "Eva", prof.GivenName)
	require.Equal(t, "Dvořáková", prof.FamilyName)
}

func TestProfileRejectsUnverifiedEmail(t *testing.T) {
	p := newProvider(fakeGoogle(t, false))
	_, err := p.Profile(context.Background(), "the-code")
	require.Error(t, err)
}
