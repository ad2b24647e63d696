package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/phenrril/storefront/internal/usecase"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type Provider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// New devuelve nil si faltan credenciales; el login con Google queda deshabilitado.
func New(clientID, clientSecret, baseURL string) *Provider {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &Provider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		UserInfoURL: userInfoURL,
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Profile canjea el code y consulta el userinfo con el token obtenido.
func (p *Provider) Profile(ctx context.Context, code string) (usecase.GoogleProfile, error) {
	tok, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return usecase.GoogleProfile{}, fmt.Errorf("exchange oauth code: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return usecase.GoogleProfile{}, err
	}
	resp, err := p.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return usecase.GoogleProfile{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return usecase.GoogleProfile{}, fmt.Errorf("userinfo: status %d", resp.StatusCode)
	}
	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return usecase.GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return usecase.GoogleProfile{}, fmt.Errorf("userinfo: missing sub or email")
	}
	if !info.EmailVerified {
		return usecase.GoogleProfile{}, fmt.Errorf("userinfo: email %s not verified", info.Email)
	}
	return usecase.GoogleProfile{Sub: info.Sub, Email: info.Email, GivenName: info.GivenName, FamilyName: info.FamilyName}, nil
}
