package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer      = "storefront"
	roleUser    = "user"
	roleAdmin   = "admin"
	sessCookie  = "sess"
	adminCookie = "admin_token"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens firma y valida los JWT de sesión (clientes) y de administración.
type Tokens struct {
	secret     []byte
	sessionTTL time.Duration
	adminTTL   time.Duration
}

func NewTokens(secret string, sessionTTL, adminTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), sessionTTL: sessionTTL, adminTTL: adminTTL}
}

func (t *Tokens) issue(subject, role string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	c := claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tok, exp, nil
}

func (t *Tokens) parse(raw, role string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if c.Role != role {
		return nil, errors.New("token role mismatch")
	}
	return &c, nil
}

func (t *Tokens) IssueSession(userID uuid.UUID) (string, time.Time, error) {
	return t.issue(userID.String(), roleUser, t.sessionTTL)
}

func (t *Tokens) ParseSession(raw string) (uuid.UUID, error) {
	c, err := t.parse(raw, roleUser)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(c.Subject)
}

func (t *Tokens) IssueAdmin(user string) (string, time.Time, error) {
	return t.issue(user, roleAdmin, t.adminTTL)
}

func (t *Tokens) ParseAdmin(raw string) (string, error) {
	c, err := t.parse(raw, roleAdmin)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// readToken busca primero el Bearer y después la cookie indicada.
func readToken(r *http.Request, cookie string) []string {
	var out []string
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if tok := strings.TrimSpace(auth[7:]); tok != "" {
			out = append(out, tok)
		}
	}
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		out = append(out, c.Value)
	}
	return out
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, name, value string, exp time.Time, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name: name, Value: value, Path: "/", Expires: exp, MaxAge: int(time.Until(exp).Seconds()),
		HttpOnly: true, Secure: isSecure(r), SameSite: sameSite,
	})
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: isSecure(r), SameSite: sameSite})
}
