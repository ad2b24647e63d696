package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

const stateCookie = "oauth_state"

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, u *domain.User, code int) {
	tok, exp, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setTokenCookie(w, r, sessCookie, tok, exp, http.SameSiteLaxMode)
	writeOK(w, code, map[string]any{"user": u, "token": tok, "expiresAt": exp})
}

func (s *Server) apiRegister(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.startSession(w, r, u, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.startSession(w, r, u, http.StatusOK)
}

func (s *Server) apiLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, r, sessCookie, http.SameSiteLaxMode)
	writeOK(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (s *Server) apiVerify(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": u, "authenticated": true})
}

func (s *Server) apiMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": u})
}

type profileRequest struct {
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
	Phone     *string         `json:"phone"`
	Address   *domain.Address `json:"address"`
}

func (s *Server) apiUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.auth.UpdateProfile(r.Context(), userFrom(r.Context()), domain.UserPatch{
		FirstName: req.FirstName, LastName: req.LastName, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeError(w, r, domain.Errorf(domain.ErrNotFound, "google sign-in is not configured"))
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: state, Path: "/", MaxAge: 300, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, s.google.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		writeError(w, r, domain.Errorf(domain.ErrNotFound, "google sign-in is not configured"))
		return
	}
	q := r.URL.Query()
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeError(w, r, domain.Errorf(domain.ErrInvalid, "invalid oauth state"))
		return
	}
	clearCookie(w, r, stateCookie, http.SameSiteLaxMode)

	prof, err := s.google.Profile(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("google profile")
		writeError(w, r, domain.Errorf(domain.ErrUnauthorized, "google sign-in failed"))
		return
	}
	u, err := s.auth.LoginGoogle(r.Context(), prof)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setTokenCookie(w, r, sessCookie, tok, exp, http.SameSiteLaxMode)
	http.Redirect(w, r, "/", http.StatusFound)
}

// --- Admin ---

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.auth.AdminLogin(req.Username, req.Password); err != nil {
		log.Warn().Str("ip", r.RemoteAddr).Msg("admin login failed")
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.tokens.IssueAdmin(req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setTokenCookie(w, r, adminCookie, tok, exp, http.SameSiteStrictMode)
	writeOK(w, http.StatusOK, map[string]any{"token": tok, "expiresAt": exp})
}

func (s *Server) adminLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, r, adminCookie, http.SameSiteStrictMode)
	writeOK(w, http.StatusOK, map[string]any{"message": "logged out"})
}

func (s *Server) adminVerify(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, map[string]any{"authenticated": true})
}
