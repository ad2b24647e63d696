package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/phenrril/storefront/internal/domain"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // límite de bcrypt
)

type RegisterRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Phone     string         `json:"phone"`
	Address   domain.Address `json:"address"`
}

// GoogleProfile son los datos mínimos que devuelve el userinfo de Google.
type GoogleProfile struct {
	Sub        string
	Email      string
	GivenName  string
	FamilyName string
}

type AuthUC struct {
	Users     domain.UserRepo
	AdminUser string
	AdminPass string
}

func hashPassword(pw string) (string, error) {
	if len(pw) < minPasswordLen {
		return "", domain.Errorf(domain.ErrInvalid, "password must be at least %d characters", minPasswordLen)
	}
	if len([]byte(pw)) > maxPasswordBytes {
		return "", domain.Errorf(domain.ErrInvalid, "password must be at most %d bytes", maxPasswordBytes)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (uc *AuthUC) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "email and password are required")
	}
	if !domain.ValidEmail(email) {
		return nil, domain.Errorf(domain.ErrInvalid, "invalid email")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      req.Address,
	}
	if err := uc.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *AuthUC) Login(ctx context.Context, email, password string) (*domain.User, error) {
	invalid := domain.Errorf(domain.ErrUnauthorized, "invalid email or password")
	u, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalid) {
			return nil, invalid
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return u, nil
}

// LoginGoogle busca al usuario por sub o email; si no existe lo crea.
func (uc *AuthUC) LoginGoogle(ctx context.Context, p GoogleProfile) (*domain.User, error) {
	if p.Sub == "" || p.Email == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "incomplete google profile")
	}
	if u, err := uc.Users.FindByGoogleSub(ctx, p.Sub); err == nil {
		return u, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	u, err := uc.Users.FindByEmail(ctx, p.Email)
	switch {
	case err == nil:
		if err := uc.Users.LinkGoogle(ctx, u.ID, p.Sub); err != nil {
			return nil, err
		}
		return u, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	sub := p.Sub
	u = &domain.User{Email: p.Email, FirstName: p.GivenName, LastName: p.FamilyName, GoogleSub: &sub}
	if err := uc.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("user created from google sign-in")
	return u, nil
}

func (uc *AuthUC) Me(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := uc.Users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Errorf(domain.ErrUnauthorized, "session user no longer exists")
	}
	return u, err
}

func (uc *AuthUC) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	return uc.Users.Update(ctx, id, patch)
}

// AdminLogin compara en tiempo constante contra las credenciales configuradas.
func (uc *AuthUC) AdminLogin(user, pass string) error {
	okUser := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(user)), []byte(uc.AdminUser)) == 1
	okPass := subtle.ConstantTimeCompare([]byte(pass), []byte(uc.AdminPass)) == 1
	if !okUser || !okPass || uc.AdminUser == "" {
		return domain.Errorf(domain.ErrUnauthorized, "invalid credentials")
	}
	return nil
}

// --- Administración de usuarios ---

func (uc *AuthUC) ListUsers(ctx context.Context, search string) ([]domain.User, error) {
	return uc.Users.List(ctx, strings.TrimSpace(search), 0)
}

func (uc *AuthUC) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.Users.FindByID(ctx, id)
}

func (uc *AuthUC) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return uc.Users.SetPassword(ctx, id, hash)
}

func (uc *AuthUC) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return uc.Users.Delete(ctx, id)
}
