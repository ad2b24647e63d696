package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/testutil"
	"github.com/phenrril/storefront/internal/usecase"
)

func newAuthUC(t *testing.T) *usecase.AuthUC {
	return &usecase.AuthUC{Users: postgres.NewUserRepo(testutil.NewDB(t)), AdminUser: "admin", AdminPass: "s3cret!"}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUC(t)

	u, err := uc.Register(ctx, usecase.RegisterRequest{Email: " Eva@Example.CZ ", Password: "heslo123", FirstName: "Eva"})
	require.NoError(t, err)
	require.Equal(t, "eva@example.cz", u.Email)
	require.NotEqual(t, "heslo123", u.PasswordHash)
	require.Equal(t, domain.DefaultCountry, u.Address.Country)

	_, err = uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: "another1"})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := uc.Login(ctx, "EVA@example.cz", "heslo123")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = uc.Login(ctx, "eva@example.cz", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, "nobody@example.cz", "heslo123")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUC(t)

	_, err := uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: "123"})
	require.ErrorIs(t, err, domain.ErrInvalid)
	_, err = uc.Register(ctx, usecase.RegisterRequest{Email: "eva", Password: "heslo123"})
	require.ErrorIs(t, err, domain.ErrInvalid)
	_, err = uc.Register(ctx, usecase.RegisterRequest{})
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: strings.Repeat("a", 80)})
	require.ErrorIs(t, err, domain.ErrInvalid)
	require.EqualError(t, err, "password must be at most 72 bytes")

	// 36 caracteres de dos bytes: justo en el límite
	_, err = uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: strings.Repeat("ž", 36)})
	require.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUC(t)
	u, err := uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: "heslo123"})
	require.NoError(t, err)

	require.ErrorIs(t, uc.ResetPassword(ctx, u.ID, "short"), domain.ErrInvalid)
	require.ErrorIs(t, uc.ResetPassword(ctx, u.ID, strings.Repeat("ž", 37)), domain.ErrInvalid)
	require.NoError(t, uc.ResetPassword(ctx, u.ID, "noveheslo"))

	_, err = uc.Login(ctx, "eva@example.cz", "heslo123")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, "eva@example.cz", "noveheslo")
	require.NoError(t, err)
}

func TestLoginGoogleCreatesThenLinks(t *testing.T) {
	ctx := context.Background()
	uc := newAuthUC(t)

	existing, err := uc.Register(ctx, usecase.RegisterRequest{Email: "eva@example.cz", Password: "heslo123"})
	require.NoError(t, err)
	linked, err := uc.LoginGoogle(ctx, usecase.GoogleProfile{Sub: "g-1", Email: "eva@example.cz"})
	require.NoError(t, err)
	require.Equal(t, existing.ID, linked.ID)

	again, err := uc.LoginGoogle(ctx, usecase.GoogleProfile{Sub: "g-1", Email: "changed@example.cz"})
	require.NoError(t, err)
	require.Equal(t, existing.ID, again.ID)

	fresh, err := uc.LoginGoogle(ctx, usecase.GoogleProfile{Sub: "g-2", Email: "new@example.cz", GivenName: "Petr"})
	require.NoError(t, err)
	require.NotEqual(t, existing.ID, fresh.ID)
	require.Equal(t, "Petr", fresh.FirstName)
}

func TestAdminLogin(t *testing.T) {
	uc := &usecase.AuthUC{AdminUser: "admin", AdminPass: "s3cret!"}
	require.NoError(t, uc.AdminLogin("admin", "s3cret!"))
	require.ErrorIs(t, uc.AdminLogin("admin", "nope"), domain.ErrUnauthorized)
	require.ErrorIs(t, uc.AdminLogin("root", "s3cret!"), domain.ErrUnauthorized)
}

func TestContactSubmit(t *testing.T) {
	ctx := context.Background()
	uc := &usecase.ContactUC{Messages: postgres.NewContactRepo(testutil.NewDB(t))}

	_, err := uc.Submit(ctx, usecase.ContactRequest{Name: "Eva", Email: "eva@example.cz", Subject: "Dotaz"})
	require.ErrorIs(t, err, domain.ErrInvalid)
	_, err = uc.Submit(ctx, usecase.ContactRequest{Name: "Eva", Email: "eva@", Subject: "Dotaz", Message: "Ahoj"})
	require.ErrorIs(t, err, domain.ErrInvalid)

	m, err := uc.Submit(ctx, usecase.ContactRequest{Name: "Eva", Email: "eva@example.cz", Subject: "Dotaz", Message: "Ahoj"})
	require.NoError(t, err)
	require.Equal(t, domain.MessageNew, m.Status)

	n, err := uc.UnreadCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = uc.List(ctx, "bogus", 0)
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = uc.MarkRead(ctx, m.ID)
	require.NoError(t, err)
	n, err = uc.UnreadCount(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
