package domain

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultCountry = "Česká republika"

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

type Address struct {
	Street     string `gorm:"size:200" json:"street"`
	City       string `gorm:"size:120" json:"city"`
	PostalCode string `gorm:"size:20" json:"postalCode"`
	Country    string `gorm:"size:80" json:"country"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:140;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	FirstName    string    `gorm:"size:100" json:"firstName"`
	LastName     string    `gorm:"size:100" json:"lastName"`
	Phone        string    `gorm:"size:60" json:"phone"`
	Address      Address   `gorm:"embedded" json:"address"`
	GoogleSub    *string   `gorm:"size:80;uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *Address
}

type UserRepo interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, patch UserPatch) (*User, error)
	LinkGoogle(ctx context.Context, id uuid.UUID, sub string) error
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	List(ctx context.Context, search string, limit int) ([]User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
