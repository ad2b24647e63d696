package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Address.Country == "" {
		u.Address.Country = domain.DefaultCountry
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return translate(err, "user")
	}
	if n > 0 {
		return domain.Errorf(domain.ErrDuplicate, "user with this email already exists")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err, "user")
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return nil, domain.Errorf(domain.ErrInvalid, "email is required")
	}
	if err := r.db.WithContext(ctx).First(&u, "email = ?", e).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) FindByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "google_sub = ?", sub).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Address != nil {
		u.Address = *patch.Address
		if u.Address.Country == "" {
			u.Address.Country = domain.DefaultCountry
		}
	}
	err = r.db.WithContext(ctx).Model(u).
		Select("first_name", "last_name", "phone", "street", "city", "postal_code", "country", "updated_at").
		Updates(u).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return u, nil
}

func (r *UserRepo) LinkGoogle(ctx context.Context, id uuid.UUID, sub string) error {
	return r.updateColumn(ctx, id, "google_sub", sub)
}

func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *UserRepo) updateColumn(ctx context.Context, id uuid.UUID, col string, val any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update(col, val)
	if res.Error != nil {
		return translate(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return domain.Errorf(domain.ErrNotFound, "user not found")
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, search string, limit int) ([]domain.User, error) {
	list := []domain.User{}
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if strings.TrimSpace(search) != "" {
		like := likePattern(search)
		q = q.Where("(LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\')", like, like, like, like)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, translate(err, "users")
	}
	return list, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	out := make(map[uuid.UUID]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var list []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, "users")
	}
	for _, u := range list {
		out[u.ID] = u
	}
	return out, nil
}

// Delete borra el usuario y su carrito; los pedidos quedan sin dueño.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Order{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.Errorf(domain.ErrNotFound, "user not found")
		}
		return nil
	})
}
