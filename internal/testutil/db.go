// Package testutil levanta una base SQLite en memoria con el mismo esquema que producción.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/domain"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.Migrate(db))
	require.NoError(t, postgres.NewSortimentRepo(db).Ensure(context.Background(), domain.DefaultSortiment))
	return db
}

func Category(t testing.TB, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Name: name}
	require.NoError(t, postgres.NewCategoryRepo(db).CreateCategory(context.Background(), c))
	return c
}

func Product(t testing.TB, db *gorm.DB, name string, price int64, cat *domain.Category) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Price: decimal.NewFromInt(price), Image: "/img/" + domain.Slugify(name) + ".jpg"}
	if cat != nil {
		p.CategoryID = &cat.ID
	}
	require.NoError(t, postgres.NewProductRepo(db).Create(context.Background(), p, nil))
	return p
}

func User(t testing.TB, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, FirstName: "Jan", LastName: "Novák"}
	require.NoError(t, postgres.NewUserRepo(db).Create(context.Background(), u))
	return u
}
