package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phenrril/storefront/internal/app"
	"github.com/phenrril/storefront/internal/config"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		BaseURL:       "http://localhost:8080",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		AdminUser:     "admin",
		AdminPass:     "admin123",
		AdminTokenTTL: time.Hour,
	}
}

func TestMigrateAndSeedAreIdempotent(t *testing.T) {
	ctx := context.Background()
	a := app.NewApp(testConfig(), testutil.NewDB(t))
	require.Nil(t, a.Google)

	require.NoError(t, a.Migrate(ctx))
	require.NoError(t, a.Seed(ctx))
	require.NoError(t, a.Seed(ctx))

	products, err := a.Products.List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 6)

	cats, err := a.Categories.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, cats, 3)

	best, err := a.Products.SortimentProducts(ctx, "bestseller")
	require.NoError(t, err)
	require.Len(t, best, 2)
}

func TestHTTPHandlerHealth(t *testing.T) {
	a := app.NewApp(testConfig(), testutil.NewDB(t))
	rec := httptest.NewRecorder()
	a.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"status":"ok"}`, rec.Body.String())
}
