package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/adapters/export/xlsx"
	"github.com/phenrril/storefront/internal/adapters/httpserver"
	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/testutil"
	"github.com/phenrril/storefront/internal/usecase"
)

func newHandler(t *testing.T, db *gorm.DB, rateLimit int) http.Handler {
	t.Helper()
	catRepo := postgres.NewCategoryRepo(db)
	prodRepo := postgres.NewProductRepo(db)
	userRepo := postgres.NewUserRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	return httpserver.New(httpserver.Deps{
		Categories:         &usecase.CategoryUC{Categories: catRepo},
		Products:           &usecase.ProductUC{Products: prodRepo, Sortiment: postgres.NewSortimentRepo(db)},
		Carts:              &usecase.CartUC{Carts: cartRepo},
		Orders:             &usecase.OrderUC{Orders: orderRepo, Carts: cartRepo},
		Attributes:         &usecase.AttributeUC{Attributes: postgres.NewAttributeRepo(db)},
		Auth:               &usecase.AuthUC{Users: userRepo, AdminUser: "admin", AdminPass: "admin123"},
		Contact:            &usecase.ContactUC{Messages: postgres.NewContactRepo(db)},
		Search:             &usecase.SearchUC{Products: prodRepo, Categories: catRepo, Users: userRepo, Orders: orderRepo},
		Dashboard:          &usecase.DashboardUC{Stats: postgres.NewStatsRepo(db)},
		Export:             &xlsx.Exporter{Catalog: prodRepo, Sales: orderRepo},
		Tokens:             httpserver.NewTokens("test-secret", time.Hour, time.Hour),
		RateLimitPerMinute: rateLimit,
	})
}

type response struct {
	code   int
	header http.Header
	body   map[string]any
	raw    []byte
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	res := response{code: rec.Code, header: rec.Header(), raw: rec.Body.Bytes()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res.body))
	}
	return res
}

func field(t *testing.T, m map[string]any, path ...string) any {
	t.Helper()
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		require.True(t, ok, "no object at %s", p)
		cur = obj[p]
	}
	return cur
}

// los decimales pueden venir como string o número según la configuración global
func money(v any) string { return fmt.Sprint(v) }

type APISuite struct {
	suite.Suite
	db    *gorm.DB
	h     http.Handler
	pipeA *domain.Product
	pipeB *domain.Product
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.h = newHandler(s.T(), s.db, 0)
	cat := testutil.Category(s.T(), s.db, "Trubky")
	s.pipeA = testutil.Product(s.T(), s.db, "Pipe-A", 100, cat)
	s.pipeB = testutil.Product(s.T(), s.db, "Pipe-B", 50, cat)
}

func (s *APISuite) register(email string) string {
	res := call(s.T(), s.h, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "heslo123", "firstName": "Jan", "lastName": "Novák",
	})
	require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	tok, _ := res.body["token"].(string)
	require.NotEmpty(s.T(), tok)
	return tok
}

func (s *APISuite) adminToken() string {
	res := call(s.T(), s.h, http.MethodPost, "/admin/api/auth/login", "", map[string]any{"username": "admin", "password": "admin123"})
	require.Equal(s.T(), http.StatusOK, res.code)
	return res.body["token"].(string)
}

func (s *APISuite) TestHealthAndMetrics() {
	res := call(s.T(), s.h, http.MethodGet, "/api/health", "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), true, res.body["success"])

	res = call(s.T(), s.h, http.MethodGet, "/metrics", "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Contains(s.T(), string(res.raw), `storefront_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func (s *APISuite) TestUnknownRoute() {
	res := call(s.T(), s.h, http.MethodGet, "/api/nope", "", nil)
	require.Equal(s.T(), http.StatusNotFound, res.code)
	require.Equal(s.T(), false, res.body["success"])
}

func (s *APISuite) TestPublicCatalog() {
	res := call(s.T(), s.h, http.MethodGet, "/api/products?category=trubky&search=pipe-a", "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.EqualValues(s.T(), 1, res.body["count"])

	res = call(s.T(), s.h, http.MethodGet, "/api/products/"+s.pipeB.ID.String(), "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "Pipe-B", field(s.T(), res.body, "product", "name"))

	res = call(s.T(), s.h, http.MethodGet, "/api/products/not-a-uuid", "", nil)
	require.Equal(s.T(), http.StatusBadRequest, res.code)

	res = call(s.T(), s.h, http.MethodGet, "/api/categories/trubky", "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.EqualValues(s.T(), 2, field(s.T(), res.body, "category", "productCount"))

	res = call(s.T(), s.h, http.MethodGet, "/api/products?availability=sometimes", "", nil)
	require.Equal(s.T(), http.StatusBadRequest, res.code)
}

func (s *APISuite) TestCartRequiresSession() {
	res := call(s.T(), s.h, http.MethodGet, "/api/cart", "", nil)
	require.Equal(s.T(), http.StatusUnauthorized, res.code)
	require.Equal(s.T(), true, res.body["requiresAuth"])
	require.Equal(s.T(), false, res.body["success"])

	res = call(s.T(), s.h, http.MethodGet, "/api/cart/count", "", nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.EqualValues(s.T(), 0, res.body["count"])

	res = call(s.T(), s.h, http.MethodGet, "/api/cart", "garbage.token.value", nil)
	require.Equal(s.T(), http.StatusUnauthorized, res.code)
}

func (s *APISuite) TestCheckoutFlow() {
	tok := s.register("jan@example.cz")

	res := call(s.T(), s.h, http.MethodPost, "/api/cart/add", tok, map[string]any{"productId": s.pipeA.ID, "quantity": 2})
	require.Equal(s.T(), http.StatusOK, res.code, string(res.raw))
	res = call(s.T(), s.h, http.MethodPost, "/api/cart/add", tok, map[string]any{"productId": s.pipeB.ID})
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "250", money(field(s.T(), res.body, "cart", "total")))
	require.EqualValues(s.T(), 3, field(s.T(), res.body, "cart", "itemCount"))

	res = call(s.T(), s.h, http.MethodGet, "/api/cart/count", tok, nil)
	require.EqualValues(s.T(), 3, res.body["count"])

	checkout := map[string]any{
		"firstName": "Jan", "lastName": "Novák", "email": "jan@example.cz", "phone": "777123456",
		"street": "Dlouhá 1", "city": "Praha", "postalCode": "11000", "country": "Česká republika",
		"shipping": "standard", "payment": "bank_transfer",
	}
	res = call(s.T(), s.h, http.MethodPost, "/api/checkout", tok, checkout)
	require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	require.Equal(s.T(), "400", money(field(s.T(), res.body, "order", "totalAmount")))
	require.Equal(s.T(), "pending", field(s.T(), res.body, "order", "status"))
	orderID := field(s.T(), res.body, "order", "id").(string)

	res = call(s.T(), s.h, http.MethodGet, "/api/cart", tok, nil)
	require.Empty(s.T(), field(s.T(), res.body, "cart", "items"))

	res = call(s.T(), s.h, http.MethodPost, "/api/checkout", tok, checkout)
	require.Equal(s.T(), http.StatusBadRequest, res.code)
	require.Equal(s.T(), "cart is empty", res.body["error"])

	res = call(s.T(), s.h, http.MethodGet, "/api/orders", tok, nil)
	require.Len(s.T(), res.body["orders"], 1)

	other := s.register("eva@example.cz")
	res = call(s.T(), s.h, http.MethodGet, "/api/orders/"+orderID, other, nil)
	require.Equal(s.T(), http.StatusForbidden, res.code)
}

func (s *APISuite) TestCartUpdateToZeroRemoves() {
	tok := s.register("jan@example.cz")
	call(s.T(), s.h, http.MethodPost, "/api/cart/add", tok, map[string]any{"productId": s.pipeA.ID, "quantity": 2})

	res := call(s.T(), s.h, http.MethodPut, "/api/cart/update", tok, map[string]any{"productId": s.pipeA.ID, "quantity": 0})
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Empty(s.T(), field(s.T(), res.body, "cart", "items"))
}

func (s *APISuite) TestLoginAndProfile() {
	s.register("jan@example.cz")

	res := call(s.T(), s.h, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jan@example.cz", "password": "wrong"})
	require.Equal(s.T(), http.StatusUnauthorized, res.code)

	res = call(s.T(), s.h, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "JAN@example.cz", "password": "heslo123"})
	require.Equal(s.T(), http.StatusOK, res.code)
	tok := res.body["token"].(string)
	require.NotEmpty(s.T(), res.header.Values("Set-Cookie"))

	res = call(s.T(), s.h, http.MethodPut, "/api/auth/me", tok, map[string]any{"phone": "+420 777 000 111"})
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "+420 777 000 111", field(s.T(), res.body, "user", "phone"))
	require.Nil(s.T(), field(s.T(), res.body, "user", "passwordHash"))

	res = call(s.T(), s.h, http.MethodGet, "/api/auth/verify", tok, nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "jan@example.cz", field(s.T(), res.body, "user", "email"))

	res = call(s.T(), s.h, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "jan@example.cz", "password": "heslo123"})
	require.Equal(s.T(), http.StatusBadRequest, res.code)
}

func (s *APISuite) TestGoogleDisabled() {
	res := call(s.T(), s.h, http.MethodGet, "/api/auth/google/login", "", nil)
	require.Equal(s.T(), http.StatusNotFound, res.code)
}

func (s *APISuite) TestAdminRequiresAdminToken() {
	res := call(s.T(), s.h, http.MethodGet, "/admin/api/dashboard", "", nil)
	require.Equal(s.T(), http.StatusUnauthorized, res.code)
	require.Equal(s.T(), true, res.body["requiresAuth"])

	userTok := s.register("jan@example.cz")
	res = call(s.T(), s.h, http.MethodGet, "/admin/api/dashboard", userTok, nil)
	require.Equal(s.T(), http.StatusUnauthorized, res.code)

	res = call(s.T(), s.h, http.MethodPost, "/admin/api/auth/login", "", map[string]any{"username": "admin", "password": "nope"})
	require.Equal(s.T(), http.StatusUnauthorized, res.code)

	res = call(s.T(), s.h, http.MethodGet, "/admin/api/dashboard", s.adminToken(), nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.EqualValues(s.T(), 2, field(s.T(), res.body, "stats", "products"))
	require.EqualValues(s.T(), 1, field(s.T(), res.body, "stats", "users"))
}

func (s *APISuite) TestAdminOrderStatus() {
	tok := s.register("jan@example.cz")
	call(s.T(), s.h, http.MethodPost, "/api/cart/add", tok, map[string]any{"productId": s.pipeA.ID})
	res := call(s.T(), s.h, http.MethodPost, "/api/checkout", tok, map[string]any{
		"firstName": "Jan", "lastName": "Novák", "email": "jan@example.cz", "phone": "777",
		"street": "Dlouhá 1", "city": "Praha", "postalCode": "11000", "country": "CZ",
		"shipping": "pickup", "payment": "cash",
	})
	require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	orderPath := "/admin/api/orders/" + field(s.T(), res.body, "order", "id").(string) + "/status"
	admin := s.adminToken()

	res = call(s.T(), s.h, http.MethodPut, orderPath, admin, map[string]any{"status": "lost"})
	require.Equal(s.T(), http.StatusBadRequest, res.code)

	res = call(s.T(), s.h, http.MethodPut, orderPath, admin, map[string]any{"status": "processing"})
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "processing", field(s.T(), res.body, "order", "status"))

	res = call(s.T(), s.h, http.MethodGet, "/admin/api/orders?search=pipe-a", admin, nil)
	require.EqualValues(s.T(), 1, res.body["count"])
}

func (s *APISuite) TestAdminCategoryDeleteBlocked() {
	admin := s.adminToken()
	res := call(s.T(), s.h, http.MethodGet, "/api/categories/trubky", "", nil)
	catID := field(s.T(), res.body, "category", "id").(string)

	res = call(s.T(), s.h, http.MethodDelete, "/admin/api/categories/"+catID, admin, nil)
	require.Equal(s.T(), http.StatusBadRequest, res.code)
	require.Equal(s.T(), "category contains 2 products", res.body["error"])

	for _, p := range []*domain.Product{s.pipeA, s.pipeB} {
		res = call(s.T(), s.h, http.MethodDelete, "/admin/api/products/"+p.ID.String(), admin, nil)
		require.Equal(s.T(), http.StatusOK, res.code)
	}
	res = call(s.T(), s.h, http.MethodDelete, "/admin/api/categories/"+catID, admin, nil)
	require.Equal(s.T(), http.StatusOK, res.code)
}

func (s *APISuite) TestAdminProductLifecycle() {
	admin := s.adminToken()
	res := call(s.T(), s.h, http.MethodPost, "/admin/api/products", admin, map[string]any{
		"name": "Kulový ventil", "price": "189.90", "category": "trubky",
		"availabilityStatus": "on_order", "sortiment": []string{"bestseller"},
		"attributes": map[string]any{"material": map[string]any{"value": "mosaz", "type": "text"}},
	})
	require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	id := field(s.T(), res.body, "product", "id").(string)
	require.Equal(s.T(), "mosaz", field(s.T(), res.body, "product", "attributes", "material", "value"))

	res = call(s.T(), s.h, http.MethodPost, "/admin/api/products", admin, map[string]any{"name": "X", "price": 1, "category": "missing"})
	require.Equal(s.T(), http.StatusBadRequest, res.code)

	res = call(s.T(), s.h, http.MethodPost, "/admin/api/products/"+id+"/images", admin, map[string]any{"url": "/img/a.jpg"})
	require.Equal(s.T(), http.StatusCreated, res.code)
	res = call(s.T(), s.h, http.MethodPost, "/admin/api/products/"+id+"/images", admin, map[string]any{"url": "/img/b.jpg"})
	require.Equal(s.T(), http.StatusCreated, res.code)
	imgB := field(s.T(), res.body, "image", "id").(string)

	res = call(s.T(), s.h, http.MethodPut, "/admin/api/products/"+id+"/images/"+imgB, admin, map[string]any{"displayOrder": -1})
	require.Equal(s.T(), http.StatusOK, res.code)
	res = call(s.T(), s.h, http.MethodGet, "/admin/api/products/"+id+"/images", admin, nil)
	images := res.body["images"].([]any)
	require.Len(s.T(), images, 2)
	require.Equal(s.T(), "/img/b.jpg", images[0].(map[string]any)["url"])

	res = call(s.T(), s.h, http.MethodGet, "/api/sortiment/bestseller/products", "", nil)
	require.EqualValues(s.T(), 1, res.body["count"])

	res = call(s.T(), s.h, http.MethodPut, "/admin/api/products/"+id, admin, map[string]any{"sortiment": []string{}})
	require.Equal(s.T(), http.StatusOK, res.code)
	res = call(s.T(), s.h, http.MethodGet, "/api/sortiment/bestseller/products", "", nil)
	require.EqualValues(s.T(), 0, res.body["count"])
}

func (s *APISuite) TestAdminSearchShortQuery() {
	admin := s.adminToken()
	res := call(s.T(), s.h, http.MethodGet, "/admin/api/search?q=p", admin, nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Empty(s.T(), field(s.T(), res.body, "results", "products"))

	res = call(s.T(), s.h, http.MethodGet, "/admin/api/search?q=pipe", admin, nil)
	require.Len(s.T(), field(s.T(), res.body, "results", "products"), 2)
}

func (s *APISuite) TestContactMessages() {
	res := call(s.T(), s.h, http.MethodPost, "/api/contact", "", map[string]any{"name": "Eva", "email": "eva@example.cz", "subject": "Dotaz"})
	require.Equal(s.T(), http.StatusBadRequest, res.code)

	res = call(s.T(), s.h, http.MethodPost, "/api/contact", "", map[string]any{"name": "Eva", "email": "eva@example.cz", "subject": "Dotaz", "message": "Máte skladem?"})
	require.Equal(s.T(), http.StatusCreated, res.code)
	id := res.body["id"].(string)

	admin := s.adminToken()
	res = call(s.T(), s.h, http.MethodGet, "/admin/api/messages/unread-count", admin, nil)
	require.EqualValues(s.T(), 1, res.body["count"])

	res = call(s.T(), s.h, http.MethodPut, "/admin/api/messages/"+id+"/read", admin, nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), "read", field(s.T(), res.body, "contactMessage", "status"))

	res = call(s.T(), s.h, http.MethodGet, "/admin/api/messages?status=new", admin, nil)
	require.EqualValues(s.T(), 0, res.body["count"])
}

func (s *APISuite) TestAttributes() {
	admin := s.adminToken()
	res := call(s.T(), s.h, http.MethodPost, "/admin/api/attributes/categories", admin, map[string]any{"name": "material", "displayName": "Materiál"})
	require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	catID := field(s.T(), res.body, "category", "id").(string)

	for _, v := range []string{"mosaz", "med"} {
		res = call(s.T(), s.h, http.MethodPost, "/admin/api/attributes/values", admin, map[string]any{"categoryId": catID, "value": v, "displayName": strings.ToUpper(v)})
		require.Equal(s.T(), http.StatusCreated, res.code, string(res.raw))
	}
	res = call(s.T(), s.h, http.MethodPost, "/admin/api/attributes/values", admin, map[string]any{"categoryId": catID, "value": "med", "displayName": "Měď"})
	require.Equal(s.T(), http.StatusBadRequest, res.code)
	require.Equal(s.T(), "value already exists in this category", res.body["error"])

	res = call(s.T(), s.h, http.MethodGet, "/api/attributes/material", "", nil)
	require.Len(s.T(), res.body["values"], 2)
}

func (s *APISuite) TestExportProducts() {
	res := call(s.T(), s.h, http.MethodGet, "/admin/api/export/products.xlsx", s.adminToken(), nil)
	require.Equal(s.T(), http.StatusOK, res.code)
	require.Equal(s.T(), xlsx.ContentType, res.header.Get("Content-Type"))
	require.Contains(s.T(), res.header.Get("Content-Disposition"), "products-")
	require.NotEmpty(s.T(), res.raw)
}

func TestRateLimit(t *testing.T) {
	h := newHandler(t, testutil.NewDB(t), 2)
	for i := 0; i < 2; i++ {
		res := call(t, h, http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, res.code)
	}
	res := call(t, h, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusTooManyRequests, res.code)
	require.NotEmpty(t, res.header.Get("Retry-After"))
}

func TestTokens(t *testing.T) {
	tokens := httpserver.NewTokens("secret", time.Hour, time.Hour)
	admin, _, err := tokens.IssueAdmin("admin")
	require.NoError(t, err)

	_, err = tokens.ParseSession(admin)
	require.Error(t, err)
	user, err := tokens.ParseAdmin(admin)
	require.NoError(t, err)
	require.Equal(t, "admin", user)

	expired := httpserver.NewTokens("secret", -time.Minute, time.Hour)
	sess, _, err := expired.IssueSession(uuid.New())
	require.NoError(t, err)
	_, err = tokens.ParseSession(sess)
	require.Error(t, err)

	other := httpserver.NewTokens("other-secret", time.Hour, time.Hour)
	_, err = other.ParseAdmin(admin)
	require.Error(t, err)
}
