package postgres_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/testutil"
)

type CatalogRepoSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	categories *postgres.CategoryRepo
	products   *postgres.ProductRepo
	sortiment  *postgres.SortimentRepo
}

func TestCatalogRepoSuite(t *testing.T) {
	suite.Run(t, new(CatalogRepoSuite))
}

func (s *CatalogRepoSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	s.categories = postgres.NewCategoryRepo(s.db)
	s.products = postgres.NewProductRepo(s.db)
	s.sortiment = postgres.NewSortimentRepo(s.db)
}

func (s *CatalogRepoSuite) TestCreateCategoryDerivesSlug() {
	c := &domain.Category{Name: "Vodovodní Trubky"}
	require.NoError(s.T(), s.categories.CreateCategory(s.ctx, c))
	require.Equal(s.T(), "vodovodni-trubky", c.Slug)

	got, err := s.categories.FindCategoryBySlug(s.ctx, "vodovodni-trubky")
	require.NoError(s.T(), err)
	require.Equal(s.T(), c.ID, got.ID)
}

func (s *CatalogRepoSuite) TestDuplicateSlugRejected() {
	testutil.Category(s.T(), s.db, "Pipes")
	err := s.categories.CreateCategory(s.ctx, &domain.Category{Name: "Other", Slug: "pipes"})
	require.ErrorIs(s.T(), err, domain.ErrDuplicate)
	require.EqualError(s.T(), err, "category slug already exists")
}

func (s *CatalogRepoSuite) TestListCategoriesSearchAndCounts() {
	pipes := testutil.Category(s.T(), s.db, "Pipes")
	testutil.Category(s.T(), s.db, "Valves")
	testutil.Product(s.T(), s.db, "Pipe A", 100, pipes)
	testutil.Product(s.T(), s.db, "Pipe B", 50, pipes)

	all, err := s.categories.ListCategories(s.ctx, "")
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	require.Equal(s.T(), "Pipes", all[0].Name)
	require.EqualValues(s.T(), 2, all[0].ProductCount)
	require.EqualValues(s.T(), 0, all[1].ProductCount)

	found, err := s.categories.ListCategories(s.ctx, "VAL")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	require.Equal(s.T(), "Valves", found[0].Name)
}

func (s *CatalogRepoSuite) TestDeleteCategoryBlockedWhileReferenced() {
	pipes := testutil.Category(s.T(), s.db, "Pipes")
	p := testutil.Product(s.T(), s.db, "Pipe A", 100, pipes)

	err := s.categories.DeleteCategory(s.ctx, pipes.ID)
	require.ErrorIs(s.T(), err, domain.ErrInUse)
	require.EqualError(s.T(), err, "category contains 1 products")

	require.NoError(s.T(), s.products.Delete(s.ctx, p.ID))
	require.NoError(s.T(), s.categories.DeleteCategory(s.ctx, pipes.ID))

	_, err = s.categories.FindCategoryByID(s.ctx, pipes.ID)
	require.ErrorIs(s.T(), err, domain.ErrNotFound)
}

func (s *CatalogRepoSuite) TestDeleteCategoryDetachesChildren() {
	parent := testutil.Category(s.T(), s.db, "Parent")
	child := &domain.Category{Name: "Child", ParentID: &parent.ID}
	require.NoError(s.T(), s.categories.CreateCategory(s.ctx, child))

	require.NoError(s.T(), s.categories.DeleteCategory(s.ctx, parent.ID))
	got, err := s.categories.FindCategoryByID(s.ctx, child.ID)
	require.NoError(s.T(), err)
	require.Nil(s.T(), got.ParentID)
}

func (s *CatalogRepoSuite) TestUpdateCategoryRejectsSelfParent() {
	c := testutil.Category(s.T(), s.db, "Pipes")
	_, err := s.categories.UpdateCategory(s.ctx, c.ID, domain.CategoryPatch{ParentID: &c.ID})
	require.ErrorIs(s.T(), err, domain.ErrInvalid)
}

func (s *CatalogRepoSuite) TestListProductsFilters() {
	pipes := testutil.Category(s.T(), s.db, "Pipes")
	valves := testutil.Category(s.T(), s.db, "Valves")
	testutil.Product(s.T(), s.db, "Copper pipe", 100, pipes)
	testutil.Product(s.T(), s.db, "Ball valve", 80, valves)
	out := &domain.Product{Name: "Gate valve", Price: decimal.NewFromInt(120), CategorySlug: valves.Slug, Availability: domain.AvailabilityOutOfStock}
	require.NoError(s.T(), s.products.Create(s.ctx, out, []string{"bestseller"}))

	list, err := s.products.List(s.ctx, domain.ProductFilter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)

	list, err = s.products.List(s.ctx, domain.ProductFilter{CategorySlug: "valves"})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)

	// la búsqueda también mira el nombre de la categoría
	list, err = s.products.List(s.ctx, domain.ProductFilter{Search: "pipes"})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	require.Equal(s.T(), "Copper pipe", list[0].Name)
	require.NotNil(s.T(), list[0].Category)

	list, err = s.products.List(s.ctx, domain.ProductFilter{Availability: domain.AvailabilityOutOfStock})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)

	list, err = s.products.List(s.ctx, domain.ProductFilter{Sortiment: "bestseller"})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	require.Equal(s.T(), "Gate valve", list[0].Name)
	require.Len(s.T(), list[0].Sortiment, 1)
}

func (s *CatalogRepoSuite) TestSearchTreatsWildcardsLiterally() {
	testutil.Product(s.T(), s.db, "Copper pipe", 100, nil)
	testutil.Product(s.T(), s.db, "Sleva 50% ventil", 80, nil)
	testutil.Product(s.T(), s.db, "PPR_20 trubka", 40, nil)

	for q, want := range map[string]int{"%": 1, "__": 0, "_": 1, "50%": 1, "copper": 1} {
		list, err := s.products.List(s.ctx, domain.ProductFilter{Search: q})
		require.NoError(s.T(), err)
		require.Len(s.T(), list, want, q)
	}

	cats, err := s.categories.ListCategories(s.ctx, "%")
	require.NoError(s.T(), err)
	require.Empty(s.T(), cats)
}

func (s *CatalogRepoSuite) TestCreateProductUnknownCategory() {
	err := s.products.Create(s.ctx, &domain.Product{Name: "X", Price: decimal.NewFromInt(1), CategorySlug: "nope"}, nil)
	require.ErrorIs(s.T(), err, domain.ErrInvalid)
}

func (s *CatalogRepoSuite) TestUpdateProductReplacesAttributesAndSortiment() {
	p := testutil.Product(s.T(), s.db, "Pipe", 100, nil)
	attrs := map[string]domain.AttributeEntry{
		"material": {Value: "copper"},
		"diameter": {Value: "22", Type: "number"},
	}
	got, err := s.products.Update(s.ctx, p.ID, domain.ProductPatch{Attributes: attrs, Sortiment: []string{"bestseller", "discounted"}})
	require.NoError(s.T(), err)
	require.Len(s.T(), got.Attributes, 2)
	require.Equal(s.T(), "text", got.Attributes["material"].Type)
	require.Len(s.T(), got.Sortiment, 2)

	got, err = s.products.Update(s.ctx, p.ID, domain.ProductPatch{
		Attributes: map[string]domain.AttributeEntry{"material": {Value: "steel"}},
		Sortiment:  []string{},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), map[string]domain.AttributeEntry{"material": {Value: "steel", Type: "text"}}, got.Attributes)
	require.Empty(s.T(), got.Sortiment)

	_, err = s.products.Update(s.ctx, p.ID, domain.ProductPatch{Sortiment: []string{"missing"}})
	require.ErrorIs(s.T(), err, domain.ErrInvalid)
}

func (s *CatalogRepoSuite) TestGalleryOrdering() {
	p := testutil.Product(s.T(), s.db, "Pipe", 100, nil)
	a, err := s.products.AddImage(s.ctx, p.ID, "/a.jpg", nil)
	require.NoError(s.T(), err)
	b, err := s.products.AddImage(s.ctx, p.ID, "/b.jpg", nil)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0, a.DisplayOrder)
	require.Equal(s.T(), 1, b.DisplayOrder)

	require.NoError(s.T(), s.products.UpdateImageOrder(s.ctx, p.ID, b.ID, -1))
	imgs, err := s.products.ListImages(s.ctx, p.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []string{"/b.jpg", "/a.jpg"}, []string{imgs[0].URL, imgs[1].URL})

	require.NoError(s.T(), s.products.DeleteImage(s.ctx, p.ID, a.ID))
	require.ErrorIs(s.T(), s.products.DeleteImage(s.ctx, p.ID, a.ID), domain.ErrNotFound)
}

func (s *CatalogRepoSuite) TestSortimentProducts() {
	tags, err := s.sortiment.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), tags, 3)
	require.Equal(s.T(), "bestseller", tags[0].Slug)

	p := &domain.Product{Name: "Fitting", Price: decimal.NewFromInt(10)}
	require.NoError(s.T(), s.products.Create(s.ctx, p, []string{"in-stock"}))
	list, err := s.sortiment.Products(s.ctx, "in-stock")
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)

	_, err = s.sortiment.Products(s.ctx, "nope")
	require.ErrorIs(s.T(), err, domain.ErrNotFound)
}
