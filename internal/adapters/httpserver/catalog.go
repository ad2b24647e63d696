package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/storefront/internal/domain"
)

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.categories.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"categories": list})
}

func (s *Server) apiCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := s.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"category": c})
}

// apiProducts acepta category como id o slug.
func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		Availability: domain.Availability(q.Get("availability")),
		Sortiment:    q.Get("sortiment"),
		Limit:        intQuery(r, "limit"),
	}
	if cat := strings.TrimSpace(q.Get("category")); cat != "" {
		if id, err := uuid.Parse(cat); err == nil {
			f.CategoryID = &id
		} else {
			f.CategorySlug = cat
		}
	}
	list, err := s.products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"products": list, "count": len(list)})
}

func (s *Server) apiProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"product": p})
}

func (s *Server) apiSortiment(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.SortimentTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"sortiment": list})
}

func (s *Server) apiSortimentProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.products.SortimentProducts(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"products": list, "count": len(list)})
}

// --- Admin: categorías ---

type categoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	ParentID    *string `json:"parentId"`
}

func (req categoryRequest) patch() (domain.CategoryPatch, error) {
	p := domain.CategoryPatch{Name: req.Name, Slug: req.Slug, Description: req.Description, Image: req.Image}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			p.ClearParent = true
		} else {
			id, err := uuid.Parse(*req.ParentID)
			if err != nil {
				return p, domain.Errorf(domain.ErrInvalid, "invalid parentId")
			}
			p.ParentID = &id
		}
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) adminCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"category": c})
}

func (s *Server) adminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c := &domain.Category{
		Name: deref(req.Name), Slug: deref(req.Slug), Description: deref(req.Description),
		Image: deref(req.Image), ParentID: p.ParentID,
	}
	if err := s.categories.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"category": c})
}

func (s *Server) adminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := req.patch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.categories.Update(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"category": c})
}

func (s *Server) adminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "category deleted"})
}

// --- Admin: productos ---

type productRequest struct {
	Name         *string                          `json:"name"`
	Description  *string                          `json:"description"`
	Price        *decimal.Decimal                 `json:"price"`
	Image        *string                          `json:"image"`
	Category     *string                          `json:"category"`
	Availability *domain.Availability             `json:"availabilityStatus"`
	Attributes   map[string]domain.AttributeEntry `json:"attributes"`
	Sortiment    []string                         `json:"sortiment"`
}

func (s *Server) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Price == nil {
		writeError(w, r, domain.Errorf(domain.ErrInvalid, "price is required"))
		return
	}
	p := &domain.Product{
		Name: deref(req.Name), Description: deref(req.Description), Price: *req.Price,
		Image: deref(req.Image), Attributes: req.Attributes,
	}
	if req.Availability != nil {
		p.Availability = *req.Availability
	}
	if ref := strings.TrimSpace(deref(req.Category)); ref != "" {
		if id, err := uuid.Parse(ref); err == nil {
			p.CategoryID = &id
		} else {
			p.CategorySlug = ref
		}
	}
	if err := s.products.Create(r.Context(), p, req.Sortiment); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.products.Get(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"product": created})
}

func (s *Server) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.products.Update(r.Context(), id, domain.ProductPatch{
		Name: req.Name, Description: req.Description, Price: req.Price, Image: req.Image,
		Category: req.Category, Availability: req.Availability,
		Attributes: req.Attributes, Sortiment: req.Sortiment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"product": p})
}

func (s *Server) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "product deleted"})
}

func (s *Server) adminImages(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.products.Images(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"images": list})
}

type imageRequest struct {
	URL          string `json:"url"`
	DisplayOrder *int   `json:"displayOrder"`
}

func (s *Server) adminAddImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	img, err := s.products.AddImage(r.Context(), id, req.URL, req.DisplayOrder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"image": img})
}

func (s *Server) adminReorderImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	imgID, err := uuidParam(r, "imageId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.DisplayOrder == nil {
		writeError(w, r, domain.Errorf(domain.ErrInvalid, "displayOrder is required"))
		return
	}
	if err := s.products.ReorderImage(r.Context(), id, imgID, *req.DisplayOrder); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "image order updated"})
}

func (s *Server) adminDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	imgID, err := uuidParam(r, "imageId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.products.DeleteImage(r.Context(), id, imgID); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "image deleted"})
}
