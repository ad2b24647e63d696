package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/adapters/export/xlsx"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	st, err := s.dashboard.Overview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"stats": st})
}

func (s *Server) adminSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeOK(w, http.StatusOK, map[string]any{"query": q, "results": s.search.Global(r.Context(), q)})
}

// --- Atributos ---

func (s *Server) apiAttributeValues(w http.ResponseWriter, r *http.Request) {
	list, err := s.attributes.Values(r.Context(), chi.URLParam(r, "categoryName"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"values": list})
}

func (s *Server) adminAttributeCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.attributes.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"categories": list})
}

func (s *Server) adminCreateAttributeCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.AttributeCategory
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	c.ID, c.Values = uuid.Nil, nil
	if err := s.attributes.CreateCategory(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"category": c})
}

type attributeCategoryRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"displayName"`
	Description *string `json:"description"`
}

func (s *Server) adminUpdateAttributeCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req attributeCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.attributes.UpdateCategory(r.Context(), id, domain.AttributeCategoryPatch{
		Name: req.Name, DisplayName: req.DisplayName, Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"category": c})
}

func (s *Server) adminDeleteAttributeCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.attributes.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "attribute category deleted"})
}

func (s *Server) adminCreateAttributeValue(w http.ResponseWriter, r *http.Request) {
	var v domain.AttributeValue
	if err := decodeJSON(w, r, &v); err != nil {
		writeError(w, r, err)
		return
	}
	v.ID = uuid.Nil
	if err := s.attributes.CreateValue(r.Context(), &v); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"value": v})
}

type attributeValueRequest struct {
	Value        *string `json:"value"`
	DisplayName  *string `json:"displayName"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"displayOrder"`
}

func (s *Server) adminUpdateAttributeValue(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req attributeValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.attributes.UpdateValue(r.Context(), id, domain.AttributeValuePatch{
		Value: req.Value, DisplayName: req.DisplayName, Description: req.Description, DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"value": v})
}

func (s *Server) adminDeleteAttributeValue(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.attributes.DeleteValue(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "attribute value deleted"})
}

// --- Pedidos ---

func (s *Server) adminOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.orders.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"orders": list, "count": len(list)})
}

func (s *Server) adminOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"order": o})
}

func (s *Server) adminOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("order_id", id.String()).Str("status", string(o.Status)).Msg("order status updated")
	writeOK(w, http.StatusOK, map[string]any{"order": o})
}

// --- Usuarios ---

func (s *Server) adminUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.auth.ListUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"users": list, "count": len(list)})
}

func (s *Server) adminUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.auth.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	orders, err := s.orders.ListForUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": u, "orders": orders})
}

func (s *Server) adminResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), id, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "password updated"})
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.auth.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": "user deleted"})
}

// --- Mensajes de contacto ---

func (s *Server) apiContact(w http.ResponseWriter, r *http.Request) {
	var req usecase.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.contact.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"message": "message received", "id": m.ID})
}

func (s *Server) adminMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.contact.List(r.Context(), r.URL.Query().Get("status"), intQuery(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"messages": list, "count": len(list)})
}

func (s *Server) adminUnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.contact.UnreadCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"count": n})
}

func (s *Server) adminMarkRead(w http.ResponseWriter, r *http.Request) {
	s.setMessageStatus(w, r, s.contact.MarkRead)
}

func (s *Server) adminArchive(w http.ResponseWriter, r *http.Request) {
	s.setMessageStatus(w, r, s.contact.Archive)
}

func (s *Server) setMessageStatus(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error)) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"contactMessage": m})
}

// --- Exportación ---

func (s *Server) adminExportProducts(w http.ResponseWriter, r *http.Request) {
	s.writeWorkbook(w, r, "products", s.export.WriteProducts)
}

func (s *Server) adminExportOrders(w http.ResponseWriter, r *http.Request) {
	s.writeWorkbook(w, r, "orders", s.export.WriteOrders)
}

// writeWorkbook arma el archivo en memoria para poder responder un error JSON si falla.
func (s *Server) writeWorkbook(w http.ResponseWriter, r *http.Request, name string, write func(ctx context.Context, w io.Writer) error) {
	var buf bytes.Buffer
	if err := write(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.xlsx", name, time.Now().Format("20060102")))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
