package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
)

type cartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

func writeCart(w http.ResponseWriter, cart domain.Cart) {
	writeOK(w, http.StatusOK, map[string]any{"cart": cart})
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.Get(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

// apiCartCount devuelve 0 para anónimos.
func (s *Server) apiCartCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.carts.Count(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"count": n})
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.carts.Add(r.Context(), userFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.carts.Update(r.Context(), userFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	pid, err := uuidParam(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.carts.Remove(r.Context(), userFrom(r.Context()), pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, cart)
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	if err := s.carts.Clear(r.Context(), userFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, domain.NewCart(nil))
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	var req usecase.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.Checkout(r.Context(), userFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"order": o, "message": "order created"})
}

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.orders.ListForUser(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"orders": list})
}

func (s *Server) apiOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.GetForUser(r.Context(), userFrom(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"order": o})
}
