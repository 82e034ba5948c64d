package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/customers"
	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CustomersHandler struct {
	Customers *customers.Service
	Orders    *orders.Service
	dec       *decoder
}

func (h *CustomersHandler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/history", h.history)
		a := admin(r, h.dec)
		a.Post("/", h.create)
		a.Put("/{id}", h.update)
		a.Delete("/{id}", h.delete)
	})
}

func (h *CustomersHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Customers.List(r.Context())
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CustomersHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) history(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CustomersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in customers.Input
	if !h.dec.decode(w, r, &in) {
		return
	}
	c, err := h.Customers.Create(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomersHandler) update(w http.ResponseWriter, r *http.Request) {
	var in customers.Input
	if !h.dec.decode(w, r, &in) {
		return
	}
	c, err := h.Customers.Update(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CustomersHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Customers.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}
