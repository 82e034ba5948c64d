package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/promotions"
	"github.com/go-chi/chi/v5"
)

type PromotionsHandler struct {
	Promotions *promotions.Service
	dec        *decoder
}

func (h *PromotionsHandler) Register(r chi.Router) {
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", h.list)
		a := admin(r, h.dec)
		a.Post("/", h.create)
		a.Put("/{id}", h.update)
		a.Delete("/{id}", h.delete)
	})
}

func (h *PromotionsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Promotions.List(r.Context())
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *PromotionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in promotions.Input
	if !h.dec.decode(w, r, &in) {
		return
	}
	p, err := h.Promotions.Create(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PromotionsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in promotions.Input
	if !h.dec.decode(w, r, &in) {
		return
	}
	p, err := h.Promotions.Update(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PromotionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Promotions.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "promotion deleted"})
}
