package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/inventory"
	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	Inventory *inventory.Service
	dec       *decoder
}

func (h *InventoryHandler) Register(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.list)
		admin(r, h.dec).Post("/import", h.importStock)
	})
}

func (h *InventoryHandler) list(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Inventory.List(r.Context(), r.URL.Query().Get("productId"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *InventoryHandler) importStock(w http.ResponseWriter, r *http.Request) {
	var in inventory.ImportInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	e, err := h.Inventory.Import(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}
