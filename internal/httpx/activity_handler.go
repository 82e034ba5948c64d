package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-retail-backoffice/internal/activity"
	"github.com/go-chi/chi/v5"
)

type ActivityHandler struct {
	Store *activity.Store
	dec   *decoder
}

func (h *ActivityHandler) Register(r chi.Router) {
	admin(r, h.dec).Get("/activity", h.list)
}

func (h *ActivityHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 1000 {
		limit = 1000
	}
	es, err := h.Store.List(r.Context(), limit)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}
