package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/reports"
	"github.com/go-chi/chi/v5"
)

type ReportsHandler struct {
	Reports *reports.Service
	dec     *decoder
}

func (h *ReportsHandler) Register(r chi.Router) {
	r.Get("/reports/revenue", h.revenue)
	r.Get("/reports/top-products", h.topProducts)
}

func (h *ReportsHandler) revenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.Reports.Revenue(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ReportsHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Reports.TopProducts(r.Context(), 5)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
