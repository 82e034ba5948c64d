package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type ProductsHandler struct {
	Catalog *catalog.Service
	dec     *decoder
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/attributes", h.attributes)
		a := admin(r, h.dec)
		a.Post("/", h.create)
		a.Post("/attributes", h.createAttribute)
		a.Put("/{id}", h.update)
		a.Delete("/{id}", h.delete)
	})
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.Products(r.Context())
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductsHandler) attributes(w http.ResponseWriter, r *http.Request) {
	as, err := h.Catalog.Attributes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

func (h *ProductsHandler) createAttribute(w http.ResponseWriter, r *http.Request) {
	var in catalog.AttributeInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	a, err := h.Catalog.CreateAttribute(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type CategoriesHandler struct {
	Catalog *catalog.Service
	dec     *decoder
}

func (h *CategoriesHandler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.list)
		a := admin(r, h.dec)
		a.Post("/", h.create)
		a.Put("/{id}", h.update)
		a.Delete("/{id}", h.delete)
	})
}

func (h *CategoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.Categories(r.Context())
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *CategoriesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), principal(r), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoriesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if !h.dec.decode(w, r, &in) {
		return
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), principal(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoriesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
