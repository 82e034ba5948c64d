package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-retail-backoffice/internal/orders"
	"github.com/ariefcatur/go-retail-backoffice/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type OrdersHandler struct {
	Orders      *orders.Service
	Idempotency *redisx.Idempotency
	Log         logrus.FieldLogger
	dec         *decoder
}

type CreateOrderResp struct {
	orders.Receipt
	Idempotent bool `json:"idempotent"`
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}/details", h.details)
		a := admin(r, h.dec)
		a.Post("/", h.createOrder)
		a.Put("/{id}", h.updateStatus)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateInput
	if !h.dec.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Idempotency-Key opsional; tanpa Redis header diabaikan
	key := r.Header.Get("Idempotency-Key")
	if h.Idempotency == nil {
		key = ""
	}
	if key != "" {
		stored, found, err := h.Idempotency.Begin(ctx, key)
		switch {
		case errors.Is(err, redisx.ErrInFlight):
			h.dec.fail(w, r, err)
			return
		case err != nil:
			h.Log.WithError(err).Warn("idempotency store unavailable, continuing without it")
			key = ""
		case found:
			var resp CreateOrderResp
			if err := json.Unmarshal(stored, &resp); err == nil {
				resp.Idempotent = true
				writeJSON(w, http.StatusOK, resp)
				return
			}
			h.Log.WithField("key", key).Warn("unreadable idempotent response, creating a new order")
			key = ""
		}
	}

	receipt, err := h.Orders.Create(ctx, principal(r), req)
	if err != nil {
		if key != "" {
			if rerr := h.Idempotency.Release(context.WithoutCancel(ctx), key); rerr != nil {
				h.Log.WithError(rerr).Warn("release idempotency key")
			}
		}
		h.dec.fail(w, r, err)
		return
	}

	resp := CreateOrderResp{Receipt: receipt}
	if key != "" {
		b, _ := json.Marshal(resp)
		if err := h.Idempotency.Complete(context.WithoutCancel(ctx), key, b); err != nil {
			h.Log.WithError(err).WithField("order_id", receipt.OrderID).Warn("store idempotent response")
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if !h.dec.decode(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), principal(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Orders.List(ctx)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) details(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	d, err := h.Orders.Details(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
