package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-retail-backoffice/internal/auth"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Auth *auth.Service
	dec  *decoder
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type resetReq struct {
	Email string `json:"email" validate:"required,email"`
}

// RegisterPublic mounts the routes that need no token.
func (h *AuthHandler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/reset-password", h.resetPassword)
}

func (h *AuthHandler) Register(r chi.Router) {
	admin(r, h.dec).Post("/auth/register", h.register)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !h.dec.decode(w, r, &req) {
		return
	}
	s, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if !h.dec.decode(w, r, &req) {
		return
	}
	u, err := h.Auth.Register(r.Context(), principal(r), req)
	if err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// resetPassword answers the same way whether or not the email is known.
func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if !h.dec.decode(w, r, &req) {
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), req.Email); err != nil {
		h.dec.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the email is registered, a new password has been sent"})
}
