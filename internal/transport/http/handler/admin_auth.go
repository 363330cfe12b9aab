package handler

import (
	"net/http"

	"github.com/go-auth-onboarding/internal/application/admin"
	"github.com/go-auth-onboarding/internal/domain"
)

// AdminAuthHandler handles admin registration and login. Its failures answer
// 400 for duplicates and bad credentials, unlike the customer endpoints.
type AdminAuthHandler struct {
	svc admin.Service
}

func NewAdminAuthHandler(svc admin.Service) *AdminAuthHandler {
	return &AdminAuthHandler{svc: svc}
}

func (h *AdminAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterAdminRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	a, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, failure{domain.ErrConflict, http.StatusBadRequest, "Admin already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, AdminEnvelope{Admin: a})
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, failure{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: token})
}
