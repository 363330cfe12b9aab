package handler

import (
	"net/http"

	"github.com/go-auth-onboarding/internal/application/catalog"
	"github.com/go-auth-onboarding/internal/domain"
)

// ServiceHandler handles service selection and activation.
type ServiceHandler struct {
	svc catalog.Service
}

func NewServiceHandler(svc catalog.Service) *ServiceHandler {
	return &ServiceHandler{svc: svc}
}

func (h *ServiceHandler) Select(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	var req domain.SelectServiceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	svc, err := h.svc.Select(r.Context(), callerID, req)
	if err != nil {
		writeFailure(w, r, err, forbidden, failure{domain.ErrNotFound, http.StatusNotFound, "Customer not found"})
		return
	}
	writeJSON(w, http.StatusCreated, ServiceEnvelope{Message: "Service selected successfully", Service: svc})
}

func (h *ServiceHandler) Activate(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	var req domain.ActivateServiceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	svc, err := h.svc.Activate(r.Context(), callerID, req.ServiceID)
	if err != nil {
		writeFailure(w, r, err, forbidden, failure{domain.ErrNotFound, http.StatusNotFound, "Service not found"})
		return
	}
	writeJSON(w, http.StatusOK, ServiceEnvelope{Message: "Service activated successfully", Service: svc})
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	services, err := h.svc.List(r.Context(), callerID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services)
}
