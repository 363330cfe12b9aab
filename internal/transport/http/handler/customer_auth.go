package handler

import (
	"net/http"

	"github.com/go-auth-onboarding/internal/application/auth"
	"github.com/go-auth-onboarding/internal/domain"
)

// CustomerAuthHandler handles customer signup, verification and login.
type CustomerAuthHandler struct {
	svc auth.Service
}

func NewCustomerAuthHandler(svc auth.Service) *CustomerAuthHandler {
	return &CustomerAuthHandler{svc: svc}
}

func (h *CustomerAuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterCustomerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, failure{domain.ErrConflict, http.StatusConflict, "Customer already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, RegisterEnvelope{
		Message:    "Customer registered. OTP sent for email verification.",
		CustomerID: res.CustomerID,
		Token:      res.Token,
	})
}

func (h *CustomerAuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyEmailRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	customerID, err := h.svc.VerifyEmail(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err,
			failure{domain.ErrNotFound, http.StatusNotFound, "Customer not found"},
			failure{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many invalid attempts. Request a new OTP."},
			failure{domain.ErrOTPExpired, http.StatusBadRequest, "OTP expired"},
			failure{domain.ErrInvalidOTP, http.StatusBadRequest, "Invalid OTP"},
		)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Message: "Email verified successfully", CustomerID: customerID})
}

func (h *CustomerAuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req); err != nil {
		writeFailure(w, r, err,
			failure{domain.ErrNotFound, http.StatusNotFound, "Customer not found"},
			failure{domain.ErrConflict, http.StatusConflict, "Email already verified"},
		)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent for email verification."})
}

func (h *CustomerAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err,
			failure{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
			failure{domain.ErrUnverified, http.StatusForbidden, "Please verify your email before logging in."},
		)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{Token: token})
}
