package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-auth-onboarding/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Every error body uses it.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// RegisterEnvelope wraps the customer registration response.
type RegisterEnvelope struct {
	Message    string `json:"message"`
	CustomerID string `json:"customerId"`
	Token      string `json:"token"`
}

// VerifyEnvelope wraps the email verification response.
type VerifyEnvelope struct {
	Message    string `json:"message"`
	CustomerID string `json:"customerId"`
}

// TokenEnvelope wraps login responses.
type TokenEnvelope struct {
	Token string `json:"token"`
}

type AdminEnvelope struct {
	Admin *domain.Admin `json:"admin"`
}

type ServiceEnvelope struct {
	Message string          `json:"message"`
	Service *domain.Service `json:"service"`
}

type DocumentEnvelope struct {
	Message  string           `json:"message,omitempty"`
	Document *domain.Document `json:"document"`
	URL      string           `json:"url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}
