package handler

import (
	"errors"
	"net/http"

	"github.com/go-auth-onboarding/internal/application/document"
	"github.com/go-auth-onboarding/internal/domain"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

// DocumentHandler handles customer document upload and retrieval.
type DocumentHandler struct {
	svc document.Service
}

func NewDocumentHandler(svc document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(document.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Document too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "document file is required")
		return
	}
	defer file.Close()

	d, err := h.svc.Upload(r.Context(), callerID, document.UploadInput{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		CustomerID:  r.URL.Query().Get("customerId"),
	})
	if err != nil {
		writeFailure(w, r, err, forbidden, failure{domain.ErrNotFound, http.StatusNotFound, "Customer not found"})
		return
	}
	writeJSON(w, http.StatusCreated, DocumentEnvelope{Message: "Document uploaded successfully", Document: d})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	docs, err := h.svc.List(r.Context(), callerID, r.URL.Query().Get("customerId"))
	if err != nil {
		writeFailure(w, r, err, forbidden)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	callerID, err := identity(r)
	if err != nil {
		writeFailure(w, r, err, unauthorized)
		return
	}
	d, url, err := h.svc.Get(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err, forbidden, failure{domain.ErrNotFound, http.StatusNotFound, "Document not found"})
		return
	}
	writeJSON(w, http.StatusOK, DocumentEnvelope{Document: d, URL: url})
}
