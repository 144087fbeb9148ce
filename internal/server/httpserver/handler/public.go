package handler

import (
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
)

// handleCatalog handles GET /api/catalog.
func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalog.Courses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, courses)
}

// handleVerifyCertificate handles GET /api/certificates/verify/{number}.
func (h *Handler) handleVerifyCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.catalog.VerifyCertificate(r.Context(), r.PathValue("number"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, cert)
}

// handleContact handles POST /api/contact.
func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg domain.ContactMessage
	if err := decode(r, &msg); err != nil {
		h.writeError(w, r, err)
		return
	}

	confirmation, err := h.catalog.SubmitContact(r.Context(), msg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, MessageResponse{Message: confirmation})
}
