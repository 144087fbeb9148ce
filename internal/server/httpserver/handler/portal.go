package handler

import "net/http"

// handleProfile handles GET /api/portal/profile.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	student, err := h.portal.Profile(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, student)
}

// handleCourses handles GET /api/portal/courses.
func (h *Handler) handleCourses(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.portal.Courses(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, enrollments)
}

// handleFees handles GET /api/portal/fees.
func (h *Handler) handleFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.portal.Fees(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, fees)
}

// handleCertificates handles GET /api/portal/certificates.
func (h *Handler) handleCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.portal.Certificates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, certs)
}

// handleChangePassword handles POST /api/portal/password.
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	message, err := h.passwords.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, MessageResponse{Message: message})
}
