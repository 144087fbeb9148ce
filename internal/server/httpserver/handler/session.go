package handler

import (
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/session"
)

// handleSession handles GET /api/session.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	h.writeJSON(w, r, http.StatusOK, SessionResponse{
		Authenticated: state.IsAuthenticated,
		Loading:       state.IsLoading,
		User:          state.User,
	})
}

// handleLogin handles POST /api/session/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result := h.session.Login(r.Context(), req.Identifier, req.Password)
	if !result.Success {
		h.writeError(w, r, loginError(result))
		return
	}

	h.writeJSON(w, r, http.StatusOK, SessionResponse{
		Authenticated: true,
		User:          result.User,
	})
}

// loginError rebuilds the domain error of a failed login from its code, so
// the response status follows the error kind rather than its wording.
func loginError(result session.LoginResult) error {
	code := result.Code
	if code == "" {
		code = domain.ErrServer.Code
	}
	return domain.NewDomainError(code, result.Error)
}

// handleLogout handles POST /api/session/logout.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, SessionResponse{})
}

// handleLoginEntry handles GET on the login path, where the guard sends
// visitors of protected routes.
func (h *Handler) handleLoginEntry(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Log in with POST /api/session/login.",
		"next":    r.URL.Query().Get("next"),
	})
}
