package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/domain"
	"github.com/harshitprakash/max-education-software-sub000/internal/core/session"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// SessionContext is the reactive session the gateway serves.
// *session.Context implements it.
type SessionContext interface {
	State() session.State
	Login(ctx context.Context, identifier, password string) session.LoginResult
	Logout(ctx context.Context) error
}

// PasswordChanger changes the logged-in student's password.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, current, next, confirm string) (string, error)
}

// Portal reads the logged-in student's records.
type Portal interface {
	Profile(ctx context.Context) (*domain.Student, error)
	Courses(ctx context.Context) ([]domain.Enrollment, error)
	Fees(ctx context.Context) ([]domain.Fee, error)
	Certificates(ctx context.Context) ([]domain.Certificate, error)
}

// Catalog serves the public pages.
type Catalog interface {
	Courses(ctx context.Context) ([]domain.Course, error)
	VerifyCertificate(ctx context.Context, number string) (*domain.Certificate, error)
	SubmitContact(ctx context.Context, msg domain.ContactMessage) (string, error)
}

// Config holds the dependencies of a Handler.
type Config struct {
	Session   SessionContext
	Passwords PasswordChanger
	Portal    Portal
	Catalog   Catalog
	Logger    logger.Logger

	// LoginPath is the login entry point the guard redirects to.
	LoginPath string
}

// Handler holds the gateway endpoints. The router mounts them and applies
// the guard to the portal routes.
type Handler struct {
	session   SessionContext
	passwords PasswordChanger
	portal    Portal
	catalog   Catalog
	logger    logger.Logger
	mux       *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	h := &Handler{
		session:   cfg.Session,
		passwords: cfg.Passwords,
		portal:    cfg.Portal,
		catalog:   cfg.Catalog,
		logger:    log,
		mux:       http.NewServeMux(),
	}
	h.registerRoutes(loginPath)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes(loginPath string) {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)

	h.mux.HandleFunc("GET "+loginPath, h.handleLoginEntry)
	h.mux.HandleFunc("GET /api/session", h.handleSession)
	h.mux.HandleFunc("POST /api/session/login", h.handleLogin)
	h.mux.HandleFunc("POST /api/session/logout", h.handleLogout)

	h.mux.HandleFunc("GET /api/catalog", h.handleCatalog)
	h.mux.HandleFunc("GET /api/certificates/verify/{number}", h.handleVerifyCertificate)
	h.mux.HandleFunc("POST /api/contact", h.handleContact)

	h.mux.HandleFunc("GET /api/portal/profile", h.handleProfile)
	h.mux.HandleFunc("GET /api/portal/courses", h.handleCourses)
	h.mux.HandleFunc("GET /api/portal/fees", h.handleFees)
	h.mux.HandleFunc("GET /api/portal/certificates", h.handleCertificates)
	h.mux.HandleFunc("POST /api/portal/password", h.handleChangePassword)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeResponse(w, status, NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

// writeError writes err as an error envelope. Only the user message of the
// domain error is sent.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrorStatus(err)
	code := domain.GetErrorCode(err)
	if code == "" {
		code = domain.ErrServer.Code
	}
	if status >= http.StatusInternalServerError {
		logger.L(r.Context()).Warn("request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("X-Error-Code", code)
	writeResponse(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, domain.UserMessage(err)))
}

func writeResponse(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return domain.ErrValidation.WithDetails("Request body must be a JSON object.").WithCause(err)
	}
	return nil
}

// ErrorStatus maps an error to the HTTP status of the gateway response.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrPasswordChangeRejected),
		errors.Is(err, domain.ErrRequestRejected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLoginFailed),
		errors.Is(err, domain.ErrLoginRequired),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrRefreshRejected),
		errors.Is(err, domain.ErrNoRefreshToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCertificateNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNetwork),
		errors.Is(err, domain.ErrServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
