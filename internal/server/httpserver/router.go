package httpserver

import (
	"net/http"

	"github.com/harshitprakash/max-education-software-sub000/internal/core/guard"
	"github.com/harshitprakash/max-education-software-sub000/internal/server/httpserver/handler"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/logger"
	"github.com/harshitprakash/max-education-software-sub000/internal/telemetry/metric"
)

// RouterConfig holds configuration for the gateway router.
type RouterConfig struct {
	Session   handler.SessionContext
	Passwords handler.PasswordChanger
	Portal    handler.Portal
	Catalog   handler.Catalog

	// Guard gates the portal routes. It redirects to its login path.
	Guard *guard.Guard

	// LoginPath is served as the login entry point.
	LoginPath string

	Metrics *metric.Registry
	Logger  logger.Logger
}

// NewRouter creates the gateway router with all routes and middleware.
//
// Public routes: health, metrics, session, catalog, certificate
// verification and contact. Portal routes additionally pass the guard.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = guard.DefaultLoginPath
	}

	h := handler.New(handler.Config{
		Session:   cfg.Session,
		Passwords: cfg.Passwords,
		Portal:    cfg.Portal,
		Catalog:   cfg.Catalog,
		Logger:    log,
		LoginPath: loginPath,
	})

	// Order: Recover -> RequestID -> AccessLog -> [NoStore -> Guard] -> Handler
	base := []Middleware{
		Recover(log),
		RequestID(log),
		AccessLog(log, cfg.Metrics),
	}
	public := Chain(h, base...)

	guarded := append(append([]Middleware{}, base...), NoStore())
	if cfg.Guard != nil {
		guarded = append(guarded, cfg.Guard.Middleware)
	}
	portal := Chain(h, guarded...)

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", Chain(h, Recover(log), RequestID(log)))
	mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log)))

	// Session endpoints
	mux.Handle("GET "+loginPath, public)
	mux.Handle("GET /api/session", public)
	mux.Handle("POST /api/session/login", public)
	mux.Handle("POST /api/session/logout", public)

	// Public pages
	mux.Handle("GET /api/catalog", public)
	mux.Handle("GET /api/certificates/verify/{number}", public)
	mux.Handle("POST /api/contact", public)

	// Student portal
	mux.Handle("GET /api/portal/profile", portal)
	mux.Handle("GET /api/portal/courses", portal)
	mux.Handle("GET /api/portal/fees", portal)
	mux.Handle("GET /api/portal/certificates", portal)
	mux.Handle("POST /api/portal/password", portal)

	return mux
}
