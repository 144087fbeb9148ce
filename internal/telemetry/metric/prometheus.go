package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "maxedu"

// Refresh outcomes.
const (
	RefreshSuccess   = "success"
	RefreshRejected  = "rejected"
	RefreshNetwork   = "network"
	RefreshNoToken   = "no_token"
	RefreshCancelled = "cancelled"
)

// Session end reasons.
const (
	EndSessionExpired = "session_expired"
	EndUnauthorized   = "unauthorized"
	EndLogout         = "logout"
)

// Registry holds all application metrics.
//
// A nil *Registry is valid; every method on it is a no-op.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RefreshTotal    *prometheus.CounterVec
	RefreshWaiters  prometheus.Gauge
	SessionEnds     *prometheus.CounterVec
	LoginsTotal     *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with the Go and process collectors and
// all client metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend requests issued, by method and status class.",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_total",
			Help:      "Token refresh exchanges, by outcome.",
		}, []string{"outcome"}),
		RefreshWaiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_waiters",
			Help:      "Callers currently waiting on the in-flight refresh.",
		}),
		SessionEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "ends_total",
			Help:      "Sessions ended, by reason.",
		}, []string{"reason"}),
		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts, by result.",
		}, []string{"result"}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway requests served, by route and status code.",
		}, []string{"route", "code"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.RefreshTotal,
		r.RefreshWaiters,
		r.SessionEnds,
		r.LoginsTotal,
		r.GatewayRequests,
		r.GatewayDuration,
	)

	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns the /metrics handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Prometheus returns the underlying registry for extra collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRequest records one backend round-trip.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveRefresh records the outcome of one refresh exchange.
func (r *Registry) ObserveRefresh(outcome string) {
	if r == nil {
		return
	}
	r.RefreshTotal.WithLabelValues(outcome).Inc()
}

// SetRefreshWaiters publishes the number of callers blocked on a refresh.
func (r *Registry) SetRefreshWaiters(n int) {
	if r == nil {
		return
	}
	r.RefreshWaiters.Set(float64(n))
}

// ObserveSessionEnd records a terminated session.
func (r *Registry) ObserveSessionEnd(reason string) {
	if r == nil {
		return
	}
	r.SessionEnds.WithLabelValues(reason).Inc()
}

// ObserveLogin records a login attempt.
func (r *Registry) ObserveLogin(success bool) {
	if r == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	r.LoginsTotal.WithLabelValues(result).Inc()
}

// ObserveGateway records one request served by the gateway.
func (r *Registry) ObserveGateway(route string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.GatewayRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.GatewayDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// StatusClass collapses an HTTP status into "2xx", "4xx" and so on.
// Zero means the request never produced a response.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
