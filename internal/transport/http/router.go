package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "idverify/internal/identity/handler"
	"idverify/internal/region"
	regionhandler "idverify/internal/region/handler"
	"idverify/pkg/platform/middleware/admin"
	"idverify/pkg/platform/middleware/metadata"
	"idverify/pkg/platform/middleware/request"
	"idverify/pkg/platform/middleware/requesttime"
	"idverify/pkg/requestcontext"
)

// Deps is everything the router mounts.
type Deps struct {
	Identity   *identityhandler.Handler
	Regions    *regionhandler.Handler
	Holder     *region.Holder
	Stale      func() bool
	Checks     map[string]Checker
	Gatherer   prometheus.Gatherer
	AdminToken string
	Logger     *slog.Logger
}

// NewRouter wires middleware, the API handlers, /health and /metrics.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(metadata.ClientIP)
	r.Use(requesttime.Middleware)
	r.Use(accessLog(d.Logger))

	r.Get("/health", healthHandler(d.Holder, d.Stale, d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	d.Identity.Register(r)
	d.Regions.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
		d.Regions.RegisterAdmin(r)
	})
	return r
}

// accessLog writes one line per request.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"request_id", requestcontext.RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", metadata.GetClientIP(r.Context()),
			)
		})
	}
}
