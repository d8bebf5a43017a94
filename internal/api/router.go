// internal/api/router.go
//
// HTTP surface of reqschema.
//
// Context
// -------
// One chi router serves every endpoint.  Middleware order matters:
//
//  1. RequestID + RealIP     – identify the caller before anything logs.
//  2. accessLog              – one INFO line per request, status included.
//  3. Recoverer              – a panicking handler becomes a 500.
//  4. Security (+ForceHTTPS) – response headers, optional redirect.
//
// Routes
// ------
//
//	GET  /healthz               liveness, 503 until a schema path is set
//	GET  /metrics               Prometheus exposition
//	POST /v1/validate           {"data":…, "schema":…, "ajvFormatting":bool},
//	                            envelope checked by middleware.ValidateJSON
//	POST /v1/validate/{name…}   body is the data, schema loaded by file name
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/reqschema/internal/config"
	"github.com/yanizio/reqschema/internal/middleware"
	"github.com/yanizio/reqschema/internal/validator"
)

// NewRouter wires the handlers for v under the given HTTP settings.
func NewRouter(v *validator.Validator, cfg config.HTTP) http.Handler {
	h := &handlers{v: v, maxBytes: cfg.MaxBodyBytes}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	if cfg.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusNotFound, middleware.ErrorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusMethodNotAllowed, middleware.ErrorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/validate", func(r chi.Router) {
		r.With(middleware.ValidateJSON(v, validator.ByDocument(inlineEnvelope), cfg.MaxBodyBytes)).
			Post("/", h.validateInline)
		r.Post("/*", h.validateNamed)
	})

	return r
}
