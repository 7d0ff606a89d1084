package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kiranshivaraju/logtrends/internal/api/handler"
	mw "github.com/kiranshivaraju/logtrends/internal/api/middleware"
	"github.com/kiranshivaraju/logtrends/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
// RateLimit and ResponseCache are optional.
type Dependencies struct {
	Analytics     handler.Analytics
	RateLimit     *mw.RateLimit
	ResponseCache *mw.ResponseCache
	CORSOrigins   []string

	// TrustForwardedFor keys rate limiting on X-Forwarded-For instead of the socket address.
	TrustForwardedFor bool

	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(deps.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	route := func(newHandler func(handler.Analytics) http.HandlerFunc) http.HandlerFunc {
		if deps.Analytics == nil {
			return orNotImplemented(nil)
		}
		return newHandler(deps.Analytics)
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.Client(deps.TrustForwardedFor))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		if deps.ResponseCache != nil {
			r.Use(deps.ResponseCache.Cache)
		}

		r.Get("/api/v1/subcategories", route(handler.NewTrendingLabelsHandler))
		r.Get("/api/v1/chart", route(handler.NewHistogramHandler))

		r.Get("/api/v1/groups", route(handler.NewGroupsHandler))
		r.Get("/api/v1/groups/chart", route(handler.NewLabelHistogramHandler))
		r.Get("/api/v1/groups/{id}", route(handler.NewGroupDetailHandler))
		r.Get("/api/v1/groups/{id}/errors", route(handler.NewGroupLogsHandler))
		r.Get("/api/v1/groups/{id}/chart", route(handler.NewGroupHistogramHandler))
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
