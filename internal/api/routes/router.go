package routes

import (
	"net/http"

	"github.com/teewatch/teewatch/internal/api/handlers"
	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	teeoffHandler *handlers.TeeOffHandler
	searchHandler *handlers.SearchHandler
	courseHandler *handlers.CourseHandler
	alertHandler  *handlers.AlertHandler
	watchHandler  *handlers.WatchHandler
	authHandler   *handlers.AuthHandler

	authMiddleware  *middleware.AuthMiddleware
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	teeoffHandler *handlers.TeeOffHandler,
	searchHandler *handlers.SearchHandler,
	courseHandler *handlers.CourseHandler,
	alertHandler *handlers.AlertHandler,
	watchHandler *handlers.WatchHandler,
	authHandler *handlers.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		teeoffHandler:   teeoffHandler,
		searchHandler:   searchHandler,
		courseHandler:   courseHandler,
		alertHandler:    alertHandler,
		watchHandler:    watchHandler,
		authHandler:     authHandler,
		authMiddleware:  authMiddleware,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Raw provider proxy endpoints
	r.mux.HandleFunc("GET /api/teeoff", r.teeoffHandler.GeoCity)
	r.mux.HandleFunc("POST /api/tee-times", r.teeoffHandler.SearchTeeTimes)

	// Normalized search endpoints
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)
	r.mux.HandleFunc("GET /api/search/stream", r.searchHandler.Stream)

	// Course catalog endpoints
	r.mux.HandleFunc("GET /api/courses", r.courseHandler.ListCourses)
	r.mux.HandleFunc("GET /api/courses/{id}", r.courseHandler.GetCourse)

	// Alert rule endpoints (authenticated)
	r.mux.Handle("POST /api/alerts", r.requireAuth(r.alertHandler.CreateAlert))
	r.mux.Handle("GET /api/alerts", r.requireAuth(r.alertHandler.ListAlerts))
	r.mux.Handle("PATCH /api/alerts/{id}", r.requireAuth(r.alertHandler.SetAlertActive))
	r.mux.Handle("DELETE /api/alerts/{id}", r.requireAuth(r.alertHandler.DeleteAlert))

	// Watch endpoints; status fails open for anonymous callers
	r.mux.Handle("GET /api/watches/status", r.optionalAuth(r.watchHandler.CheckStatus))
	r.mux.Handle("POST /api/watches/statuses", r.optionalAuth(r.watchHandler.Statuses))
	r.mux.Handle("POST /api/watches/toggle", r.requireAuth(r.watchHandler.Toggle))
	r.mux.Handle("GET /api/watches", r.requireAuth(r.watchHandler.ListWatches))

	// Auth proxy endpoints
	r.mux.HandleFunc("POST /api/auth/signin", r.authHandler.SignIn)
	r.mux.HandleFunc("POST /api/auth/signout", r.authHandler.SignOut)
	r.mux.HandleFunc("POST /api/auth/recover", r.authHandler.Recover)
	r.mux.Handle("GET /api/auth/session", r.optionalAuth(r.authHandler.Session))

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) requireAuth(h http.HandlerFunc) http.Handler {
	if r.authMiddleware == nil {
		return h
	}
	return r.authMiddleware.Required(h)
}

func (r *Router) optionalAuth(h http.HandlerFunc) http.Handler {
	if r.authMiddleware == nil {
		return h
	}
	return r.authMiddleware.Optional(h)
}
