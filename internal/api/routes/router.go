package routes

import (
	"net/http"

	"github.com/zatekoja/dealsearch/internal/api/handlers"
	"github.com/zatekoja/dealsearch/internal/api/middleware"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler   *handlers.SearchHandler
	trendingHandler *handlers.TrendingHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	trendingHandler *handlers.TrendingHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		searchHandler:   searchHandler,
		trendingHandler: trendingHandler,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)
	r.mux.HandleFunc("POST /api/search", r.searchHandler.SearchJSON)
	r.mux.HandleFunc("GET /api/search/suggestions", r.searchHandler.Suggestions)
	r.mux.HandleFunc("DELETE /api/search/cache", r.searchHandler.ClearCache)

	// Trending and proximity endpoints
	if r.trendingHandler != nil {
		r.mux.HandleFunc("GET /api/search/trending", r.trendingHandler.TrendingTerms)
		r.mux.HandleFunc("GET /api/businesses/nearby", r.trendingHandler.NearbyBusinesses)
		r.mux.HandleFunc("GET /api/favorites/trending", r.trendingHandler.TrendingFavorites)
		r.mux.HandleFunc("GET /api/favorites/suggestions", r.trendingHandler.FavoriteSuggestions)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflights never reach the handlers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
