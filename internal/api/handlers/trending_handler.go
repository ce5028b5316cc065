package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// TrendingService exposes the trending and proximity functions
type TrendingService interface {
	TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error)
	TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error)
	FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error)
	NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error)
}

// TrendingHandler handles trending, favourites and nearby requests
type TrendingHandler struct {
	service TrendingService
}

// NewTrendingHandler creates a new trending handler
func NewTrendingHandler(service TrendingService) *TrendingHandler {
	return &TrendingHandler{service: service}
}

// TrendingTerms handles GET /api/search/trending
func (h *TrendingHandler) TrendingTerms(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r.URL.Query())
	days, limit := p.Int("days", 0), p.Int("limit", 0)
	if err := p.Err(); err != nil {
		respondWithAppError(w, r, err, "failed to load trending terms")
		return
	}

	terms, err := h.service.TrendingSearchTerms(r.Context(), days, limit)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load trending terms")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"terms": terms,
		"count": len(terms),
	})
}

// TrendingFavorites handles GET /api/favorites/trending
func (h *TrendingHandler) TrendingFavorites(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r.URL.Query())
	days := p.Int("days", 0)
	if err := p.Err(); err != nil {
		respondWithAppError(w, r, err, "failed to load trending favorites")
		return
	}

	favorites, err := h.service.TrendingFavorites(r.Context(), days)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load trending favorites")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// FavoriteSuggestions handles GET /api/favorites/suggestions
func (h *TrendingHandler) FavoriteSuggestions(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r.URL.Query())
	limit := p.Int("limit", 0)
	if err := p.Err(); err != nil {
		respondWithAppError(w, r, err, "failed to load favorite suggestions")
		return
	}

	suggestions, err := h.service.FavoriteSuggestions(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load favorite suggestions")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// NearbyBusinesses handles GET /api/businesses/nearby
func (h *TrendingHandler) NearbyBusinesses(w http.ResponseWriter, r *http.Request) {
	p := newQueryParams(r.URL.Query())
	lat, lng := p.Float("lat"), p.Float("lng")
	radius := p.Float("radius")
	limit := p.Int("limit", 0)
	if err := p.Err(); err != nil {
		respondWithAppError(w, r, err, "failed to load nearby businesses")
		return
	}
	if lat == nil || lng == nil {
		respondWithAppError(w, r, apperrors.NewValidationError("lat and lng are required"), "failed to load nearby businesses")
		return
	}

	var radiusKm float64
	if radius != nil {
		radiusKm = *radius
	}

	businesses, err := h.service.NearbyBusinesses(r.Context(), *lat, *lng, radiusKm, limit)
	if err != nil {
		respondWithAppError(w, r, err, "failed to load nearby businesses")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"count":      len(businesses),
	})
}
