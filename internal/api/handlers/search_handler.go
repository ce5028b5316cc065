package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/dealsearch/internal/api/middleware"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

const maxSearchBodyBytes = 1 << 20

// SearchService is the orchestrator surface the handler depends on
type SearchService interface {
	Search(ctx context.Context, query entities.SearchQuery, userID string) (*entities.SearchResult, error)
	Suggest(ctx context.Context, term string) []entities.SearchSuggestion
	ClearCache(ctx context.Context) error
}

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	service SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(newQueryParams(r.URL.Query()))
	if err != nil {
		respondWithAppError(w, r, err, "search failed")
		return
	}
	h.run(w, r, query)
}

// SearchJSON handles POST /api/search with a SearchQuery body
func (h *SearchHandler) SearchJSON(w http.ResponseWriter, r *http.Request) {
	var query entities.SearchQuery

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&query); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid search body")
		return
	}
	h.run(w, r, query)
}

func (h *SearchHandler) run(w http.ResponseWriter, r *http.Request, query entities.SearchQuery) {
	result, err := h.service.Search(r.Context(), query, r.Header.Get(middleware.UserIDHeader))
	if err != nil {
		respondWithAppError(w, r, err, "search failed")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// Suggestions handles GET /api/search/suggestions
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := h.service.Suggest(r.Context(), r.URL.Query().Get("q"))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// ClearCache handles DELETE /api/search/cache
func (h *SearchHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context()); err != nil {
		respondWithAppError(w, r, err, "failed to clear search cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseSearchQuery(p *queryParams) (entities.SearchQuery, error) {
	query := entities.SearchQuery{
		Text: p.String("q"),
		Sort: entities.SearchSort{
			Field: entities.SortField(p.String("sort")),
			Order: entities.SortOrder(p.String("order")),
		},
		Pagination: entities.Pagination{
			Page:  p.Int("page", 0),
			Limit: p.Int("limit", 0),
		},
		Filters: entities.SearchFilters{
			CouponTypes:      listOf[entities.CouponType](p.List("coupon_types")),
			DiscountTypes:    listOf[entities.DiscountType](p.List("discount_types")),
			MinDiscount:      p.Float("min_discount"),
			MaxDiscount:      p.Float("max_discount"),
			MinPurchase:      p.Float("min_purchase"),
			MaxPurchase:      p.Float("max_purchase"),
			Statuses:         listOf[entities.CouponStatus](p.List("statuses")),
			ValidOnly:        p.Flag("valid_only"),
			ValidAfter:       p.Time("valid_after"),
			ValidBefore:      p.Time("valid_before"),
			TargetAudiences:  listOf[entities.TargetAudience](p.List("audiences")),
			BusinessName:     p.String("business_name"),
			IsPublic:         p.Bool("public"),
			Tags:             p.List("tags"),
			Categories:       p.List("categories"),
			ExcludeCollected: p.Flag("exclude_collected"),
			ExcludeUsed:      p.Flag("exclude_used"),
		},
	}

	lat, lng := p.Float("lat"), p.Float("lng")
	switch {
	case lat != nil && lng != nil:
		radius := p.Float("radius")
		query.Location = &entities.GeoPoint{Lat: *lat, Lng: *lng, RadiusKm: 10}
		if radius != nil {
			query.Location.RadiusKm = *radius
		}
	case lat != nil || lng != nil:
		if p.Err() == nil {
			return query, apperrors.NewValidationError("lat and lng must be given together")
		}
	}

	return query, p.Err()
}
