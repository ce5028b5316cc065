package providers

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// SearchFunctions are the server-side database functions the search delegates to.
// Their internals (geo distance, ranking) live in the database.
type SearchFunctions interface {
	// NearbyBusinesses calls nearby_businesses(lat, lng, radius_km, result_limit)
	NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error)

	// BusinessSearchSuggestions calls get_business_search_suggestions(search_input, suggestion_limit)
	BusinessSearchSuggestions(ctx context.Context, input string, limit int) ([]entities.RankedSuggestion, error)

	// TrendingSearchTerms calls get_trending_search_terms(days_back, term_limit)
	TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error)

	// TrendingFavorites calls get_trending_favorites(timeframe_days)
	TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error)

	// FavoriteSuggestions calls get_favorite_suggestions(suggestion_limit)
	FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error)
}
