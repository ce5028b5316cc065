package database

import (
	"context"
	"database/sql"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// SearchFunctionsAdapter calls the server-side search functions by named argument
type SearchFunctionsAdapter struct {
	client *postgres.Client
}

// NewSearchFunctionsAdapter creates a new adapter for the database search functions
func NewSearchFunctionsAdapter(client *postgres.Client) providers.SearchFunctions {
	return &SearchFunctionsAdapter{client: client}
}

func (a *SearchFunctionsAdapter) NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error) {
	const query = `SELECT id, business_name, distance_km
		FROM nearby_businesses(lat => $1, lng => $2, radius_km => $3, result_limit => $4)`

	results := []entities.NearbyBusiness{}
	err := a.query(ctx, "nearby_businesses", query, []interface{}{lat, lng, radiusKm, limit}, func(rows *sql.Rows) error {
		var nb entities.NearbyBusiness
		if err := rows.Scan(&nb.BusinessID, &nb.Name, &nb.DistanceKm); err != nil {
			return err
		}
		results = append(results, nb)
		return nil
	})
	return results, err
}

func (a *SearchFunctionsAdapter) BusinessSearchSuggestions(ctx context.Context, input string, limit int) ([]entities.RankedSuggestion, error) {
	const query = `SELECT suggestion, suggestion_type, search_count
		FROM get_business_search_suggestions(search_input => $1, suggestion_limit => $2)`

	results := []entities.RankedSuggestion{}
	err := a.query(ctx, "get_business_search_suggestions", query, []interface{}{input, limit}, func(rows *sql.Rows) error {
		var s entities.RankedSuggestion
		var count sql.NullInt64
		if err := rows.Scan(&s.Suggestion, &s.Type, &count); err != nil {
			return err
		}
		s.Count = int(count.Int64)
		results = append(results, s)
		return nil
	})
	return results, err
}

func (a *SearchFunctionsAdapter) TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error) {
	const query = `SELECT term, count
		FROM get_trending_search_terms(days_back => $1, term_limit => $2)`

	results := []entities.TrendingTerm{}
	err := a.query(ctx, "get_trending_search_terms", query, []interface{}{daysBack, limit}, func(rows *sql.Rows) error {
		var t entities.TrendingTerm
		if err := rows.Scan(&t.Term, &t.Count); err != nil {
			return err
		}
		results = append(results, t)
		return nil
	})
	return results, err
}

func (a *SearchFunctionsAdapter) TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error) {
	const query = `SELECT entity_id, entity_type, name, favorite_count
		FROM get_trending_favorites(timeframe_days => $1)`

	results := []entities.TrendingFavorite{}
	err := a.query(ctx, "get_trending_favorites", query, []interface{}{timeframeDays}, func(rows *sql.Rows) error {
		var f entities.TrendingFavorite
		if err := rows.Scan(&f.EntityID, &f.EntityType, &f.Name, &f.FavoriteCount); err != nil {
			return err
		}
		results = append(results, f)
		return nil
	})
	return results, err
}

func (a *SearchFunctionsAdapter) FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error) {
	const query = `SELECT entity_id, entity_type, name, score
		FROM get_favorite_suggestions(suggestion_limit => $1)`

	results := []entities.FavoriteSuggestion{}
	err := a.query(ctx, "get_favorite_suggestions", query, []interface{}{limit}, func(rows *sql.Rows) error {
		var s entities.FavoriteSuggestion
		if err := rows.Scan(&s.EntityID, &s.EntityType, &s.Name, &s.Score); err != nil {
			return err
		}
		results = append(results, s)
		return nil
	})
	return results, err
}

func (a *SearchFunctionsAdapter) query(ctx context.Context, fn, query string, args []interface{}, scan func(*sql.Rows) error) error {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewExternalError("call to "+fn+" failed", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return apperrors.NewExternalError("failed to read "+fn+" result", err)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewExternalError("failed to read "+fn+" result", err)
	}
	return nil
}
