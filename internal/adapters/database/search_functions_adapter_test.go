package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

func TestSearchFunctionsAdapter_NearbyBusinesses(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSearchFunctionsAdapter(client)

	mock.ExpectQuery(`FROM nearby_businesses\(lat => \$1, lng => \$2, radius_km => \$3, result_limit => \$4\)`).
		WithArgs(6.5, 3.4, 10.0, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_name", "distance_km"}).
			AddRow("b1", "Pizza Palace", 1.25))

	nearby, err := adapter.NearbyBusinesses(context.Background(), 6.5, 3.4, 10, 100)

	require.NoError(t, err)
	assert.Equal(t, []entities.NearbyBusiness{{BusinessID: "b1", Name: "Pizza Palace", DistanceKm: 1.25}}, nearby)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchFunctionsAdapter_SuggestionsFailureIsExternal(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSearchFunctionsAdapter(client)

	mock.ExpectQuery(`get_business_search_suggestions`).WillReturnError(errors.New("function does not exist"))

	_, err := adapter.BusinessSearchSuggestions(context.Background(), "pi", 10)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestSearchFunctionsAdapter_Trending(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSearchFunctionsAdapter(client)

	mock.ExpectQuery(`get_trending_search_terms\(days_back => \$1, term_limit => \$2\)`).
		WithArgs(7, 10).
		WillReturnRows(sqlmock.NewRows([]string{"term", "count"}).AddRow("pizza", 42))
	mock.ExpectQuery(`get_trending_favorites\(timeframe_days => \$1\)`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "entity_type", "name", "favorite_count"}).
			AddRow("b1", "business", "Pizza Palace", 12))
	mock.ExpectQuery(`get_favorite_suggestions\(suggestion_limit => \$1\)`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "entity_type", "name", "score"}).
			AddRow("c1", "coupon", "Pizza Discount", 0.8))

	terms, err := adapter.TrendingSearchTerms(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []entities.TrendingTerm{{Term: "pizza", Count: 42}}, terms)

	favorites, err := adapter.TrendingFavorites(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, 12, favorites[0].FavoriteCount)

	suggestions, err := adapter.FavoriteSuggestions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 0.8, suggestions[0].Score)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionAdapter_GetUserCollections(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCollectionAdapter(client)
	collectedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM "user_coupon_collections" WHERE \(\("user_id" = \$1\) AND \("coupon_id" IN \(\$2, \$3\)\)\)`).
		WithArgs("user-1", "c1", "c2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "coupon_id", "usage_count", "collected_at"}).
			AddRow("col-1", "user-1", "c1", 2, collectedAt))

	collections, err := adapter.GetUserCollections(context.Background(), "user-1", []string{"c1", "c2"})

	require.NoError(t, err)
	require.Contains(t, collections, "c1")
	assert.True(t, collections["c1"].IsUsed())
	assert.NotContains(t, collections, "c2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionAdapter_AnonymousSkipsQuery(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCollectionAdapter(client)

	collections, err := adapter.GetUserCollections(context.Background(), "", []string{"c1"})

	require.NoError(t, err)
	assert.Empty(t, collections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_LogEvent(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSearchAnalyticsAdapter(client)

	mock.ExpectExec(`INSERT INTO "search_analytics"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &entities.SearchEvent{
		SearchTerm:     "pizza",
		Filters:        json.RawMessage(`{"valid_only":true}`),
		ResultsCount:   3,
		ResponseTimeMs: 12,
		Location:       &entities.GeoPoint{Lat: 6.5, Lng: 3.4, RadiusKm: 5},
	}

	require.NoError(t, adapter.LogEvent(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchAnalyticsAdapter_LogEventFailure(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewSearchAnalyticsAdapter(client)

	mock.ExpectExec(`INSERT INTO "search_analytics"`).WillReturnError(errors.New("disk full"))

	err := adapter.LogEvent(context.Background(), &entities.SearchEvent{SearchTerm: "pizza"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}
