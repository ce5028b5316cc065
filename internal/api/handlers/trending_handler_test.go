package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dealsearch/internal/api/handlers"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

type MockTrendingService struct {
	mock.Mock
}

func (m *MockTrendingService) TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error) {
	args := m.Called(ctx, daysBack, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TrendingTerm), args.Error(1)
}

func (m *MockTrendingService) TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error) {
	args := m.Called(ctx, timeframeDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TrendingFavorite), args.Error(1)
}

func (m *MockTrendingService) FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FavoriteSuggestion), args.Error(1)
}

func (m *MockTrendingService) NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error) {
	args := m.Called(ctx, lat, lng, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.NearbyBusiness), args.Error(1)
}

func TestTrendingHandler_TrendingTerms(t *testing.T) {
	mockService := new(MockTrendingService)
	handler := handlers.NewTrendingHandler(mockService)
	mockService.On("TrendingSearchTerms", mock.Anything, 14, 5).Return([]entities.TrendingTerm{
		{Term: "pizza", Count: 42},
	}, nil)

	w := httptest.NewRecorder()
	handler.TrendingTerms(w, httptest.NewRequest(http.MethodGet, "/api/search/trending?days=14&limit=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Terms []entities.TrendingTerm `json:"terms"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "pizza", resp.Terms[0].Term)
}

func TestTrendingHandler_TrendingTermsExternalFailure(t *testing.T) {
	mockService := new(MockTrendingService)
	handler := handlers.NewTrendingHandler(mockService)
	mockService.On("TrendingSearchTerms", mock.Anything, 0, 0).
		Return(nil, apperrors.NewExternalError("get_trending_search_terms failed", errors.New("timeout")))

	w := httptest.NewRecorder()
	handler.TrendingTerms(w, httptest.NewRequest(http.MethodGet, "/api/search/trending", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to load trending terms"}`, w.Body.String())
}

func TestTrendingHandler_Favorites(t *testing.T) {
	mockService := new(MockTrendingService)
	handler := handlers.NewTrendingHandler(mockService)
	mockService.On("TrendingFavorites", mock.Anything, 30).Return([]entities.TrendingFavorite{
		{EntityID: "b-1", EntityType: "business", Name: "Luigi's", FavoriteCount: 9},
	}, nil)
	mockService.On("FavoriteSuggestions", mock.Anything, 3).Return([]entities.FavoriteSuggestion{}, nil)

	w := httptest.NewRecorder()
	handler.TrendingFavorites(w, httptest.NewRequest(http.MethodGet, "/api/favorites/trending?days=30", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"favorite_count":9`)

	w = httptest.NewRecorder()
	handler.FavoriteSuggestions(w, httptest.NewRequest(http.MethodGet, "/api/favorites/suggestions?limit=3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":[],"count":0}`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestTrendingHandler_NearbyBusinesses(t *testing.T) {
	mockService := new(MockTrendingService)
	handler := handlers.NewTrendingHandler(mockService)
	mockService.On("NearbyBusinesses", mock.Anything, 6.45, 3.39, 2.5, 0).Return([]entities.NearbyBusiness{
		{BusinessID: "b-1", Name: "Luigi's", DistanceKm: 0.4},
	}, nil)

	w := httptest.NewRecorder()
	handler.NearbyBusinesses(w, httptest.NewRequest(http.MethodGet, "/api/businesses/nearby?lat=6.45&lng=3.39&radius=2.5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"distance_km":0.4`)
}

func TestTrendingHandler_NearbyBusinessesValidation(t *testing.T) {
	mockService := new(MockTrendingService)
	handler := handlers.NewTrendingHandler(mockService)
	mockService.On("NearbyBusinesses", mock.Anything, 95.0, 3.39, 0.0, 0).
		Return(nil, apperrors.NewValidationErrorf("latitude %v out of range", 95.0))

	w := httptest.NewRecorder()
	handler.NearbyBusinesses(w, httptest.NewRequest(http.MethodGet, "/api/businesses/nearby?lng=3.39", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	handler.NearbyBusinesses(w, httptest.NewRequest(http.MethodGet, "/api/businesses/nearby?lat=95&lng=3.39", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "latitude 95 out of range")
}
