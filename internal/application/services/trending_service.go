package services

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

const (
	DefaultTrendingDays          = 7
	DefaultTrendingTermLimit     = 10
	DefaultFavoriteSuggestions   = 10
	DefaultNearbyRadiusKm        = 10.0
	defaultNearbyBusinessesLimit = 50
)

// TrendingService exposes the trending, favourites and nearby database functions
type TrendingService struct {
	functions providers.SearchFunctions
}

func NewTrendingService(functions providers.SearchFunctions) *TrendingService {
	return &TrendingService{functions: functions}
}

func (s *TrendingService) TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error) {
	if daysBack <= 0 {
		daysBack = DefaultTrendingDays
	}
	if limit <= 0 {
		limit = DefaultTrendingTermLimit
	}
	return s.functions.TrendingSearchTerms(ctx, daysBack, limit)
}

func (s *TrendingService) TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error) {
	if timeframeDays <= 0 {
		timeframeDays = DefaultTrendingDays
	}
	return s.functions.TrendingFavorites(ctx, timeframeDays)
}

func (s *TrendingService) FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error) {
	if limit <= 0 {
		limit = DefaultFavoriteSuggestions
	}
	return s.functions.FavoriteSuggestions(ctx, limit)
}

// NearbyBusinesses validates the origin before delegating
func (s *TrendingService) NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error) {
	if lat < -90 || lat > 90 {
		return nil, apperrors.NewValidationErrorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return nil, apperrors.NewValidationErrorf("longitude %v out of range", lng)
	}
	if radiusKm < 0 {
		return nil, apperrors.NewValidationError("radius must be positive")
	}
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if limit <= 0 {
		limit = defaultNearbyBusinessesLimit
	}
	return s.functions.NearbyBusinesses(ctx, lat, lng, radiusKm, limit)
}
