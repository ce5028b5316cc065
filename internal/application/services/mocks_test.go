package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) SearchWithCount(ctx context.Context, criteria repositories.CouponSearchCriteria) ([]*entities.Coupon, int, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Coupon), args.Int(1), args.Error(2)
}

func (m *MockCouponRepository) Facets(ctx context.Context, criteria repositories.CouponSearchCriteria) (*repositories.CouponFacets, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CouponFacets), args.Error(1)
}

func (m *MockCouponRepository) SuggestTitles(ctx context.Context, term string, limit int) ([]string, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) SearchWithCount(ctx context.Context, criteria repositories.BusinessSearchCriteria) ([]*entities.Business, int, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.Business), args.Int(1), args.Error(2)
}

func (m *MockBusinessRepository) Facets(ctx context.Context, criteria repositories.BusinessSearchCriteria) (*repositories.BusinessFacets, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.BusinessFacets), args.Error(1)
}

func (m *MockBusinessRepository) SuggestNames(ctx context.Context, term string, limit int) ([]string, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSearchFunctions struct {
	mock.Mock
}

func (m *MockSearchFunctions) NearbyBusinesses(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error) {
	args := m.Called(ctx, lat, lng, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.NearbyBusiness), args.Error(1)
}

func (m *MockSearchFunctions) BusinessSearchSuggestions(ctx context.Context, input string, limit int) ([]entities.RankedSuggestion, error) {
	args := m.Called(ctx, input, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RankedSuggestion), args.Error(1)
}

func (m *MockSearchFunctions) TrendingSearchTerms(ctx context.Context, daysBack, limit int) ([]entities.TrendingTerm, error) {
	args := m.Called(ctx, daysBack, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TrendingTerm), args.Error(1)
}

func (m *MockSearchFunctions) TrendingFavorites(ctx context.Context, timeframeDays int) ([]entities.TrendingFavorite, error) {
	args := m.Called(ctx, timeframeDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TrendingFavorite), args.Error(1)
}

func (m *MockSearchFunctions) FavoriteSuggestions(ctx context.Context, limit int) ([]entities.FavoriteSuggestion, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FavoriteSuggestion), args.Error(1)
}

type MockSearchAnalyticsRepository struct {
	mock.Mock
}

func (m *MockSearchAnalyticsRepository) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
