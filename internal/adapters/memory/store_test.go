package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

func loadFixtures(t *testing.T) *Store {
	t.Helper()
	store, err := LoadFile("testdata/fixtures.json")
	require.NoError(t, err)
	return store
}

func TestLoadFile_LinksCouponsToBusinesses(t *testing.T) {
	store := loadFixtures(t)

	coupons, total, err := store.Coupons().SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Text:  "pastry",
		Limit: 10,
		Now:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, coupons, 1)
	assert.Equal(t, "Morning Brew", coupons[0].Business.Name)
	require.NotNil(t, coupons[0].MinPurchaseAmount)
	assert.Equal(t, "3.5", coupons[0].MinPurchaseAmount.String())
}

func TestCouponSearch_ValidOnlyDropsExpired(t *testing.T) {
	store := loadFixtures(t)

	coupons, total, err := store.Coupons().SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Text:    "pizza",
		Filters: entities.SearchFilters{ValidOnly: true},
		Limit:   20,
		Now:     time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, coupons, 1)
	assert.Equal(t, "c-pizza-active", coupons[0].ID)
}

func TestCouponSearch_RelevanceOrderingAndPaging(t *testing.T) {
	store := loadFixtures(t)
	criteria := repositories.CouponSearchCriteria{
		Sort:  entities.SearchSort{Field: entities.SortByRelevance, Order: entities.SortDesc},
		Limit: 2,
		Now:   time.Now(),
	}

	first, total, err := store.Coupons().SearchWithCount(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, first, 2)
	assert.Equal(t, "c-pizza-expired", first[0].ID, "highest collection count first")
	assert.Equal(t, "c-pizza-active", first[1].ID)

	criteria.Offset = 2
	second, _, err := store.Coupons().SearchWithCount(context.Background(), criteria)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "c-coffee", second[0].ID)
}

func TestCouponSearch_SortByDiscountAscending(t *testing.T) {
	store := loadFixtures(t)

	coupons, _, err := store.Coupons().SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Sort:  entities.SearchSort{Field: entities.SortByDiscountValue, Order: entities.SortAsc},
		Limit: 10,
		Now:   time.Now(),
	})

	require.NoError(t, err)
	require.Len(t, coupons, 3)
	assert.Equal(t, []string{"c-coffee", "c-pizza-active", "c-pizza-expired"},
		[]string{coupons[0].ID, coupons[1].ID, coupons[2].ID})
}

func TestCouponSearch_UserExclusions(t *testing.T) {
	store := loadFixtures(t)

	coupons, _, err := store.Coupons().SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Filters: entities.SearchFilters{ExcludeUsed: true},
		UserID:  "user-ada",
		Limit:   10,
		Now:     time.Now(),
	})
	require.NoError(t, err)
	for _, c := range coupons {
		assert.NotEqual(t, "c-coffee", c.ID)
	}

	anonymous, _, err := store.Coupons().SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Filters: entities.SearchFilters{ExcludeUsed: true},
		Limit:   10,
		Now:     time.Now(),
	})
	require.NoError(t, err)
	assert.Len(t, anonymous, 3, "exclusions need a user")
}

func TestCouponFacets(t *testing.T) {
	store := loadFixtures(t)

	facets, err := store.Coupons().Facets(context.Background(), repositories.CouponSearchCriteria{Now: time.Now()})

	require.NoError(t, err)
	assert.Len(t, facets.CouponTypes, 3)
	assert.Contains(t, facets.DiscountRanges, entities.FacetCount{Value: "0-10", Count: 1})
	assert.Contains(t, facets.DiscountRanges, entities.FacetCount{Value: "10-25", Count: 1})
	assert.Contains(t, facets.DiscountRanges, entities.FacetCount{Value: "50+", Count: 1})
	assert.Equal(t, []entities.FacetCount{{Value: "later", Count: 2}, {Value: "expired", Count: 1}}, facets.Validity)
}

func TestBusinessSearch_KeepsBusinessesWithoutActiveCoupons(t *testing.T) {
	store := loadFixtures(t)

	businesses, total, err := store.Businesses().SearchWithCount(context.Background(), repositories.BusinessSearchCriteria{
		Limit: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, businesses, 3)
	assert.Equal(t, "b-luigi", businesses[0].ID, "highest rating first")
	assert.Equal(t, "b-gear", businesses[2].ID, "missing rating last")
	assert.Empty(t, businesses[2].Coupons)
	assert.Len(t, businesses[0].Coupons, 2)
}

func TestBusinessFacets(t *testing.T) {
	store := loadFixtures(t)

	facets, err := store.Businesses().Facets(context.Background(), repositories.BusinessSearchCriteria{})

	require.NoError(t, err)
	assert.Equal(t, []entities.FacetCount{{Value: "Lagos", Count: 2}, {Value: "Abuja", Count: 1}}, facets.Locations)
	assert.Len(t, facets.BusinessTypes, 3)
}

func TestNearbyBusinesses(t *testing.T) {
	store := loadFixtures(t)

	nearby, err := store.Functions().NearbyBusinesses(context.Background(), 6.4541, 3.3947, 25, 10)

	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, "b-luigi", nearby[0].BusinessID)
	assert.Zero(t, nearby[0].DistanceKm)
	assert.Equal(t, "b-brew", nearby[1].BusinessID)
	assert.InDelta(t, 17.0, nearby[1].DistanceKm, 1.5)
}

func TestSuggestions(t *testing.T) {
	store := loadFixtures(t)
	ctx := context.Background()

	titles, err := store.Coupons().SuggestTitles(ctx, "pizza", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza Discount"}, titles, "only active coupons")

	names, err := store.Businesses().SuggestNames(ctx, "brew", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning Brew"}, names)

	ranked, err := store.Functions().BusinessSearchSuggestions(ctx, "rest", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "category", ranked[0].Type)
}

func TestAnalyticsAndTrending(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := loadFixtures(t).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for _, term := range []string{"pizza", "Pizza", "coffee"} {
		require.NoError(t, store.Analytics().LogEvent(ctx, &entities.SearchEvent{SearchTerm: term}))
	}
	require.NoError(t, store.Analytics().LogEvent(ctx, &entities.SearchEvent{
		SearchTerm: "shoes",
		CreatedAt:  now.AddDate(0, 0, -30),
	}))

	terms, err := store.Functions().TrendingSearchTerms(ctx, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []entities.TrendingTerm{{Term: "pizza", Count: 2}, {Term: "coffee", Count: 1}}, terms)
	assert.Len(t, store.Events(), 4)

	suggestions, err := store.Functions().FavoriteSuggestions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Luigi's Pizzeria", suggestions[0].Name)

	store.FailAnalytics = errors.New("insert rejected")
	assert.Error(t, store.Analytics().LogEvent(ctx, &entities.SearchEvent{SearchTerm: "x"}))
}
