package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

type businessRepository struct {
	store *Store
}

// Businesses returns the store's BusinessRepository
func (s *Store) Businesses() repositories.BusinessRepository {
	return &businessRepository{store: s}
}

func (r *businessRepository) SearchWithCount(_ context.Context, criteria repositories.BusinessSearchCriteria) ([]*entities.Business, int, error) {
	r.store.mu.RLock()
	matches := r.store.matchBusinesses(criteria)
	r.store.mu.RUnlock()

	sortBusinesses(matches, criteria.Sort)

	paged := page(matches, criteria.Limit, criteria.Offset)
	out := make([]*entities.Business, len(paged))
	for i, b := range paged {
		cp := *b
		cp.Coupons = append([]entities.BusinessCoupon(nil), b.Coupons...)
		out[i] = &cp
	}
	return out, len(matches), nil
}

func (r *businessRepository) Facets(_ context.Context, criteria repositories.BusinessSearchCriteria) (*repositories.BusinessFacets, error) {
	r.store.mu.RLock()
	matches := r.store.matchBusinesses(criteria)
	r.store.mu.RUnlock()

	types := map[string]int{}
	cities := map[string]int{}
	for _, b := range matches {
		types[b.BusinessType]++
		cities[b.City]++
	}

	return &repositories.BusinessFacets{
		BusinessTypes: facetCounts(types),
		Locations:     facetCounts(cities),
	}, nil
}

func (r *businessRepository) SuggestNames(_ context.Context, term string, limit int) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	names := []string{}
	for _, b := range r.store.businesses {
		if containsFold(b.Name, term) {
			names = append(names, b.Name)
		}
	}
	sort.Strings(names)
	return page(names, limit, 0), nil
}

func (s *Store) matchBusinesses(criteria repositories.BusinessSearchCriteria) []*entities.Business {
	ids := idSet(criteria.BusinessIDs)
	matches := []*entities.Business{}

	for _, b := range s.businesses {
		if ids != nil && !ids[b.ID] {
			continue
		}
		if text := criteria.Text; text != "" &&
			!containsFold(b.Name, text) && !containsFold(b.Description, text) &&
			!containsFold(b.BusinessType, text) && !containsFold(b.Address, text) {
			continue
		}
		if criteria.BusinessName != "" && !containsFold(b.Name, criteria.BusinessName) {
			continue
		}
		if len(criteria.Categories) > 0 && !contains(criteria.Categories, b.BusinessType) {
			continue
		}
		if len(criteria.Tags) > 0 && !overlaps(b.Tags, criteria.Tags) {
			continue
		}
		matches = append(matches, b)
	}
	return matches
}

func sortBusinesses(businesses []*entities.Business, sortBy entities.SearchSort) {
	desc := sortBy.Order == entities.SortDesc

	sort.SliceStable(businesses, func(i, j int) bool {
		a, b := businesses[i], businesses[j]

		var cmp int
		switch sortBy.Field {
		case entities.SortByBusinessName:
			cmp = strings.Compare(a.Name, b.Name)
			if desc {
				cmp = -cmp
			}
		case entities.SortByCreatedAt:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
			if desc {
				cmp = -cmp
			}
		default:
			if cmp = compareRatingsDesc(a.Rating, b.Rating); cmp == 0 {
				cmp = b.CreatedAt.Compare(a.CreatedAt)
			}
		}
		if cmp != 0 {
			return cmp < 0
		}

		if cmp = strings.Compare(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
}

// compareRatingsDesc orders higher ratings first and missing ratings last
func compareRatingsDesc(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}
