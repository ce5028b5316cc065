package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

type couponRepository struct {
	store *Store
}

// Coupons returns the store's CouponRepository
func (s *Store) Coupons() repositories.CouponRepository {
	return &couponRepository{store: s}
}

func (r *couponRepository) SearchWithCount(_ context.Context, criteria repositories.CouponSearchCriteria) ([]*entities.Coupon, int, error) {
	r.store.mu.RLock()
	matches := r.store.matchCoupons(criteria)
	r.store.mu.RUnlock()

	sortCoupons(matches, criteria.Sort)

	paged := page(matches, criteria.Limit, criteria.Offset)
	out := make([]*entities.Coupon, len(paged))
	for i, c := range paged {
		cp := *c
		out[i] = &cp
	}
	return out, len(matches), nil
}

func (r *couponRepository) Facets(_ context.Context, criteria repositories.CouponSearchCriteria) (*repositories.CouponFacets, error) {
	r.store.mu.RLock()
	matches := r.store.matchCoupons(criteria)
	r.store.mu.RUnlock()

	types := map[string]int{}
	ranges := map[string]int{}
	validity := map[string]int{}
	for _, c := range matches {
		types[string(c.CouponType)]++
		ranges[discountRange(c.DiscountValue.InexactFloat64())]++
		validity[validityBucket(c.ValidUntil, criteria.Now)]++
	}

	return &repositories.CouponFacets{
		CouponTypes:    facetCounts(types),
		DiscountRanges: facetCounts(ranges),
		Validity:       facetCounts(validity),
	}, nil
}

func (r *couponRepository) SuggestTitles(_ context.Context, term string, limit int) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var active []*entities.Coupon
	for _, c := range r.store.coupons {
		if c.Status == entities.CouponStatusActive && containsFold(c.Title, term) {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CollectionCount != active[j].CollectionCount {
			return active[i].CollectionCount > active[j].CollectionCount
		}
		return active[i].Title < active[j].Title
	})

	titles := []string{}
	for _, c := range page(active, limit, 0) {
		titles = append(titles, c.Title)
	}
	return titles, nil
}

func (s *Store) matchCoupons(criteria repositories.CouponSearchCriteria) []*entities.Coupon {
	ids := idSet(criteria.BusinessIDs)
	matches := []*entities.Coupon{}
	for _, c := range s.coupons {
		if ids != nil && !ids[c.BusinessID] {
			continue
		}
		if s.couponMatches(c, criteria) {
			matches = append(matches, c)
		}
	}
	return matches
}

func (s *Store) couponMatches(c *entities.Coupon, criteria repositories.CouponSearchCriteria) bool {
	f := criteria.Filters

	if text := criteria.Text; text != "" &&
		!containsFold(c.Title, text) && !containsFold(c.Description, text) &&
		!containsFold(c.Business.Name, text) && !containsFold(c.Business.Description, text) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, c.Status) {
		return false
	}
	if f.ValidOnly && !c.ValidUntil.After(criteria.Now) {
		return false
	}
	if len(f.CouponTypes) > 0 && !contains(f.CouponTypes, c.CouponType) {
		return false
	}
	if len(f.DiscountTypes) > 0 && !contains(f.DiscountTypes, c.DiscountType) {
		return false
	}

	discount := c.DiscountValue.InexactFloat64()
	if f.MinDiscount != nil && discount < *f.MinDiscount {
		return false
	}
	if f.MaxDiscount != nil && discount > *f.MaxDiscount {
		return false
	}
	if f.MinPurchase != nil || f.MaxPurchase != nil {
		if c.MinPurchaseAmount == nil {
			return false
		}
		purchase := c.MinPurchaseAmount.InexactFloat64()
		if f.MinPurchase != nil && purchase < *f.MinPurchase {
			return false
		}
		if f.MaxPurchase != nil && purchase > *f.MaxPurchase {
			return false
		}
	}

	if f.ValidAfter != nil && c.ValidFrom.Before(*f.ValidAfter) {
		return false
	}
	if f.ValidBefore != nil && c.ValidUntil.After(*f.ValidBefore) {
		return false
	}
	if f.IsPublic != nil && c.IsPublic != *f.IsPublic {
		return false
	}
	if len(f.TargetAudiences) > 0 && !contains(f.TargetAudiences, c.TargetAudience) {
		return false
	}
	if f.BusinessName != "" && !containsFold(c.Business.Name, f.BusinessName) {
		return false
	}
	if len(f.Tags) > 0 && !overlaps(c.Tags, f.Tags) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, c.Business.BusinessType) {
		return false
	}

	if criteria.UserID != "" {
		collected := s.collection(criteria.UserID, c.ID)
		if f.ExcludeCollected && collected != nil {
			return false
		}
		if f.ExcludeUsed && collected.IsUsed() {
			return false
		}
	}
	return true
}

func sortCoupons(coupons []*entities.Coupon, sortBy entities.SearchSort) {
	desc := sortBy.Order == entities.SortDesc

	sort.SliceStable(coupons, func(i, j int) bool {
		a, b := coupons[i], coupons[j]

		var cmp int
		switch sortBy.Field {
		case entities.SortByDiscountValue:
			cmp = a.DiscountValue.Cmp(b.DiscountValue)
		case entities.SortByCreatedAt:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case entities.SortByValidUntil:
			cmp = a.ValidUntil.Compare(b.ValidUntil)
		case entities.SortByUsageCount:
			cmp = compareInts(a.UsageCount, b.UsageCount)
		case entities.SortByCollectionCount:
			cmp = compareInts(a.CollectionCount, b.CollectionCount)
		case entities.SortByBusinessName:
			cmp = strings.Compare(a.Business.Name, b.Business.Name)
		default:
			if cmp = compareInts(b.CollectionCount, a.CollectionCount); cmp == 0 {
				cmp = b.CreatedAt.Compare(a.CreatedAt)
			}
			desc = false
		}
		if desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}

		if cmp = strings.Compare(a.Business.Name, b.Business.Name); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func discountRange(value float64) string {
	switch {
	case value < 10:
		return "0-10"
	case value < 25:
		return "10-25"
	case value < 50:
		return "25-50"
	}
	return "50+"
}

func validityBucket(validUntil, now time.Time) string {
	switch {
	case !validUntil.After(now):
		return "expired"
	case !validUntil.After(now.Add(7 * 24 * time.Hour)):
		return "expiring_soon"
	case !validUntil.After(now.Add(30 * 24 * time.Hour)):
		return "this_month"
	}
	return "later"
}
