package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// CouponRepository defines the read operations the search needs on business_coupons
type CouponRepository interface {
	// SearchWithCount returns one page of matching coupons and the total match count
	SearchWithCount(ctx context.Context, criteria CouponSearchCriteria) ([]*entities.Coupon, int, error)

	// Facets aggregates the matching coupons without pagination
	Facets(ctx context.Context, criteria CouponSearchCriteria) (*CouponFacets, error)

	// SuggestTitles returns titles of active coupons containing term
	SuggestTitles(ctx context.Context, term string, limit int) ([]string, error)
}

// CouponSearchCriteria is the repository-level form of a coupon sub-search
type CouponSearchCriteria struct {
	Text    string
	Filters entities.SearchFilters
	Sort    entities.SearchSort
	Limit   int
	Offset  int

	// BusinessIDs restricts results to these owners when non-nil
	BusinessIDs []string

	// UserID enables the collected/used exclusions; empty for anonymous searches
	UserID string

	Now time.Time
}

// CouponFacets holds the coupon-side facet buckets
type CouponFacets struct {
	CouponTypes    []entities.FacetCount
	DiscountRanges []entities.FacetCount
	Validity       []entities.FacetCount
}
