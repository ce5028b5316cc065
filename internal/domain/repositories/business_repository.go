package repositories

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// BusinessRepository defines the read operations the search needs on businesses
type BusinessRepository interface {
	// SearchWithCount returns one page of matching businesses, each with its
	// coupons joined, and the total match count
	SearchWithCount(ctx context.Context, criteria BusinessSearchCriteria) ([]*entities.Business, int, error)

	// Facets aggregates the matching businesses without pagination
	Facets(ctx context.Context, criteria BusinessSearchCriteria) (*BusinessFacets, error)

	// SuggestNames returns business names containing term
	SuggestNames(ctx context.Context, term string, limit int) ([]string, error)
}

// BusinessSearchCriteria is the repository-level form of a business sub-search
type BusinessSearchCriteria struct {
	Text         string
	BusinessName string
	Categories   []string
	Tags         []string
	Sort         entities.SearchSort
	Limit        int
	Offset       int

	// BusinessIDs restricts results to these ids when non-nil
	BusinessIDs []string
}

// BusinessFacets holds the business-side facet buckets
type BusinessFacets struct {
	BusinessTypes []entities.FacetCount
	Locations     []entities.FacetCount
}
