package services

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"golang.org/x/sync/errgroup"
)

// FacetService aggregates facet buckets over the filtered, un-paginated result set
type FacetService struct {
	coupons    repositories.CouponRepository
	businesses repositories.BusinessRepository
}

func NewFacetService(coupons repositories.CouponRepository, businesses repositories.BusinessRepository) *FacetService {
	return &FacetService{coupons: coupons, businesses: businesses}
}

// Facets runs the coupon and business aggregations concurrently. Every bucket
// list in the result is non-nil.
func (s *FacetService) Facets(ctx context.Context, coupons repositories.CouponSearchCriteria, businesses repositories.BusinessSearchCriteria) (entities.SearchFacets, error) {
	facets := entities.EmptyFacets()

	var couponFacets *repositories.CouponFacets
	var businessFacets *repositories.BusinessFacets

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		couponFacets, err = s.coupons.Facets(gctx, coupons)
		return err
	})
	g.Go(func() error {
		var err error
		businessFacets, err = s.businesses.Facets(gctx, businesses)
		return err
	})
	if err := g.Wait(); err != nil {
		return facets, err
	}

	if couponFacets != nil {
		facets.CouponTypes = orEmpty(couponFacets.CouponTypes)
		facets.DiscountRanges = orEmpty(couponFacets.DiscountRanges)
		facets.Validity = orEmpty(couponFacets.Validity)
	}
	if businessFacets != nil {
		facets.BusinessTypes = orEmpty(businessFacets.BusinessTypes)
		facets.Locations = orEmpty(businessFacets.Locations)
	}
	return facets, nil
}

func orEmpty(buckets []entities.FacetCount) []entities.FacetCount {
	if buckets == nil {
		return []entities.FacetCount{}
	}
	return buckets
}
