package main

import (
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

// backends groups the storage implementations one search runs against
type backends struct {
	Coupons     repositories.CouponRepository
	Businesses  repositories.BusinessRepository
	Collections repositories.CollectionRepository
	Functions   providers.SearchFunctions
	Analytics   repositories.SearchAnalyticsRepository
}
