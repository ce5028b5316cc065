package repositories

import (
	"context"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// CollectionRepository reads user_coupon_collections
type CollectionRepository interface {
	// GetUserCollections returns the user's collection records for the given
	// coupons, keyed by coupon id. Coupons the user never collected are absent.
	GetUserCollections(ctx context.Context, userID string, couponIDs []string) (map[string]*entities.CouponCollection, error)
}
