package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// CollectionAdapter implements CollectionRepository
type CollectionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCollectionAdapter creates a new collection adapter
func NewCollectionAdapter(client *postgres.Client) repositories.CollectionRepository {
	return &CollectionAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// GetUserCollections fetches the user's records for a page of coupons in one round trip
func (a *CollectionAdapter) GetUserCollections(ctx context.Context, userID string, couponIDs []string) (map[string]*entities.CouponCollection, error) {
	collections := make(map[string]*entities.CouponCollection, len(couponIDs))
	if userID == "" || len(couponIDs) == 0 {
		return collections, nil
	}

	query, args, err := a.db.From("user_coupon_collections").
		Select("id", "user_id", "coupon_id", "usage_count", "collected_at").
		Where(
			goqu.C("user_id").Eq(userID),
			goqu.C("coupon_id").In(couponIDs),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build collections query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user collections", err)
	}
	defer rows.Close()

	for rows.Next() {
		c := &entities.CouponCollection{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.CouponID, &c.UsageCount, &c.CollectedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan collection", err)
		}
		collections[c.CouponID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate collections", err)
	}

	return collections, nil
}
