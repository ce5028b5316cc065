package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

const batchWait = time.Millisecond

// CollectionLoader batches a user's collection lookups for one search page
// into a single user_coupon_collections query.
type CollectionLoader struct {
	loader *dataloader.Loader[string, *entities.CouponCollection]
}

// NewCollectionLoader creates a loader scoped to one user. Build one per search;
// its cache must not outlive the request.
func NewCollectionLoader(repo repositories.CollectionRepository, userID string) *CollectionLoader {
	batch := func(ctx context.Context, couponIDs []string) []*dataloader.Result[*entities.CouponCollection] {
		results := make([]*dataloader.Result[*entities.CouponCollection], len(couponIDs))
		collections, err := repo.GetUserCollections(ctx, userID, couponIDs)

		for i, id := range couponIDs {
			if err != nil {
				results[i] = &dataloader.Result[*entities.CouponCollection]{Error: err}
				continue
			}
			// A missing record means not collected, which is not an error.
			results[i] = &dataloader.Result[*entities.CouponCollection]{Data: collections[id]}
		}
		return results
	}

	return &CollectionLoader{
		loader: dataloader.NewBatchedLoader(batch,
			dataloader.WithWait[string, *entities.CouponCollection](batchWait)),
	}
}

// LoadMany returns the collection record per coupon id, keyed by id.
// Coupons the user never collected are absent from the map.
func (l *CollectionLoader) LoadMany(ctx context.Context, couponIDs []string) (map[string]*entities.CouponCollection, error) {
	out := make(map[string]*entities.CouponCollection, len(couponIDs))
	if len(couponIDs) == 0 {
		return out, nil
	}

	records, errs := l.loader.LoadMany(ctx, couponIDs)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	for i, id := range couponIDs {
		if i < len(records) && records[i] != nil {
			out[id] = records[i]
		}
	}
	return out, nil
}
