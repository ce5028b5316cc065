package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

const (
	expiringSoonWindow = 7 * 24 * time.Hour
	thisMonthWindow    = 30 * 24 * time.Hour
)

var couponColumns = []interface{}{
	"c.id", "c.business_id", "c.title", "c.description", "c.coupon_type",
	"c.discount_type", "c.discount_value", "c.min_purchase_amount", "c.status",
	"c.valid_from", "c.valid_until", "c.total_limit", "c.usage_count",
	"c.collection_count", "c.is_public", "c.target_audience", "c.tags", "c.created_at",
	"b.id", "b.business_name", "b.description", "b.business_type", "b.address", "b.city",
}

var couponSortColumns = map[entities.SortField]string{
	entities.SortByDiscountValue:   "c.discount_value",
	entities.SortByCreatedAt:       "c.created_at",
	entities.SortByValidUntil:      "c.valid_until",
	entities.SortByUsageCount:      "c.usage_count",
	entities.SortByCollectionCount: "c.collection_count",
	entities.SortByBusinessName:    "b.business_name",
}

// CouponAdapter implements CouponRepository over business_coupons joined with businesses
type CouponAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCouponAdapter creates a new coupon adapter
func NewCouponAdapter(client *postgres.Client) repositories.CouponRepository {
	return &CouponAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// SearchWithCount runs the page query and the count query over the same predicate
func (a *CouponAdapter) SearchWithCount(ctx context.Context, criteria repositories.CouponSearchCriteria) ([]*entities.Coupon, int, error) {
	base := a.filtered(criteria)

	query, args, err := base.Select(couponColumns...).
		Order(couponOrdering(criteria.Sort)...).
		Limit(uint(criteria.Limit)).
		Offset(uint(criteria.Offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build coupon search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to search coupons", err)
	}
	defer rows.Close()

	coupons := make([]*entities.Coupon, 0, criteria.Limit)
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan coupon", err)
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to iterate coupons", err)
	}

	total, err := a.count(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// Facets aggregates coupon type, discount range and validity buckets
func (a *CouponAdapter) Facets(ctx context.Context, criteria repositories.CouponSearchCriteria) (*repositories.CouponFacets, error) {
	base := a.filtered(criteria)
	now := criteria.Now

	couponTypes, err := a.facet(ctx, base, goqu.I("c.coupon_type"))
	if err != nil {
		return nil, err
	}

	discountRanges, err := a.facet(ctx, base, goqu.Case().
		When(goqu.I("c.discount_value").Lt(10), "0-10").
		When(goqu.I("c.discount_value").Lt(25), "10-25").
		When(goqu.I("c.discount_value").Lt(50), "25-50").
		Else("50+"))
	if err != nil {
		return nil, err
	}

	validity, err := a.facet(ctx, base, goqu.Case().
		When(goqu.I("c.valid_until").Lte(now), "expired").
		When(goqu.I("c.valid_until").Lte(now.Add(expiringSoonWindow)), "expiring_soon").
		When(goqu.I("c.valid_until").Lte(now.Add(thisMonthWindow)), "this_month").
		Else("later"))
	if err != nil {
		return nil, err
	}

	return &repositories.CouponFacets{
		CouponTypes:    couponTypes,
		DiscountRanges: discountRanges,
		Validity:       validity,
	}, nil
}

// SuggestTitles returns titles of active coupons containing term
func (a *CouponAdapter) SuggestTitles(ctx context.Context, term string, limit int) ([]string, error) {
	query, args, err := a.db.From("business_coupons").
		Select("title").
		Where(
			goqu.C("status").Eq(string(entities.CouponStatusActive)),
			goqu.C("title").ILike(containsPattern(term)),
		).
		Order(goqu.C("collection_count").Desc(), goqu.C("title").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build suggestion query", err)
	}

	return a.queryStrings(ctx, query, args, "failed to suggest coupon titles")
}

func (a *CouponAdapter) filtered(criteria repositories.CouponSearchCriteria) *goqu.SelectDataset {
	return a.db.From(goqu.T("business_coupons").As("c")).
		InnerJoin(goqu.T("businesses").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("c.business_id")))).
		Where(couponConditions(criteria)...)
}

func couponConditions(criteria repositories.CouponSearchCriteria) []exp.Expression {
	f := criteria.Filters
	var conds []exp.Expression

	if criteria.Text != "" {
		conds = append(conds, anyColumnContains(criteria.Text,
			"c.title", "c.description", "b.business_name", "b.description"))
	}
	if criteria.BusinessIDs != nil {
		if len(criteria.BusinessIDs) == 0 {
			conds = append(conds, goqu.L("FALSE"))
		} else {
			conds = append(conds, goqu.I("c.business_id").In(criteria.BusinessIDs))
		}
	}
	if len(f.Statuses) > 0 {
		conds = append(conds, goqu.I("c.status").In(toStrings(f.Statuses)))
	}
	if f.ValidOnly {
		conds = append(conds, goqu.I("c.valid_until").Gt(criteria.Now))
	}
	if len(f.CouponTypes) > 0 {
		conds = append(conds, goqu.I("c.coupon_type").In(toStrings(f.CouponTypes)))
	}
	if len(f.DiscountTypes) > 0 {
		conds = append(conds, goqu.I("c.discount_type").In(toStrings(f.DiscountTypes)))
	}
	if f.MinDiscount != nil {
		conds = append(conds, goqu.I("c.discount_value").Gte(*f.MinDiscount))
	}
	if f.MaxDiscount != nil {
		conds = append(conds, goqu.I("c.discount_value").Lte(*f.MaxDiscount))
	}
	if f.MinPurchase != nil {
		conds = append(conds, goqu.I("c.min_purchase_amount").Gte(*f.MinPurchase))
	}
	if f.MaxPurchase != nil {
		conds = append(conds, goqu.I("c.min_purchase_amount").Lte(*f.MaxPurchase))
	}
	if f.ValidAfter != nil {
		conds = append(conds, goqu.I("c.valid_from").Gte(*f.ValidAfter))
	}
	if f.ValidBefore != nil {
		conds = append(conds, goqu.I("c.valid_until").Lte(*f.ValidBefore))
	}
	if f.IsPublic != nil {
		conds = append(conds, goqu.I("c.is_public").Eq(*f.IsPublic))
	}
	if len(f.TargetAudiences) > 0 {
		conds = append(conds, goqu.I("c.target_audience").In(toStrings(f.TargetAudiences)))
	}
	if f.BusinessName != "" {
		conds = append(conds, goqu.I("b.business_name").ILike(containsPattern(f.BusinessName)))
	}
	if len(f.Tags) > 0 {
		conds = append(conds, arrayOverlaps("c.tags", f.Tags))
	}
	if len(f.Categories) > 0 {
		conds = append(conds, goqu.I("b.business_type").In(f.Categories))
	}
	if criteria.UserID != "" {
		if f.ExcludeCollected {
			conds = append(conds, goqu.L(
				"NOT EXISTS (SELECT 1 FROM user_coupon_collections ucc WHERE ucc.coupon_id = c.id AND ucc.user_id = ?)",
				criteria.UserID))
		}
		if f.ExcludeUsed {
			conds = append(conds, goqu.L(
				"NOT EXISTS (SELECT 1 FROM user_coupon_collections ucc WHERE ucc.coupon_id = c.id AND ucc.user_id = ? AND ucc.usage_count > 0)",
				criteria.UserID))
		}
	}

	return conds
}

// couponOrdering is the cheap server-side ordering; relevance is approximated by popularity then recency
func couponOrdering(sort entities.SearchSort) []exp.OrderedExpression {
	desc := sort.Order == entities.SortDesc

	var order []exp.OrderedExpression
	if col, ok := couponSortColumns[sort.Field]; ok {
		order = append(order, orderBy(col, desc))
	} else {
		order = append(order, goqu.I("c.collection_count").Desc(), goqu.I("c.created_at").Desc())
	}
	if sort.Field != entities.SortByBusinessName {
		order = append(order, goqu.I("b.business_name").Asc())
	}
	return append(order, goqu.I("c.id").Asc())
}

func (a *CouponAdapter) count(ctx context.Context, base *goqu.SelectDataset) (int, error) {
	query, args, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build coupon count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewInternalError("failed to count coupons", err)
	}
	return total, nil
}

func (a *CouponAdapter) facet(ctx context.Context, base *goqu.SelectDataset, bucket interface{}) ([]entities.FacetCount, error) {
	query, args, err := base.
		Select(goqu.L("?", bucket).As("bucket"), goqu.COUNT(goqu.Star()).As("total")).
		GroupBy(goqu.C("bucket")).
		Order(goqu.C("total").Desc(), goqu.C("bucket").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build coupon facet query", err)
	}

	return queryFacets(ctx, a.client.DB(), query, args)
}

func (a *CouponAdapter) queryStrings(ctx context.Context, query string, args []interface{}, msg string) ([]string, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(msg, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, apperrors.NewInternalError(msg, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(msg, err)
	}
	return values, nil
}

func queryFacets(ctx context.Context, db *sql.DB, query string, args []interface{}) ([]entities.FacetCount, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate facets", err)
	}
	defer rows.Close()

	buckets := []entities.FacetCount{}
	for rows.Next() {
		var value sql.NullString
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan facet", err)
		}
		if !value.Valid || value.String == "" {
			continue
		}
		buckets = append(buckets, entities.FacetCount{Value: value.String, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate facets", err)
	}
	return buckets, nil
}

func scanCoupon(rows *sql.Rows) (*entities.Coupon, error) {
	c := &entities.Coupon{}
	var description, bizDescription, bizType, bizAddress, bizCity sql.NullString
	var minPurchase decimal.NullDecimal
	var totalLimit sql.NullInt64
	var couponType, discountType, status, audience string

	err := rows.Scan(
		&c.ID,
		&c.BusinessID,
		&c.Title,
		&description,
		&couponType,
		&discountType,
		&c.DiscountValue,
		&minPurchase,
		&status,
		&c.ValidFrom,
		&c.ValidUntil,
		&totalLimit,
		&c.UsageCount,
		&c.CollectionCount,
		&c.IsPublic,
		&audience,
		pq.Array(&c.Tags),
		&c.CreatedAt,
		&c.Business.ID,
		&c.Business.Name,
		&bizDescription,
		&bizType,
		&bizAddress,
		&bizCity,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	c.CouponType = entities.CouponType(couponType)
	c.DiscountType = entities.DiscountType(discountType)
	c.Status = entities.CouponStatus(status)
	c.TargetAudience = entities.TargetAudience(audience)
	if minPurchase.Valid {
		c.MinPurchaseAmount = &minPurchase.Decimal
	}
	if totalLimit.Valid {
		limit := int(totalLimit.Int64)
		c.TotalLimit = &limit
	}
	c.Business.Description = bizDescription.String
	c.Business.BusinessType = bizType.String
	c.Business.Address = bizAddress.String
	c.Business.City = bizCity.String

	return c, nil
}
