package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

var businessColumns = []interface{}{
	"b.id", "b.business_name", "b.description", "b.business_type", "b.address",
	"b.city", "b.latitude", "b.longitude", "b.average_rating", "b.status",
	"b.tags", "b.created_at",
}

// BusinessAdapter implements BusinessRepository
type BusinessAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusinessAdapter creates a new business adapter
func NewBusinessAdapter(client *postgres.Client) repositories.BusinessRepository {
	return &BusinessAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// SearchWithCount returns one page of businesses with their coupons attached
func (a *BusinessAdapter) SearchWithCount(ctx context.Context, criteria repositories.BusinessSearchCriteria) ([]*entities.Business, int, error) {
	base := a.filtered(criteria)

	query, args, err := base.Select(businessColumns...).
		Order(businessOrdering(criteria.Sort)...).
		Limit(uint(criteria.Limit)).
		Offset(uint(criteria.Offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build business search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to search businesses", err)
	}
	defer rows.Close()

	businesses := make([]*entities.Business, 0, criteria.Limit)
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan business", err)
		}
		businesses = append(businesses, business)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to iterate businesses", err)
	}

	if err := a.attachCoupons(ctx, businesses); err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build business count query", err)
	}
	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count businesses", err)
	}

	return businesses, total, nil
}

// Facets aggregates business type and city buckets
func (a *BusinessAdapter) Facets(ctx context.Context, criteria repositories.BusinessSearchCriteria) (*repositories.BusinessFacets, error) {
	base := a.filtered(criteria)

	businessTypes, err := a.facet(ctx, base, "b.business_type")
	if err != nil {
		return nil, err
	}
	locations, err := a.facet(ctx, base, "b.city")
	if err != nil {
		return nil, err
	}

	return &repositories.BusinessFacets{
		BusinessTypes: businessTypes,
		Locations:     locations,
	}, nil
}

// SuggestNames returns business names containing term
func (a *BusinessAdapter) SuggestNames(ctx context.Context, term string, limit int) ([]string, error) {
	query, args, err := a.db.From("businesses").
		Select("business_name").
		Where(goqu.C("business_name").ILike(containsPattern(term))).
		Order(goqu.C("business_name").Asc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build suggestion query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to suggest business names", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan business name", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *BusinessAdapter) filtered(criteria repositories.BusinessSearchCriteria) *goqu.SelectDataset {
	var conds []exp.Expression

	if criteria.Text != "" {
		conds = append(conds, anyColumnContains(criteria.Text,
			"b.business_name", "b.description", "b.business_type", "b.address"))
	}
	if criteria.BusinessIDs != nil {
		if len(criteria.BusinessIDs) == 0 {
			conds = append(conds, goqu.L("FALSE"))
		} else {
			conds = append(conds, goqu.I("b.id").In(criteria.BusinessIDs))
		}
	}
	if criteria.BusinessName != "" {
		conds = append(conds, goqu.I("b.business_name").ILike(containsPattern(criteria.BusinessName)))
	}
	if len(criteria.Categories) > 0 {
		conds = append(conds, goqu.I("b.business_type").In(criteria.Categories))
	}
	if len(criteria.Tags) > 0 {
		conds = append(conds, arrayOverlaps("b.tags", criteria.Tags))
	}

	return a.db.From(goqu.T("businesses").As("b")).Where(conds...)
}

func businessOrdering(sort entities.SearchSort) []exp.OrderedExpression {
	desc := sort.Order == entities.SortDesc

	switch sort.Field {
	case entities.SortByBusinessName:
		return []exp.OrderedExpression{orderBy("b.business_name", desc), goqu.I("b.id").Asc()}
	case entities.SortByCreatedAt:
		return []exp.OrderedExpression{orderBy("b.created_at", desc), goqu.I("b.business_name").Asc(), goqu.I("b.id").Asc()}
	default:
		return []exp.OrderedExpression{
			goqu.I("b.average_rating").Desc().NullsLast(),
			goqu.I("b.created_at").Desc(),
			goqu.I("b.business_name").Asc(),
			goqu.I("b.id").Asc(),
		}
	}
}

// attachCoupons loads the coupon projection for the whole page in one query
func (a *BusinessAdapter) attachCoupons(ctx context.Context, businesses []*entities.Business) error {
	if len(businesses) == 0 {
		return nil
	}

	ids := make([]string, len(businesses))
	byID := make(map[string]*entities.Business, len(businesses))
	for i, b := range businesses {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	query, args, err := a.db.From("business_coupons").
		Select("business_id", "id", "status", "valid_until").
		Where(goqu.C("business_id").In(ids)).
		Order(goqu.C("business_id").Asc(), goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build business coupons query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to load business coupons", err)
	}
	defer rows.Close()

	for rows.Next() {
		var businessID, status string
		var coupon entities.BusinessCoupon
		if err := rows.Scan(&businessID, &coupon.ID, &status, &coupon.ValidUntil); err != nil {
			return apperrors.NewInternalError("failed to scan business coupon", err)
		}
		coupon.Status = entities.CouponStatus(status)
		if b, ok := byID[businessID]; ok {
			b.Coupons = append(b.Coupons, coupon)
		}
	}
	return rows.Err()
}

func (a *BusinessAdapter) facet(ctx context.Context, base *goqu.SelectDataset, column string) ([]entities.FacetCount, error) {
	query, args, err := base.
		Select(goqu.I(column).As("bucket"), goqu.COUNT(goqu.Star()).As("total")).
		GroupBy(goqu.I(column)).
		Order(goqu.C("total").Desc(), goqu.C("bucket").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build business facet query", err)
	}

	return queryFacets(ctx, a.client.DB(), query, args)
}

func scanBusiness(rows *sql.Rows) (*entities.Business, error) {
	b := &entities.Business{}
	var description, businessType, address, city, status sql.NullString
	var latitude, longitude, rating sql.NullFloat64

	err := rows.Scan(
		&b.ID,
		&b.Name,
		&description,
		&businessType,
		&address,
		&city,
		&latitude,
		&longitude,
		&rating,
		&status,
		pq.Array(&b.Tags),
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Description = description.String
	b.BusinessType = businessType.String
	b.Address = address.String
	b.City = city.String
	b.Status = status.String
	if latitude.Valid {
		b.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		b.Longitude = &longitude.Float64
	}
	if rating.Valid {
		b.Rating = &rating.Float64
	}

	return b, nil
}
