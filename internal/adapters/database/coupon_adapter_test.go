package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return postgres.NewClientFromDB(mockDB), mock
}

var couponRowColumns = []string{
	"id", "business_id", "title", "description", "coupon_type", "discount_type",
	"discount_value", "min_purchase_amount", "status", "valid_from", "valid_until",
	"total_limit", "usage_count", "collection_count", "is_public", "target_audience",
	"tags", "created_at", "b_id", "business_name", "b_description", "business_type",
	"address", "city",
}

func TestCouponAdapter_SearchWithCount(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(couponRowColumns).
		AddRow("c1", "b1", "Pizza Discount", "Half off", "percentage", "percentage",
			"50", nil, "active", now.Add(-24*time.Hour), now.Add(72*time.Hour),
			int64(100), 10, 4, true, "all_users", []byte("{food,pizza}"), now.Add(-48*time.Hour),
			"b1", "Luigi's", nil, "restaurant", "1 Main St", "Lagos")

	mock.ExpectQuery(`SELECT .+ FROM "business_coupons" AS "c" INNER JOIN "businesses" AS "b" .+ILIKE.+ORDER BY "c"."collection_count" DESC, "c"."created_at" DESC, "b"."business_name" ASC, "c"."id" ASC LIMIT`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "business_coupons" AS "c"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	coupons, total, err := adapter.SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Text:    "pizza",
		Filters: entities.SearchFilters{ValidOnly: true},
		Sort:    entities.SearchSort{Field: entities.SortByRelevance, Order: entities.SortDesc},
		Limit:   20,
		Now:     now,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, coupons, 1)

	c := coupons[0]
	assert.Equal(t, "Pizza Discount", c.Title)
	assert.Equal(t, entities.CouponTypePercentage, c.CouponType)
	assert.Equal(t, "50", c.DiscountValue.String())
	assert.Nil(t, c.MinPurchaseAmount)
	require.NotNil(t, c.TotalLimit)
	assert.Equal(t, 100, *c.TotalLimit)
	assert.Equal(t, []string{"food", "pizza"}, c.Tags)
	assert.Equal(t, "Luigi's", c.Business.Name)
	assert.Equal(t, "", c.Business.Description)
	assert.Equal(t, "Lagos", c.Business.City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponAdapter_SearchWithCount_QueryError(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)

	mock.ExpectQuery(`SELECT .+ FROM "business_coupons"`).WillReturnError(errors.New("connection reset"))

	_, _, err := adapter.SearchWithCount(context.Background(), repositories.CouponSearchCriteria{Limit: 20})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestCouponAdapter_SortByColumn(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)

	mock.ExpectQuery(`ORDER BY "c"."discount_value" ASC, "b"."business_name" ASC, "c"."id" ASC`).
		WillReturnRows(sqlmock.NewRows(couponRowColumns))
	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	coupons, total, err := adapter.SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Sort:  entities.SearchSort{Field: entities.SortByDiscountValue, Order: entities.SortAsc},
		Limit: 10,
	})

	require.NoError(t, err)
	assert.Empty(t, coupons)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponAdapter_UserExclusions(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)

	mock.ExpectQuery(`NOT EXISTS \(SELECT 1 FROM user_coupon_collections ucc WHERE ucc.coupon_id = c.id AND ucc.user_id = \$\d+\)`).
		WillReturnRows(sqlmock.NewRows(couponRowColumns))
	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := adapter.SearchWithCount(context.Background(), repositories.CouponSearchCriteria{
		Filters: entities.SearchFilters{ExcludeCollected: true},
		UserID:  "user-1",
		Limit:   10,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponAdapter_Facets(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)

	mock.ExpectQuery(`SELECT .*"c"."coupon_type" AS "bucket", COUNT\(\*\) AS "total" .+GROUP BY "bucket"`).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "total"}).
			AddRow("percentage", 3).
			AddRow("fixed_amount", 1))
	mock.ExpectQuery(`CASE WHEN`).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "total"}).AddRow("50+", 4))
	mock.ExpectQuery(`CASE WHEN`).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "total"}).
			AddRow("expiring_soon", 2).
			AddRow(nil, 1))

	facets, err := adapter.Facets(context.Background(), repositories.CouponSearchCriteria{Now: time.Now()})

	require.NoError(t, err)
	assert.Equal(t, []entities.FacetCount{{Value: "percentage", Count: 3}, {Value: "fixed_amount", Count: 1}}, facets.CouponTypes)
	assert.Equal(t, []entities.FacetCount{{Value: "50+", Count: 4}}, facets.DiscountRanges)
	assert.Equal(t, []entities.FacetCount{{Value: "expiring_soon", Count: 2}}, facets.Validity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCouponAdapter_SuggestTitles(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCouponAdapter(client)

	mock.ExpectQuery(`SELECT "title" FROM "business_coupons" WHERE .+"status" = \$1.+"title" ILIKE \$2.+LIMIT \$3`).
		WithArgs("active", `%50\%%`, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("50% off pizza"))

	titles, err := adapter.SuggestTitles(context.Background(), "50%", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"50% off pizza"}, titles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%a\_b\%c\\%`, containsPattern(`a_b%c\`))
	assert.Equal(t, "%pizza%", containsPattern("pizza"))
}
