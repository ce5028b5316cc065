package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/dealsearch/internal/adapters/memory"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	"github.com/zatekoja/dealsearch/pkg/config"
)

// seed loads a fixture file into PostgreSQL. Usage: go run ./scripts [fixtures.json]
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("dealsearch-seed", cfg.Env)

	path := "internal/adapters/memory/testdata/fixtures.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	fixtures, err := memory.ReadFixtures(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read fixtures")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				user_coupon_collections,
				user_favorites,
				search_analytics,
				business_coupons,
				businesses
			CASCADE
		`); err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	db := pgClient.Goqu()
	inserts := []struct {
		table string
		rows  []interface{}
	}{
		{"businesses", businessRows(fixtures)},
		{"business_coupons", couponRows(fixtures)},
		{"user_coupon_collections", collectionRows(fixtures)},
		{"user_favorites", favoriteRows(fixtures)},
	}

	for _, ins := range inserts {
		if len(ins.rows) == 0 {
			continue
		}
		query, args, err := db.Insert(ins.table).Rows(ins.rows...).OnConflict(goqu.DoNothing()).Prepared(true).ToSQL()
		if err != nil {
			log.Fatal().Err(err).Str("table", ins.table).Msg("failed to build insert")
		}
		res, err := pgClient.DB().ExecContext(ctx, query, args...)
		if err != nil {
			log.Fatal().Err(err).Str("table", ins.table).Msg("failed to seed table")
		}
		n, _ := res.RowsAffected()
		log.Info().Str("table", ins.table).Int64("inserted", n).Int("fixtures", len(ins.rows)).Msg("seeded")
	}

	log.Info().Str("fixtures", path).Msg("seeding complete")
}

func businessRows(f memory.Fixtures) []interface{} {
	rows := make([]interface{}, 0, len(f.Businesses))
	for _, b := range f.Businesses {
		rows = append(rows, goqu.Record{
			"id":             b.ID,
			"business_name":  b.Name,
			"description":    b.Description,
			"business_type":  b.BusinessType,
			"address":        b.Address,
			"city":           b.City,
			"latitude":       b.Latitude,
			"longitude":      b.Longitude,
			"average_rating": b.Rating,
			"status":         b.Status,
			"tags":           pq.Array(b.Tags),
			"created_at":     b.CreatedAt,
		})
	}
	return rows
}

func couponRows(f memory.Fixtures) []interface{} {
	rows := make([]interface{}, 0, len(f.Coupons))
	for _, c := range f.Coupons {
		var minPurchase sql.NullString
		if c.MinPurchaseAmount != nil {
			minPurchase = sql.NullString{String: c.MinPurchaseAmount.String(), Valid: true}
		}
		rows = append(rows, goqu.Record{
			"id":                  c.ID,
			"business_id":         c.BusinessID,
			"title":               c.Title,
			"description":         c.Description,
			"coupon_type":         string(c.CouponType),
			"discount_type":       string(c.DiscountType),
			"discount_value":      c.DiscountValue.String(),
			"min_purchase_amount": minPurchase,
			"status":              string(c.Status),
			"valid_from":          c.ValidFrom,
			"valid_until":         c.ValidUntil,
			"total_limit":         c.TotalLimit,
			"usage_count":         c.UsageCount,
			"collection_count":    c.CollectionCount,
			"is_public":           c.IsPublic,
			"target_audience":     string(c.TargetAudience),
			"tags":                pq.Array(c.Tags),
			"created_at":          c.CreatedAt,
		})
	}
	return rows
}

func collectionRows(f memory.Fixtures) []interface{} {
	rows := make([]interface{}, 0, len(f.Collections))
	for _, c := range f.Collections {
		rows = append(rows, goqu.Record{
			"id":           c.ID,
			"user_id":      c.UserID,
			"coupon_id":    c.CouponID,
			"usage_count":  c.UsageCount,
			"collected_at": c.CollectedAt,
		})
	}
	return rows
}

func favoriteRows(f memory.Fixtures) []interface{} {
	rows := make([]interface{}, 0, len(f.Favorites))
	for _, fav := range f.Favorites {
		rows = append(rows, goqu.Record{
			"user_id":     fav.UserID,
			"entity_id":   fav.EntityID,
			"entity_type": fav.EntityType,
			"created_at":  fav.CreatedAt,
		})
	}
	return rows
}
