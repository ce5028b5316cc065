package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/dealsearch/internal/adapters/cache"
	"github.com/zatekoja/dealsearch/internal/adapters/database"
	"github.com/zatekoja/dealsearch/internal/adapters/memory"
	appservices "github.com/zatekoja/dealsearch/internal/application/services"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	"github.com/zatekoja/dealsearch/internal/query/services"
	"github.com/zatekoja/dealsearch/pkg/config"
)

type CLI struct {
	Text      string        `help:"Free text matched against coupons and businesses" short:"t"`
	ValidOnly bool          `help:"Only coupons whose validity has not ended"`
	Near      bool          `help:"Constrain the search around --lat/--lng, needed only for the origin 0,0"`
	Lat       float64       `help:"Latitude of the search origin"`
	Lng       float64       `help:"Longitude of the search origin"`
	Radius    float64       `help:"Search radius in kilometres" default:"10"`
	Sort      string        `help:"Sort field" default:"relevance" enum:"relevance,discount_value,created_at,valid_until,usage_count,collection_count,business_name"`
	Order     string        `help:"Sort order" default:"desc" enum:"asc,desc"`
	Page      int           `help:"1-based page" default:"1"`
	Limit     int           `help:"Page size" default:"20"`
	User      string        `help:"User id for collected/used flags"`
	Fixtures  string        `help:"Search a JSON fixture file instead of PostgreSQL" type:"existingfile"`
	Timeout   time.Duration `help:"Overall search timeout" default:"30s"`
}

func (c *CLI) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.InitLoggerTo(os.Stderr, "dealsearch-cli", "development")

	deps, cleanup, err := c.dependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	analytics := appservices.NewSearchAnalyticsService(deps.Analytics, nil, cfg.Search.AnalyticsTimeout)
	defer analytics.Wait()

	searchService := services.NewSearchService(services.Dependencies{
		Coupons:     deps.Coupons,
		Businesses:  deps.Businesses,
		Collections: deps.Collections,
		Functions:   deps.Functions,
		Cache:       cache.NewMemoryAdapter(),
		Analytics:   analytics,
	}, services.Options{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		NearbyLimit:  cfg.Search.NearbyLimit,
	})

	result, err := searchService.Search(ctx, c.query(), c.User)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (c *CLI) query() entities.SearchQuery {
	q := entities.SearchQuery{
		Text:       c.Text,
		Filters:    entities.SearchFilters{ValidOnly: c.ValidOnly},
		Sort:       entities.SearchSort{Field: entities.SortField(c.Sort), Order: entities.SortOrder(c.Order)},
		Pagination: entities.Pagination{Page: c.Page, Limit: c.Limit},
	}
	if c.Near || c.Lat != 0 || c.Lng != 0 {
		q.Location = &entities.GeoPoint{Lat: c.Lat, Lng: c.Lng, RadiusKm: c.Radius}
	}
	return q
}

func (c *CLI) dependencies(ctx context.Context, cfg *config.Config) (backends, func(), error) {
	if c.Fixtures != "" {
		store, err := memory.LoadFile(c.Fixtures)
		if err != nil {
			return backends{}, nil, err
		}
		log.Info().Str("fixtures", c.Fixtures).Msg("searching fixture store")
		return backends{
			Coupons:     store.Coupons(),
			Businesses:  store.Businesses(),
			Collections: store.Collections(),
			Functions:   store.Functions(),
			Analytics:   store.Analytics(),
		}, func() {}, nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return backends{}, nil, err
	}
	return backends{
		Coupons:     database.NewCouponAdapter(pgClient),
		Businesses:  database.NewBusinessAdapter(pgClient),
		Collections: database.NewCollectionAdapter(pgClient),
		Functions:   database.NewSearchFunctionsAdapter(pgClient),
		Analytics:   database.NewSearchAnalyticsAdapter(pgClient),
	}, func() { pgClient.Close() }, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("search"),
		kong.Description("Run one coupon and business search and print the result as JSON"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		log.Error().Err(err).Msg("search failed")
		os.Exit(1)
	}
}
