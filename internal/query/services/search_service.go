package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/zatekoja/dealsearch/internal/application/loaders"
	appservices "github.com/zatekoja/dealsearch/internal/application/services"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const anonymousUser = "anonymous"

// Dependencies are the collaborators of the SearchService
type Dependencies struct {
	Coupons     repositories.CouponRepository
	Businesses  repositories.BusinessRepository
	Collections repositories.CollectionRepository
	Functions   providers.SearchFunctions
	Cache       providers.SearchCache
	Ranking     *appservices.SearchRankingService
	Suggestions *appservices.SuggestionService
	Facets      *appservices.FacetService
	Analytics   *appservices.SearchAnalyticsService
	Metrics     *observability.Metrics
}

// Options tune the SearchService
type Options struct {
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
	NearbyLimit  int

	// Clock defaults to time.Now
	Clock func() time.Time
}

// SearchService composes coupon and business sub-searches, facets and
// suggestions into one memoized SearchResult
type SearchService struct {
	deps     Dependencies
	opts     Options
	now      func() time.Time
	inflight singleflight.Group
}

// NewSearchService creates the search orchestrator
func NewSearchService(deps Dependencies, opts Options) *SearchService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.NearbyLimit <= 0 {
		opts.NearbyLimit = 100
	}
	if deps.Ranking == nil {
		deps.Ranking = appservices.NewSearchRankingService()
	}
	if deps.Facets == nil {
		deps.Facets = appservices.NewFacetService(deps.Coupons, deps.Businesses)
	}
	if deps.Suggestions == nil {
		deps.Suggestions = appservices.NewSuggestionService(deps.Functions, deps.Coupons, deps.Businesses, 0)
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &SearchService{deps: deps, opts: opts, now: now}
}

// CacheKey derives the cache slot of a normalized query for a user
func CacheKey(query entities.SearchQuery, userID string) (string, error) {
	serialized, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	if userID == "" {
		userID = anonymousUser
	}

	sum := sha256.Sum256(append(append(serialized, '|'), userID...))
	return providers.SearchCacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Search runs one search. Fetch failures fail the whole call; analytics and
// suggestion failures never do.
func (s *SearchService) Search(ctx context.Context, query entities.SearchQuery, userID string) (*entities.SearchResult, error) {
	start := s.now()

	ctx, span := observability.StartSpan(ctx, "SearchService.Search")
	defer span.End()

	q := query.Normalize(s.opts.DefaultLimit, s.opts.MaxLimit)
	if err := q.Validate(); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	key, err := CacheKey(q, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError("failed to build cache key", err)
	}

	if cached := s.fromCache(ctx, key); cached != nil {
		result := cached.Clone()
		result.SearchTime = elapsedMs(start, s.now())

		observability.SetSpanAttributes(span,
			attribute.Int("search.text_length", len(q.Text)),
			attribute.Bool("search.cache_hit", true),
		)
		observability.RecordSearch(ctx, s.deps.Metrics, true, s.now().Sub(start))
		return result, nil
	}

	// the shared computation outlives any single caller; each caller only
	// stops waiting on its own cancellation
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), key, q, userID, start)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := apperrors.NewInternalError("search cancelled", ctx.Err())
		observability.RecordError(span, err)
		return nil, err
	}
	if res.Err != nil {
		observability.RecordError(span, res.Err)
		return nil, res.Err
	}

	result := res.Val.(*entities.SearchResult).Clone()
	if res.Shared {
		result.SearchTime = elapsedMs(start, s.now())
	}

	observability.SetSpanAttributes(span,
		attribute.Int("search.text_length", len(q.Text)),
		attribute.Bool("search.cache_hit", false),
		attribute.Int("search.total_coupons", result.TotalCoupons),
		attribute.Int("search.total_businesses", result.TotalBusinesses),
	)
	observability.RecordSearch(ctx, s.deps.Metrics, false, s.now().Sub(start))
	return result, nil
}

// ClearCache drops every memoized result
func (s *SearchService) ClearCache(ctx context.Context) error {
	if err := s.deps.Cache.Clear(ctx); err != nil {
		return apperrors.NewInternalError("failed to clear search cache", err)
	}
	return nil
}

// Suggest exposes the suggestion pipeline on its own
func (s *SearchService) Suggest(ctx context.Context, term string) []entities.SearchSuggestion {
	return s.deps.Suggestions.Suggest(ctx, term)
}

// fromCache returns a fresh cached result, removing a stale one it runs into.
// Backend failures count as misses.
func (s *SearchService) fromCache(ctx context.Context, key string) *entities.SearchResult {
	if s.deps.Cache == nil {
		return nil
	}
	logger := observability.LoggerFromContext(ctx)

	entry, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("search cache read failed")
		observability.RecordCacheMiss(ctx, s.deps.Metrics)
		return nil
	}

	if entry != nil && !entry.IsFresh(s.now()) {
		if err := s.deps.Cache.Delete(ctx, key); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to evict stale search entry")
		}
		entry = nil
	}
	if entry == nil {
		observability.RecordCacheMiss(ctx, s.deps.Metrics)
		return nil
	}

	observability.RecordCacheHit(ctx, s.deps.Metrics)
	return entry.Data
}

func (s *SearchService) compute(ctx context.Context, key string, q entities.SearchQuery, userID string, start time.Time) (*entities.SearchResult, error) {
	now := s.now()

	distances, businessIDs, err := s.resolveNearby(ctx, q)
	if err != nil {
		return nil, apperrors.NewInternalError("search failed", err)
	}

	couponCriteria := repositories.CouponSearchCriteria{
		Text:        q.Text,
		Filters:     q.Filters,
		Sort:        q.Sort,
		Limit:       q.Pagination.Limit,
		Offset:      q.Pagination.Offset(),
		BusinessIDs: businessIDs,
		UserID:      userID,
		Now:         now,
	}
	businessCriteria := repositories.BusinessSearchCriteria{
		Text:         q.Text,
		BusinessName: q.Filters.BusinessName,
		Categories:   q.Filters.Categories,
		Tags:         q.Filters.Tags,
		Sort:         q.Sort,
		Limit:        q.Pagination.Limit,
		Offset:       q.Pagination.Offset(),
		BusinessIDs:  businessIDs,
	}
	nothingNearby := businessIDs != nil && len(businessIDs) == 0

	result := &entities.SearchResult{
		Coupons:     []*entities.SearchCoupon{},
		Businesses:  []*entities.SearchBusiness{},
		Facets:      entities.EmptyFacets(),
		Suggestions: []entities.SearchSuggestion{},
	}
	var couponsMore, businessesMore bool

	g, gctx := errgroup.WithContext(ctx)
	if !nothingNearby {
		g.Go(func() error {
			var err error
			result.Coupons, result.TotalCoupons, couponsMore, err = s.searchCoupons(gctx, q, couponCriteria, distances)
			return err
		})
		g.Go(func() error {
			var err error
			result.Businesses, result.TotalBusinesses, businessesMore, err = s.searchBusinesses(gctx, q, businessCriteria, distances, now)
			return err
		})
		g.Go(func() error {
			var err error
			result.Facets, err = s.deps.Facets.Facets(gctx, couponCriteria, businessCriteria)
			return err
		})
	}
	g.Go(func() error {
		result.Suggestions = s.deps.Suggestions.Suggest(gctx, q.Text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("search failed", err)
	}

	result.HasMore = couponsMore || businessesMore
	result.SearchTime = elapsedMs(start, s.now())

	s.store(ctx, key, result.Clone())
	s.track(ctx, q, userID, result)

	return result, nil
}

// resolveNearby maps business id to distance once per search. A nil id list
// means no location constraint.
func (s *SearchService) resolveNearby(ctx context.Context, q entities.SearchQuery) (map[string]float64, []string, error) {
	if q.Location == nil {
		return nil, nil, nil
	}

	nearby, err := s.deps.Functions.NearbyBusinesses(ctx, q.Location.Lat, q.Location.Lng, q.Location.RadiusKm, s.opts.NearbyLimit)
	if err != nil {
		return nil, nil, err
	}

	distances := make(map[string]float64, len(nearby))
	ids := make([]string, 0, len(nearby))
	for _, n := range nearby {
		if _, seen := distances[n.BusinessID]; !seen {
			ids = append(ids, n.BusinessID)
		}
		distances[n.BusinessID] = n.DistanceKm
	}
	return distances, ids, nil
}

func (s *SearchService) searchCoupons(ctx context.Context, q entities.SearchQuery, criteria repositories.CouponSearchCriteria, distances map[string]float64) ([]*entities.SearchCoupon, int, bool, error) {
	rows, total, err := s.deps.Coupons.SearchWithCount(ctx, criteria)
	if err != nil {
		return nil, 0, false, err
	}

	var collections map[string]*entities.CouponCollection
	if criteria.UserID != "" && len(rows) > 0 && s.deps.Collections != nil {
		ids := make([]string, len(rows))
		for i, c := range rows {
			ids[i] = c.ID
		}
		loader := loaders.NewCollectionLoader(s.deps.Collections, criteria.UserID)
		if collections, err = loader.LoadMany(ctx, ids); err != nil {
			return nil, 0, false, err
		}
	}

	coupons := make([]*entities.SearchCoupon, 0, len(rows))
	for _, c := range rows {
		sc := &entities.SearchCoupon{
			Coupon:                 *c,
			RelevanceScore:         s.deps.Ranking.ScoreCoupon(c, q.Text, criteria.Now),
			RemainingUses:          c.RemainingUses(),
			HighlightedTitle:       appservices.Highlight(c.Title, q.Text),
			HighlightedDescription: appservices.Highlight(c.Description, q.Text),
		}
		if d, ok := distances[c.BusinessID]; ok {
			sc.Distance = &d
		}
		if col := collections[c.ID]; col != nil {
			sc.IsCollected = true
			sc.IsUsed = col.IsUsed()
		}
		coupons = append(coupons, sc)
	}

	return coupons, total, criteria.Offset+len(rows) < total, nil
}

func (s *SearchService) searchBusinesses(ctx context.Context, q entities.SearchQuery, criteria repositories.BusinessSearchCriteria, distances map[string]float64, now time.Time) ([]*entities.SearchBusiness, int, bool, error) {
	rows, total, err := s.deps.Businesses.SearchWithCount(ctx, criteria)
	if err != nil {
		return nil, 0, false, err
	}

	businesses := make([]*entities.SearchBusiness, 0, len(rows))
	for _, b := range rows {
		active := b.ActiveCouponsCount(now)
		sb := &entities.SearchBusiness{
			Business:               *b,
			RelevanceScore:         s.deps.Ranking.ScoreBusiness(b, q.Text, active),
			ActiveCouponsCount:     active,
			HighlightedName:        appservices.Highlight(b.Name, q.Text),
			HighlightedDescription: appservices.Highlight(b.Description, q.Text),
		}
		if d, ok := distances[b.ID]; ok {
			sb.Distance = &d
		}
		businesses = append(businesses, sb)
	}

	return businesses, total, criteria.Offset+len(rows) < total, nil
}

func (s *SearchService) store(ctx context.Context, key string, result *entities.SearchResult) {
	if s.deps.Cache == nil {
		return
	}
	entry := &entities.SearchCacheEntry{Data: result, Timestamp: s.now(), TTL: s.opts.CacheTTL}
	if err := s.deps.Cache.Set(ctx, key, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache search result")
	}
}

func (s *SearchService) track(ctx context.Context, q entities.SearchQuery, userID string, result *entities.SearchResult) {
	if s.deps.Analytics == nil {
		return
	}

	filters, err := json.Marshal(q.Filters)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to encode search filters for analytics")
		filters = []byte("{}")
	}

	event := &entities.SearchEvent{
		SearchTerm:     q.Text,
		Filters:        filters,
		ResultsCount:   result.TotalCoupons + result.TotalBusinesses,
		ResponseTimeMs: int(result.SearchTime),
		Location:       q.Location,
	}
	if userID != "" {
		uid := userID
		event.UserID = &uid
	}
	s.deps.Analytics.TrackSearch(ctx, event)
}

func elapsedMs(start, end time.Time) float64 {
	return float64(end.Sub(start)) / float64(time.Millisecond)
}
