package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/dealsearch/internal/domain/entities"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/domain/repositories"
)

const earthRadiusKm = 6371.0

type collectionRepository struct {
	store *Store
}

// Collections returns the store's CollectionRepository
func (s *Store) Collections() repositories.CollectionRepository {
	return &collectionRepository{store: s}
}

func (r *collectionRepository) GetUserCollections(_ context.Context, userID string, couponIDs []string) (map[string]*entities.CouponCollection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[string]*entities.CouponCollection, len(couponIDs))
	if userID == "" {
		return out, nil
	}
	for _, id := range couponIDs {
		if c := r.store.collection(userID, id); c != nil {
			out[id] = c
		}
	}
	return out, nil
}

type analyticsRepository struct {
	store *Store
}

// Analytics returns the store's SearchAnalyticsRepository
func (s *Store) Analytics() repositories.SearchAnalyticsRepository {
	return &analyticsRepository{store: s}
}

func (r *analyticsRepository) LogEvent(_ context.Context, event *entities.SearchEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.FailAnalytics != nil {
		return r.store.FailAnalytics
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.store.now()
	}
	r.store.events = append(r.store.events, event)
	return nil
}

type searchFunctions struct {
	store *Store
}

// Functions returns an in-process rendition of the server-side search functions
func (s *Store) Functions() providers.SearchFunctions {
	return &searchFunctions{store: s}
}

func (f *searchFunctions) NearbyBusinesses(_ context.Context, lat, lng, radiusKm float64, limit int) ([]entities.NearbyBusiness, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	nearby := []entities.NearbyBusiness{}
	for _, b := range f.store.businesses {
		if b.Latitude == nil || b.Longitude == nil {
			continue
		}
		d := haversineKm(lat, lng, *b.Latitude, *b.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, entities.NearbyBusiness{BusinessID: b.ID, Name: b.Name, DistanceKm: math.Round(d*100) / 100})
		}
	}
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].BusinessID < nearby[j].BusinessID
	})
	return page(nearby, limit, 0), nil
}

func (f *searchFunctions) BusinessSearchSuggestions(_ context.Context, input string, limit int) ([]entities.RankedSuggestion, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	searches := map[string]int{}
	for _, e := range f.store.events {
		searches[strings.ToLower(e.SearchTerm)]++
	}

	var out []entities.RankedSuggestion
	categories := map[string]bool{}
	for _, b := range f.store.businesses {
		if containsFold(b.Name, input) {
			out = append(out, entities.RankedSuggestion{Suggestion: b.Name, Type: "business", Count: searches[strings.ToLower(b.Name)]})
		}
		if b.BusinessType != "" && containsFold(b.BusinessType, input) && !categories[b.BusinessType] {
			categories[b.BusinessType] = true
			out = append(out, entities.RankedSuggestion{Suggestion: b.BusinessType, Type: "category", Count: searches[strings.ToLower(b.BusinessType)]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Suggestion < out[j].Suggestion
	})
	return page(out, limit, 0), nil
}

func (f *searchFunctions) TrendingSearchTerms(_ context.Context, daysBack, limit int) ([]entities.TrendingTerm, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	since := f.store.now().AddDate(0, 0, -daysBack)
	counts := map[string]int{}
	for _, e := range f.store.events {
		term := strings.ToLower(strings.TrimSpace(e.SearchTerm))
		if term == "" || e.CreatedAt.Before(since) {
			continue
		}
		counts[term]++
	}

	terms := make([]entities.TrendingTerm, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, entities.TrendingTerm{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	return page(terms, limit, 0), nil
}

func (f *searchFunctions) TrendingFavorites(_ context.Context, timeframeDays int) ([]entities.TrendingFavorite, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	since := f.store.now().AddDate(0, 0, -timeframeDays)
	return f.store.rankFavorites(since), nil
}

func (f *searchFunctions) FavoriteSuggestions(_ context.Context, limit int) ([]entities.FavoriteSuggestion, error) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()

	ranked := f.store.rankFavorites(time.Time{})
	suggestions := make([]entities.FavoriteSuggestion, 0, len(ranked))
	for _, fav := range page(ranked, limit, 0) {
		suggestions = append(suggestions, entities.FavoriteSuggestion{
			EntityID:   fav.EntityID,
			EntityType: fav.EntityType,
			Name:       fav.Name,
			Score:      float64(fav.FavoriteCount),
		})
	}
	return suggestions, nil
}

func (s *Store) rankFavorites(since time.Time) []entities.TrendingFavorite {
	type key struct{ id, kind string }
	counts := map[key]int{}
	for _, fav := range s.favorites {
		if fav.CreatedAt.Before(since) {
			continue
		}
		counts[key{fav.EntityID, fav.EntityType}]++
	}

	out := make([]entities.TrendingFavorite, 0, len(counts))
	for k, count := range counts {
		out = append(out, entities.TrendingFavorite{
			EntityID:      k.id,
			EntityType:    k.kind,
			Name:          s.entityName(k.id, k.kind),
			FavoriteCount: count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FavoriteCount != out[j].FavoriteCount {
			return out[i].FavoriteCount > out[j].FavoriteCount
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

func (s *Store) entityName(id, kind string) string {
	if kind == "business" {
		if b, ok := s.businesses[id]; ok {
			return b.Name
		}
		return ""
	}
	for _, c := range s.coupons {
		if c.ID == id {
			return c.Title
		}
	}
	return ""
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
