// Package memory holds an in-process data set that satisfies every search
// repository and the server-side search functions. It backs local runs of the
// CLI and the end-to-end tests.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// Favorite is a user's favourite business or coupon
type Favorite struct {
	UserID     string    `json:"user_id"`
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// Fixtures is the on-disk layout of a fixture file
type Fixtures struct {
	Businesses  []*entities.Business         `json:"businesses"`
	Coupons     []*entities.Coupon           `json:"coupons"`
	Collections []*entities.CouponCollection `json:"collections"`
	Favorites   []*Favorite                  `json:"favorites"`
}

// Store is a thread-safe fixture data set
type Store struct {
	mu          sync.RWMutex
	businesses  map[string]*entities.Business
	coupons     []*entities.Coupon
	collections []*entities.CouponCollection
	favorites   []*Favorite
	events      []*entities.SearchEvent
	now         func() time.Time

	// FailAnalytics makes LogEvent return this error when set
	FailAnalytics error
}

// NewStore builds a store from fixtures, linking coupons to their businesses
func NewStore(f Fixtures) *Store {
	s := &Store{
		businesses: make(map[string]*entities.Business, len(f.Businesses)),
		now:        time.Now,
	}
	for _, b := range f.Businesses {
		b.Coupons = nil
		s.businesses[b.ID] = b
	}
	for _, c := range f.Coupons {
		s.addCouponLocked(c)
	}
	s.collections = append(s.collections, f.Collections...)
	s.favorites = append(s.favorites, f.Favorites...)
	return s
}

// ReadFixtures parses a JSON fixture file
func ReadFixtures(path string) (Fixtures, error) {
	var f Fixtures

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read fixtures: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return f, nil
}

// LoadFile builds a store from a JSON fixture file
func LoadFile(path string) (*Store, error) {
	f, err := ReadFixtures(path)
	if err != nil {
		return nil, err
	}
	return NewStore(f), nil
}

// WithClock overrides the clock used by time-windowed functions
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// AddBusiness inserts or replaces a business
func (s *Store) AddBusiness(b *entities.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses[b.ID] = b
}

// AddCoupon inserts a coupon and joins it onto its business
func (s *Store) AddCoupon(c *entities.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCouponLocked(c)
}

// AddCollection records that a user collected a coupon
func (s *Store) AddCollection(c *entities.CouponCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append(s.collections, c)
}

// Events returns a copy of the logged search events
func (s *Store) Events() []*entities.SearchEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entities.SearchEvent(nil), s.events...)
}

func (s *Store) addCouponLocked(c *entities.Coupon) {
	if b, ok := s.businesses[c.BusinessID]; ok {
		c.Business = entities.CouponBusiness{
			ID:           b.ID,
			Name:         b.Name,
			Description:  b.Description,
			BusinessType: b.BusinessType,
			Address:      b.Address,
			City:         b.City,
		}
		b.Coupons = append(b.Coupons, entities.BusinessCoupon{ID: c.ID, Status: c.Status, ValidUntil: c.ValidUntil})
	}
	s.coupons = append(s.coupons, c)
}

func (s *Store) collection(userID, couponID string) *entities.CouponCollection {
	for _, c := range s.collections {
		if c.UserID == userID && c.CouponID == couponID {
			return c
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func idSet(ids []string) map[string]bool {
	if ids == nil {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// facetCounts turns a tally into buckets ordered by count desc then value asc
func facetCounts(tally map[string]int) []entities.FacetCount {
	buckets := make([]entities.FacetCount, 0, len(tally))
	for value, count := range tally {
		if value == "" {
			continue
		}
		buckets = append(buckets, entities.FacetCount{Value: value, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Value < buckets[j].Value
	})
	return buckets
}
