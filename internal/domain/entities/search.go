package entities

import (
	"slices"
	"strings"
	"time"

	apperrors "github.com/zatekoja/dealsearch/pkg/errors"
)

// SortField names a sortable column of the search
type SortField string

const (
	SortByRelevance       SortField = "relevance"
	SortByDiscountValue   SortField = "discount_value"
	SortByCreatedAt       SortField = "created_at"
	SortByValidUntil      SortField = "valid_until"
	SortByUsageCount      SortField = "usage_count"
	SortByCollectionCount SortField = "collection_count"
	SortByBusinessName    SortField = "business_name"
)

// SortOrder is either ascending or descending
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

var validSortFields = map[SortField]bool{
	SortByRelevance:       true,
	SortByDiscountValue:   true,
	SortByCreatedAt:       true,
	SortByValidUntil:      true,
	SortByUsageCount:      true,
	SortByCollectionCount: true,
	SortByBusinessName:    true,
}

// SearchQuery is the immutable input of one search invocation
type SearchQuery struct {
	Text       string        `json:"text"`
	Location   *GeoPoint     `json:"location,omitempty"`
	Filters    SearchFilters `json:"filters"`
	Sort       SearchSort    `json:"sort"`
	Pagination Pagination    `json:"pagination"`
}

// GeoPoint is a search origin with a radius
type GeoPoint struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
}

// SearchSort selects the server-side ordering
type SearchSort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// Pagination is 1-based
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SearchFilters is a sparse set of constraints; zero values mean unconstrained
type SearchFilters struct {
	CouponTypes      []CouponType     `json:"coupon_types,omitempty"`
	DiscountTypes    []DiscountType   `json:"discount_types,omitempty"`
	MinDiscount      *float64         `json:"min_discount,omitempty"`
	MaxDiscount      *float64         `json:"max_discount,omitempty"`
	MinPurchase      *float64         `json:"min_purchase,omitempty"`
	MaxPurchase      *float64         `json:"max_purchase,omitempty"`
	Statuses         []CouponStatus   `json:"statuses,omitempty"`
	ValidOnly        bool             `json:"valid_only,omitempty"`
	ValidAfter       *time.Time       `json:"valid_after,omitempty"`
	ValidBefore      *time.Time       `json:"valid_before,omitempty"`
	TargetAudiences  []TargetAudience `json:"target_audiences,omitempty"`
	BusinessName     string           `json:"business_name,omitempty"`
	IsPublic         *bool            `json:"is_public,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Categories       []string         `json:"categories,omitempty"`
	ExcludeCollected bool             `json:"exclude_collected,omitempty"`
	ExcludeUsed      bool             `json:"exclude_used,omitempty"`
}

// Normalize fills defaults and clamps the page size. It returns a copy.
func (q SearchQuery) Normalize(defaultLimit, maxLimit int) SearchQuery {
	q.Text = strings.TrimSpace(q.Text)
	q.Filters.BusinessName = strings.TrimSpace(q.Filters.BusinessName)

	if q.Sort.Field == "" {
		q.Sort.Field = SortByRelevance
	}
	if q.Sort.Order == "" {
		q.Sort.Order = SortDesc
	}
	q.Sort.Order = SortOrder(strings.ToLower(string(q.Sort.Order)))

	if q.Pagination.Page == 0 {
		q.Pagination.Page = 1
	}
	if q.Pagination.Limit == 0 {
		q.Pagination.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Pagination.Limit > maxLimit {
		q.Pagination.Limit = maxLimit
	}
	return q
}

// Validate rejects queries that cannot be executed
func (q SearchQuery) Validate() error {
	if !validSortFields[q.Sort.Field] {
		return apperrors.NewValidationErrorf("unsupported sort field %q", q.Sort.Field)
	}
	if q.Sort.Order != SortAsc && q.Sort.Order != SortDesc {
		return apperrors.NewValidationErrorf("unsupported sort order %q", q.Sort.Order)
	}
	if q.Pagination.Page < 1 {
		return apperrors.NewValidationError("page must be at least 1")
	}
	if q.Pagination.Limit < 1 {
		return apperrors.NewValidationError("limit must be at least 1")
	}
	if loc := q.Location; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 {
			return apperrors.NewValidationErrorf("latitude %v out of range", loc.Lat)
		}
		if loc.Lng < -180 || loc.Lng > 180 {
			return apperrors.NewValidationErrorf("longitude %v out of range", loc.Lng)
		}
		if loc.RadiusKm <= 0 {
			return apperrors.NewValidationError("radius_km must be positive")
		}
	}

	f := q.Filters
	if f.MinDiscount != nil && f.MaxDiscount != nil && *f.MinDiscount > *f.MaxDiscount {
		return apperrors.NewValidationError("min_discount exceeds max_discount")
	}
	if f.MinPurchase != nil && f.MaxPurchase != nil && *f.MinPurchase > *f.MaxPurchase {
		return apperrors.NewValidationError("min_purchase exceeds max_purchase")
	}
	if f.ValidAfter != nil && f.ValidBefore != nil && f.ValidAfter.After(*f.ValidBefore) {
		return apperrors.NewValidationError("valid_after is later than valid_before")
	}
	return nil
}

// Offset is the zero-based row offset of the requested page
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// SearchCoupon is a coupon decorated for one search response
type SearchCoupon struct {
	Coupon
	RelevanceScore         float64  `json:"relevance_score"`
	Distance               *float64 `json:"distance,omitempty"`
	IsCollected            bool     `json:"is_collected"`
	IsUsed                 bool     `json:"is_used"`
	RemainingUses          *int     `json:"remaining_uses"`
	HighlightedTitle       string   `json:"highlighted_title"`
	HighlightedDescription string   `json:"highlighted_description"`
}

// SearchBusiness is a business decorated for one search response
type SearchBusiness struct {
	Business
	RelevanceScore         float64  `json:"relevance_score"`
	Distance               *float64 `json:"distance,omitempty"`
	ActiveCouponsCount     int      `json:"active_coupons_count"`
	HighlightedName        string   `json:"highlighted_name"`
	HighlightedDescription string   `json:"highlighted_description"`
}

// SearchResult is the composed response, and the unit that is cached
type SearchResult struct {
	Coupons         []*SearchCoupon    `json:"coupons"`
	Businesses      []*SearchBusiness  `json:"businesses"`
	TotalCoupons    int                `json:"total_coupons"`
	TotalBusinesses int                `json:"total_businesses"`
	Facets          SearchFacets       `json:"facets"`
	Suggestions     []SearchSuggestion `json:"suggestions"`
	SearchTime      float64            `json:"search_time"` // milliseconds
	HasMore         bool               `json:"has_more"`
}

// Clone returns a deep copy that shares no slices or pointers with r
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}
	cp := *r

	if r.Coupons != nil {
		cp.Coupons = make([]*SearchCoupon, len(r.Coupons))
		for i, c := range r.Coupons {
			cp.Coupons[i] = c.clone()
		}
	}
	if r.Businesses != nil {
		cp.Businesses = make([]*SearchBusiness, len(r.Businesses))
		for i, b := range r.Businesses {
			cp.Businesses[i] = b.clone()
		}
	}

	cp.Facets = SearchFacets{
		CouponTypes:    slices.Clone(r.Facets.CouponTypes),
		DiscountRanges: slices.Clone(r.Facets.DiscountRanges),
		BusinessTypes:  slices.Clone(r.Facets.BusinessTypes),
		Locations:      slices.Clone(r.Facets.Locations),
		Validity:       slices.Clone(r.Facets.Validity),
	}
	cp.Suggestions = slices.Clone(r.Suggestions)
	return &cp
}

func (c *SearchCoupon) clone() *SearchCoupon {
	if c == nil {
		return nil
	}
	cp := *c
	cp.MinPurchaseAmount = clonePtr(c.MinPurchaseAmount)
	cp.TotalLimit = clonePtr(c.TotalLimit)
	cp.Tags = slices.Clone(c.Tags)
	cp.Distance = clonePtr(c.Distance)
	cp.RemainingUses = clonePtr(c.RemainingUses)
	return &cp
}

func (b *SearchBusiness) clone() *SearchBusiness {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Latitude = clonePtr(b.Latitude)
	cp.Longitude = clonePtr(b.Longitude)
	cp.Rating = clonePtr(b.Rating)
	cp.Tags = slices.Clone(b.Tags)
	cp.Coupons = slices.Clone(b.Coupons)
	cp.Distance = clonePtr(b.Distance)
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SearchFacets summarises the filtered, un-paginated result set
type SearchFacets struct {
	CouponTypes    []FacetCount `json:"coupon_types"`
	DiscountRanges []FacetCount `json:"discount_ranges"`
	BusinessTypes  []FacetCount `json:"business_types"`
	Locations      []FacetCount `json:"locations"`
	Validity       []FacetCount `json:"validity"`
}

// FacetCount is one bucket of a facet
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// EmptyFacets returns facets with every bucket list present and empty
func EmptyFacets() SearchFacets {
	return SearchFacets{
		CouponTypes:    []FacetCount{},
		DiscountRanges: []FacetCount{},
		BusinessTypes:  []FacetCount{},
		Locations:      []FacetCount{},
		Validity:       []FacetCount{},
	}
}

// SuggestionType tags where a suggestion came from
type SuggestionType string

const (
	SuggestionTypeBusiness SuggestionType = "business"
	SuggestionTypeCategory SuggestionType = "category"
	SuggestionTypeCoupon   SuggestionType = "coupon"
)

// SearchSuggestion is an autocomplete entry
type SearchSuggestion struct {
	Text  string         `json:"text"`
	Type  SuggestionType `json:"type"`
	Count int            `json:"count"`
}

// SearchCacheEntry is a memoized SearchResult
type SearchCacheEntry struct {
	Data      *SearchResult `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
}

// IsFresh reports whether the entry may still be served at now
func (e *SearchCacheEntry) IsFresh(now time.Time) bool {
	return e != nil && e.Data != nil && now.Sub(e.Timestamp) <= e.TTL
}
