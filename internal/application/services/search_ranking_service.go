package services

import (
	"math"
	"strings"
	"time"

	"github.com/zatekoja/dealsearch/internal/domain/entities"
)

// SearchRankingService computes the display relevance of search rows.
// Scores never reorder a fetched page; the page order comes from the database.
type SearchRankingService struct {
	wTitle        float64
	wDescription  float64
	wBusinessName float64
	wCollections  float64
	wUsage        float64
	wRecency      float64
	wDiscount     float64

	recencyWindowDays float64
	discountCap       float64

	wBusinessNameMatch float64
	wActiveCoupons     float64
	wRating            float64
}

// NewSearchRankingService returns a ranking service with the default weights
func NewSearchRankingService() *SearchRankingService {
	return &SearchRankingService{
		wTitle:        10,
		wDescription:  5,
		wBusinessName: 7,
		wCollections:  0.1,
		wUsage:        0.2,
		wRecency:      0.1,
		wDiscount:     0.05,

		recencyWindowDays: 30,
		discountCap:       100,

		wBusinessNameMatch: 10,
		wActiveCoupons:     2,
		wRating:            2,
	}
}

// ScoreCoupon blends text match, popularity, recency and discount size
func (s *SearchRankingService) ScoreCoupon(c *entities.Coupon, query string, now time.Time) float64 {
	score := 0.0

	if q := strings.ToLower(query); q != "" {
		if strings.Contains(strings.ToLower(c.Title), q) {
			score += s.wTitle
		}
		if strings.Contains(strings.ToLower(c.Description), q) {
			score += s.wDescription
		}
		if strings.Contains(strings.ToLower(c.Business.Name), q) {
			score += s.wBusinessName
		}
	}

	score += s.wCollections * float64(c.CollectionCount)
	score += s.wUsage * float64(c.UsageCount)

	ageDays := now.Sub(c.CreatedAt).Hours() / 24
	score += s.wRecency * math.Max(0, s.recencyWindowDays-ageDays)

	score += s.wDiscount * math.Min(c.DiscountValue.InexactFloat64(), s.discountCap)

	return round2(score)
}

// ScoreBusiness blends name/description match, active offers and rating
func (s *SearchRankingService) ScoreBusiness(b *entities.Business, query string, activeCoupons int) float64 {
	score := 0.0

	if q := strings.ToLower(query); q != "" {
		if strings.Contains(strings.ToLower(b.Name), q) {
			score += s.wBusinessNameMatch
		}
		if strings.Contains(strings.ToLower(b.Description), q) {
			score += s.wDescription
		}
	}

	score += s.wActiveCoupons * float64(activeCoupons)
	if b.Rating != nil {
		score += s.wRating * *b.Rating
	}

	return round2(score)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
