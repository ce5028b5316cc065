package entities

import "time"

// Business represents a local business that publishes coupons
type Business struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"business_name"`
	Description  string    `json:"description" db:"description"`
	BusinessType string    `json:"business_type" db:"business_type"`
	Address      string    `json:"address" db:"address"`
	City         string    `json:"city" db:"city"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	Rating       *float64  `json:"rating,omitempty" db:"average_rating"`
	Status       string    `json:"status" db:"status"`
	Tags         []string  `json:"tags,omitempty" db:"tags"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Coupons holds the minimal coupon rows needed to count active offers.
	Coupons []BusinessCoupon `json:"coupons,omitempty"`
}

// BusinessCoupon is the coupon projection joined onto a business
type BusinessCoupon struct {
	ID         string       `json:"id"`
	Status     CouponStatus `json:"status"`
	ValidUntil time.Time    `json:"valid_until"`
}

// ActiveCouponsCount counts joined coupons that are active and still valid at now
func (b *Business) ActiveCouponsCount(now time.Time) int {
	count := 0
	for _, c := range b.Coupons {
		if c.Status == CouponStatusActive && c.ValidUntil.After(now) {
			count++
		}
	}
	return count
}
