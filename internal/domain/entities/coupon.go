package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponType classifies how a coupon is redeemed
type CouponType string

const (
	CouponTypePercentage  CouponType = "percentage"
	CouponTypeFixedAmount CouponType = "fixed_amount"
	CouponTypeBuyXGetY    CouponType = "buy_x_get_y"
	CouponTypeFreeItem    CouponType = "free_item"
)

// DiscountType describes how the discount value is applied
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
	DiscountTypeBogo        DiscountType = "buy_one_get_one"
)

// CouponStatus is the lifecycle state of a coupon
type CouponStatus string

const (
	CouponStatusDraft     CouponStatus = "draft"
	CouponStatusActive    CouponStatus = "active"
	CouponStatusPaused    CouponStatus = "paused"
	CouponStatusExpired   CouponStatus = "expired"
	CouponStatusExhausted CouponStatus = "exhausted"
)

// TargetAudience restricts who a coupon is aimed at
type TargetAudience string

const (
	TargetAudienceAllUsers       TargetAudience = "all_users"
	TargetAudienceNewUsers       TargetAudience = "new_users"
	TargetAudienceReturningUsers TargetAudience = "returning_users"
	TargetAudienceFrequentUsers  TargetAudience = "frequent_users"
)

// Coupon is a row of business_coupons joined with its owning business
type Coupon struct {
	ID                string           `json:"id" db:"id"`
	BusinessID        string           `json:"business_id" db:"business_id"`
	Title             string           `json:"title" db:"title"`
	Description       string           `json:"description" db:"description"`
	CouponType        CouponType       `json:"coupon_type" db:"coupon_type"`
	DiscountType      DiscountType     `json:"discount_type" db:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value" db:"discount_value"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount,omitempty" db:"min_purchase_amount"`
	Status            CouponStatus     `json:"status" db:"status"`
	ValidFrom         time.Time        `json:"valid_from" db:"valid_from"`
	ValidUntil        time.Time        `json:"valid_until" db:"valid_until"`
	TotalLimit        *int             `json:"total_limit,omitempty" db:"total_limit"`
	UsageCount        int              `json:"usage_count" db:"usage_count"`
	CollectionCount   int              `json:"collection_count" db:"collection_count"`
	IsPublic          bool             `json:"is_public" db:"is_public"`
	TargetAudience    TargetAudience   `json:"target_audience" db:"target_audience"`
	Tags              []string         `json:"tags,omitempty" db:"tags"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	Business          CouponBusiness   `json:"business"`
}

// CouponBusiness is the subset of the owning business carried with a coupon
type CouponBusiness struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
}

// IsLive reports whether the coupon is active and not past its validity window
func (c *Coupon) IsLive(now time.Time) bool {
	return c.Status == CouponStatusActive && c.ValidUntil.After(now)
}

// RemainingUses returns totalLimit - usageCount clamped at zero, or nil when unlimited
func (c *Coupon) RemainingUses() *int {
	if c.TotalLimit == nil {
		return nil
	}
	remaining := *c.TotalLimit - c.UsageCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// CouponCollection is a user's saved copy of a coupon (user_coupon_collections)
type CouponCollection struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	CouponID    string    `json:"coupon_id" db:"coupon_id"`
	UsageCount  int       `json:"usage_count" db:"usage_count"`
	CollectedAt time.Time `json:"collected_at" db:"collected_at"`
}

// IsUsed reports whether the collected coupon has been redeemed at least once
func (c *CouponCollection) IsUsed() bool {
	return c != nil && c.UsageCount > 0
}
