package models

import (
	"time"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is a recorded marketplace purchase together with the fee amounts
// computed at placement time. A buyer's non-empty idempotency key is unique.
type Order struct {
	ID             uint    `gorm:"primarykey" json:"-"`
	Reference      string  `gorm:"uniqueIndex;not null" json:"reference"`
	IdempotencyKey string  `gorm:"uniqueIndex:idx_orders_buyer_idempotency,where:idempotency_key <> ''" json:"-"`
	BuyerID        uint    `gorm:"index;not null;uniqueIndex:idx_orders_buyer_idempotency,where:idempotency_key <> ''" json:"buyer_id"`
	SellerID       uint    `gorm:"index;not null" json:"seller_id"`
	MealID         string  `json:"meal_id,omitempty"`
	UnitPrice      float64 `gorm:"not null" json:"unit_price"`
	Quantity       int     `gorm:"not null" json:"quantity"`

	// Buyer-facing breakdown
	Subtotal    float64 `gorm:"not null" json:"subtotal"`
	PlatformFee float64 `gorm:"not null" json:"platform_fee"`
	Total       float64 `gorm:"not null" json:"total"`

	// Split of the subtotal between platform and seller
	AppRevenue   float64 `gorm:"not null" json:"app_revenue"`
	SellerPayout float64 `gorm:"not null" json:"seller_payout"`

	// Amounts in minor units as submitted to the payment processor
	Currency            string `gorm:"default:'usd'" json:"currency"`
	ChargeMinor         int64  `json:"charge_minor"`
	ApplicationFeeMinor int64  `json:"application_fee_minor"`
	TransferMinor       int64  `json:"transfer_minor"`

	Status    string    `gorm:"not null;default:'pending'" json:"status"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
