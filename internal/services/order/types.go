package order

import (
	"time"

	"mealpay/internal/models"
	"mealpay/internal/services/payment"
)

// Default configuration values
const (
	DefaultCurrency       = "usd"
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultPageSize       = 20
	MaxPageSize           = 100
)

// Config holds order service settings
type Config struct {
	Currency       string
	IdempotencyTTL time.Duration
}

type QuoteRequest struct {
	UnitPrice float64
	Quantity  int
}

// Quote is everything the buyer sees and the processor receives for one
// cart line. Split is computed over Breakdown.Subtotal.
type Quote struct {
	Breakdown models.OrderBreakdown `json:"breakdown"`
	Split     models.OrderSplit     `json:"split"`
	Payment   payment.Amounts       `json:"payment"`
}

type PlaceOrderRequest struct {
	SellerID       uint
	SellerAccount  string // Stripe connected account; empty skips the intent
	MealID         string
	UnitPrice      float64
	Quantity       int
	IdempotencyKey string
}

type PlaceOrderResult struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"client_secret,omitempty"`
	Replayed     bool          `json:"replayed"`
}

// Requester identifies who is reading an order.
type Requester struct {
	UserID uint
	Role   string
}

type Page struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
