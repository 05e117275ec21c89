package order

import (
	"context"
	"time"

	"mealpay/internal/models"
)

// Service defines the marketplace order operations
type Service interface {
	// Quote prices a cart line without recording anything.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)

	// PlaceOrder records an order for buyerID. Replaying an idempotency key
	// returns the order the key first produced.
	PlaceOrder(ctx context.Context, buyerID uint, req PlaceOrderRequest) (*PlaceOrderResult, error)

	// GetOrder returns an order visible to the requester.
	GetOrder(ctx context.Context, reference string, requester Requester) (*models.Order, error)

	// ListSellerOrders returns a seller's payout history, newest first.
	ListSellerOrders(ctx context.Context, sellerID uint, limit, offset int) (*Page, error)

	// ListBuyerOrders returns a buyer's purchases, newest first.
	ListBuyerOrders(ctx context.Context, buyerID uint, limit, offset int) (*Page, error)
}

// IdempotencyStore is implemented by cache.IdempotencyStore.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Complete(ctx context.Context, key, reference string, ttl time.Duration) error
	Lookup(ctx context.Context, key string) (reference string, pending bool, err error)
	Release(ctx context.Context, key string) error
}
