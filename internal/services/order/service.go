package order

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
	"mealpay/internal/repositories"
	"mealpay/internal/repositories/cache"
	"mealpay/internal/services/fees"
	"mealpay/internal/services/payment"
)

// referenceNamespace seeds order references derived from idempotency keys.
var referenceNamespace = uuid.MustParse("6f1c2b8e-3d4a-4e4b-9a57-2c0d8f3e9b61")

type service struct {
	calculator  fees.FeeCalculator
	payments    payment.Service
	orders      repositories.OrderRepository
	idempotency IdempotencyStore
	config      Config
	logger      *zap.Logger
}

// NewService creates a new order service. idempotency may be nil, in which
// case keys are only checked against the database.
func NewService(
	calculator fees.FeeCalculator,
	payments payment.Service,
	orders repositories.OrderRepository,
	idempotency IdempotencyStore,
	cfg Config,
	logger *zap.Logger,
) Service {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		calculator:  calculator,
		payments:    payments,
		orders:      orders,
		idempotency: idempotency,
		config:      cfg,
		logger:      logger,
	}
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	breakdown, err := s.calculator.CalculateOrderBreakdown(req.UnitPrice, req.Quantity)
	if err != nil {
		return nil, err
	}

	split, err := s.calculator.CalculateOrderSplit(breakdown.Subtotal)
	if err != nil {
		return nil, err
	}

	minor, err := s.calculator.CalculateSplitMinorUnits(breakdown.Subtotal)
	if err != nil {
		return nil, err
	}

	amounts, err := s.payments.AmountsFromSplit(minor, s.config.Currency)
	if err != nil {
		return nil, err
	}

	// The processor must charge exactly what the buyer was shown.
	if shown := fees.MinorUnits(breakdown.Total); shown != amounts.ChargeMinor {
		s.logger.Error("charge does not match displayed total",
			zap.Float64("unit_price", req.UnitPrice),
			zap.Int("quantity", req.Quantity),
			zap.Int64("shown_minor", shown),
			zap.Int64("charge_minor", amounts.ChargeMinor))
		return nil, apperrors.ErrCalculation.WithDetail("charge %d differs from displayed total %d", amounts.ChargeMinor, shown)
	}

	return &Quote{Breakdown: breakdown, Split: split, Payment: amounts}, nil
}

func (s *service) PlaceOrder(ctx context.Context, buyerID uint, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	if buyerID == 0 || req.SellerID == 0 {
		return nil, apperrors.ErrInvalidOrder.WithDetail("buyer and seller are required")
	}
	if buyerID == req.SellerID {
		return nil, apperrors.ErrInvalidOrder.WithDetail("buyer cannot purchase their own listing")
	}

	quote, err := s.Quote(ctx, QuoteRequest{UnitPrice: req.UnitPrice, Quantity: req.Quantity})
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	var cacheKey string
	if key != "" {
		if existing, err := s.replay(ctx, buyerID, key); err != nil || existing != nil {
			return existing, err
		}
		if s.idempotency != nil {
			cacheKey = cache.Key(buyerID, key)
			reserved, err := s.idempotency.Reserve(ctx, cacheKey, s.config.IdempotencyTTL)
			switch {
			case err != nil:
				// The unique (buyer_id, idempotency_key) index still rejects
				// a concurrent duplicate.
				s.logger.Warn("idempotency reservation failed, falling back to database",
					zap.String("key", cacheKey), zap.Error(err))
				cacheKey = ""
			case !reserved:
				return nil, apperrors.ErrInvalidOrder.WithDetail("a request with this idempotency key is in progress")
			}
		}
	}

	result, err := s.record(ctx, buyerID, key, req, quote)
	if err != nil && key != "" && errors.Is(err, apperrors.ErrDuplicateOrder) {
		// A concurrent request with the same key won the insert.
		if existing, ferr := s.orders.FindByIdempotencyKey(ctx, buyerID, key); ferr == nil {
			result, err = &PlaceOrderResult{Order: existing, Replayed: true}, nil
		}
	}
	if err != nil {
		if cacheKey != "" {
			if rerr := s.idempotency.Release(ctx, cacheKey); rerr != nil {
				s.logger.Warn("failed to release idempotency key", zap.String("key", cacheKey), zap.Error(rerr))
			}
		}
		return nil, err
	}

	if cacheKey != "" {
		if err := s.idempotency.Complete(ctx, cacheKey, result.Order.Reference, s.config.IdempotencyTTL); err != nil {
			// The database row still carries the key, so replays keep working.
			s.logger.Warn("failed to store idempotency key", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return result, nil
}

// replay returns the order a key already produced, or nil if there is none.
func (s *service) replay(ctx context.Context, buyerID uint, key string) (*PlaceOrderResult, error) {
	if s.idempotency != nil {
		ref, pending, err := s.idempotency.Lookup(ctx, cache.Key(buyerID, key))
		if err != nil {
			s.logger.Warn("idempotency lookup failed, falling back to database", zap.Error(err))
		}
		if pending {
			return nil, apperrors.ErrInvalidOrder.WithDetail("a request with this idempotency key is in progress")
		}
		if ref != "" {
			o, err := s.orders.FindByReference(ctx, ref)
			if err != nil {
				return nil, err
			}
			return &PlaceOrderResult{Order: o, Replayed: true}, nil
		}
	}

	o, err := s.orders.FindByIdempotencyKey(ctx, buyerID, key)
	if errors.Is(err, apperrors.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &PlaceOrderResult{Order: o, Replayed: true}, nil
}

// orderReference is random for requests without an idempotency key. With a
// key it is derived from the buyer and key, so a retry carries the same
// reference and the same processor idempotency key as the first attempt.
func orderReference(buyerID uint, key string) string {
	if key == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(referenceNamespace, []byte(cache.Key(buyerID, key))).String()
}

func (s *service) record(ctx context.Context, buyerID uint, key string, req PlaceOrderRequest, quote *Quote) (*PlaceOrderResult, error) {
	o := &models.Order{
		Reference:           orderReference(buyerID, key),
		IdempotencyKey:      key,
		BuyerID:             buyerID,
		SellerID:            req.SellerID,
		MealID:              req.MealID,
		UnitPrice:           req.UnitPrice,
		Quantity:            req.Quantity,
		Subtotal:            quote.Breakdown.Subtotal,
		PlatformFee:         quote.Breakdown.PlatformFee,
		Total:               quote.Breakdown.Total,
		AppRevenue:          quote.Split.AppRevenue,
		SellerPayout:        quote.Split.SellerPayout,
		Currency:            quote.Payment.Currency,
		ChargeMinor:         quote.Payment.ChargeMinor,
		ApplicationFeeMinor: quote.Payment.ApplicationFeeMinor,
		TransferMinor:       quote.Payment.TransferMinor,
		Status:              models.OrderStatusPending,
		Metadata:            models.JSON{},
	}

	result := &PlaceOrderResult{Order: o}
	if req.SellerAccount != "" {
		pi, err := s.payments.CreateIntent(ctx, payment.IntentRequest{
			Amounts:        quote.Payment,
			Destination:    req.SellerAccount,
			Metadata:       map[string]string{"order_reference": o.Reference},
			IdempotencyKey: "order-intent:" + o.Reference,
		})
		switch {
		case errors.Is(err, payment.ErrProcessorDisabled):
			s.logger.Debug("payment processor disabled, recording order only", zap.String("reference", o.Reference))
		case err != nil:
			return nil, err
		default:
			o.Metadata["payment_intent_id"] = pi.ID
			result.ClientSecret = pi.ClientSecret
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.logger.Error("failed to record order",
			zap.Uint("buyer_id", buyerID),
			zap.Uint("seller_id", req.SellerID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("reference", o.Reference),
		zap.Uint("buyer_id", buyerID),
		zap.Uint("seller_id", req.SellerID),
		zap.Int64("charge_minor", o.ChargeMinor),
		zap.Int64("application_fee_minor", o.ApplicationFeeMinor))
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, reference string, requester Requester) (*models.Order, error) {
	if _, err := uuid.Parse(reference); err != nil {
		return nil, apperrors.ErrOrderNotFound
	}

	o, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if requester.Role == models.RoleAdmin || requester.UserID == o.BuyerID || requester.UserID == o.SellerID {
		return o, nil
	}
	return nil, apperrors.ErrForbidden
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uint, limit, offset int) (*Page, error) {
	limit, offset = clampPage(limit, offset)
	orders, total, err := s.orders.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uint, limit, offset int) (*Page, error) {
	limit, offset = clampPage(limit, offset)
	orders, total, err := s.orders.ListByBuyer(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &Page{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
