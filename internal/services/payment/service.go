package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"go.uber.org/zap"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

// ErrProcessorDisabled is returned by CreateIntent when the service was
// built without a Stripe key.
var ErrProcessorDisabled = errors.New("payment processor not configured")

// Stripe rejects idempotency keys longer than this.
const maxIdempotencyKeyLen = 255

// Amounts are integer minor-unit values. ChargeMinor always equals
// ApplicationFeeMinor + TransferMinor.
type Amounts struct {
	Currency            string `json:"currency"`
	ChargeMinor         int64  `json:"charge_minor"`
	ApplicationFeeMinor int64  `json:"application_fee_minor"`
	TransferMinor       int64  `json:"transfer_minor"`
}

type service struct {
	intents IntentCreator
	logger  *zap.Logger
}

// NewService creates a payment service. A nil creator disables CreateIntent.
func NewService(intents IntentCreator, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{intents: intents, logger: logger}
}

// NewStripeService builds a service backed by the Stripe API. An empty key
// yields a service that only computes amounts.
func NewStripeService(secretKey string, logger *zap.Logger) Service {
	if secretKey == "" {
		return NewService(nil, logger)
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return NewService(sc.PaymentIntents, logger)
}

// AmountsFromSplit maps a split from fees.CalculateSplitMinorUnits onto a
// destination charge: the seller payout is transferred and the platform
// revenue is the application fee.
func (s *service) AmountsFromSplit(split models.MinorSplit, currency string) (Amounts, error) {
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Amounts{}, err
	}
	if split.ChargeMinor < 0 || split.SellerPayoutMinor < 0 || split.AppRevenueMinor < 0 ||
		split.AppRevenueMinor+split.SellerPayoutMinor != split.ChargeMinor {
		return Amounts{}, apperrors.ErrInvalidPayment.WithDetail("inconsistent split %+v", split)
	}

	return Amounts{
		Currency:            cur,
		ChargeMinor:         split.ChargeMinor,
		ApplicationFeeMinor: split.AppRevenueMinor,
		TransferMinor:       split.SellerPayoutMinor,
	}, nil
}

// IntentRequest describes one destination charge.
type IntentRequest struct {
	Amounts     Amounts
	Destination string
	Metadata    map[string]string

	// IdempotencyKey is sent to Stripe so a retried request returns the
	// intent the first attempt created instead of a second one.
	IdempotencyKey string
}

// IntentParams builds a destination charge: the buyer is charged
// ChargeMinor and the platform retains ApplicationFeeMinor.
func IntentParams(req IntentRequest) (*stripe.PaymentIntentParams, error) {
	amounts := req.Amounts
	if strings.TrimSpace(req.Destination) == "" {
		return nil, apperrors.ErrInvalidPayment.WithDetail("missing destination account")
	}
	if amounts.ChargeMinor <= 0 {
		return nil, apperrors.ErrInvalidPayment.WithDetail("charge must be positive, got %d", amounts.ChargeMinor)
	}
	if amounts.ApplicationFeeMinor+amounts.TransferMinor != amounts.ChargeMinor {
		return nil, apperrors.ErrInvalidPayment.WithDetail("amounts do not reconcile")
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return nil, apperrors.ErrInvalidPayment.WithDetail("idempotency key longer than %d characters", maxIdempotencyKeyLen)
	}

	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(amounts.ChargeMinor),
		Currency:             stripe.String(amounts.Currency),
		ApplicationFeeAmount: stripe.Int64(amounts.ApplicationFeeMinor),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.Destination),
		},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params, nil
}

func (s *service) CreateIntent(ctx context.Context, req IntentRequest) (*stripe.PaymentIntent, error) {
	if s.intents == nil {
		return nil, ErrProcessorDisabled
	}

	params, err := IntentParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	pi, err := s.intents.New(params)
	if err != nil {
		s.logger.Error("stripe payment intent failed",
			zap.Int64("charge_minor", req.Amounts.ChargeMinor),
			zap.String("destination", req.Destination),
			zap.Error(err))
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return pi, nil
}

func normalizeCurrency(currency string) (string, error) {
	cur := strings.ToLower(strings.TrimSpace(currency))
	if len(cur) != 3 {
		return "", apperrors.ErrInvalidPayment.WithDetail("invalid currency %q", currency)
	}
	for _, r := range cur {
		if r < 'a' || r > 'z' {
			return "", apperrors.ErrInvalidPayment.WithDetail("invalid currency %q", currency)
		}
	}
	return cur, nil
}
