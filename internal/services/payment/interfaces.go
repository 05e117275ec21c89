package payment

import (
	"context"

	"github.com/stripe/stripe-go/v72"

	"mealpay/internal/models"
)

// Service turns fee results into the amounts submitted to the payment
// processor.
type Service interface {
	// AmountsFromSplit attaches currency to a minor-unit split.
	AmountsFromSplit(split models.MinorSplit, currency string) (Amounts, error)

	// CreateIntent submits a destination charge. It returns
	// ErrProcessorDisabled when no processor key is configured.
	CreateIntent(ctx context.Context, req IntentRequest) (*stripe.PaymentIntent, error)
}

// IntentCreator is the subset of the Stripe PaymentIntent client used here.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}
