package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
	"mealpay/internal/services/fees"
)

type MockIntents struct {
	mock.Mock
}

func (m *MockIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

func TestAmountsFromSplit(t *testing.T) {
	svc := NewService(nil, nil)

	tests := []struct {
		name     string
		base     float64
		currency string
		want     Amounts
	}{
		{
			name:     "round numbers",
			base:     100,
			currency: "USD",
			want:     Amounts{Currency: "usd", ChargeMinor: 11000, ApplicationFeeMinor: 2000, TransferMinor: 9000},
		},
		{
			name:     "sub-cent fees",
			base:     59.97,
			currency: "usd",
			want:     Amounts{Currency: "usd", ChargeMinor: 6597, ApplicationFeeMinor: 1200, TransferMinor: 5397},
		},
		{
			name:     "zero",
			base:     0,
			currency: "eur",
			want:     Amounts{Currency: "eur"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := fees.CalculateSplitMinorUnits(tt.base)
			require.NoError(t, err)

			got, err := svc.AmountsFromSplit(split, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.ChargeMinor, got.ApplicationFeeMinor+got.TransferMinor)
		})
	}
}

func TestAmountsFromSplit_Invalid(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.AmountsFromSplit(models.MinorSplit{ChargeMinor: 1100, AppRevenueMinor: 200, SellerPayoutMinor: 900}, "dollars")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)

	_, err = svc.AmountsFromSplit(models.MinorSplit{ChargeMinor: 500, AppRevenueMinor: 0, SellerPayoutMinor: 900}, "usd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)

	_, err = svc.AmountsFromSplit(models.MinorSplit{ChargeMinor: 100, AppRevenueMinor: -10, SellerPayoutMinor: 110}, "usd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)
}

func TestIntentParams(t *testing.T) {
	amounts := Amounts{Currency: "usd", ChargeMinor: 11000, ApplicationFeeMinor: 2000, TransferMinor: 9000}

	params, err := IntentParams(IntentRequest{
		Amounts:        amounts,
		Destination:    "acct_123",
		Metadata:       map[string]string{"order_reference": "abc"},
		IdempotencyKey: "order:abc",
	})
	require.NoError(t, err)
	require.NotNil(t, params.IdempotencyKey)
	assert.Equal(t, "order:abc", *params.IdempotencyKey)
	assert.Equal(t, int64(11000), *params.Amount)
	assert.Equal(t, int64(2000), *params.ApplicationFeeAmount)
	assert.Equal(t, "acct_123", *params.TransferData.Destination)
	assert.Equal(t, "usd", *params.Currency)
	assert.Equal(t, "abc", params.Metadata["order_reference"])

	params, err = IntentParams(IntentRequest{Amounts: amounts, Destination: "acct_123"})
	require.NoError(t, err)
	assert.Nil(t, params.IdempotencyKey)

	_, err = IntentParams(IntentRequest{Amounts: amounts, Destination: "acct_123", IdempotencyKey: strings.Repeat("k", 256)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)

	_, err = IntentParams(IntentRequest{Amounts: amounts, Destination: " "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)

	_, err = IntentParams(IntentRequest{Amounts: Amounts{Currency: "usd"}, Destination: "acct_123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)

	amounts.TransferMinor = 8999
	_, err = IntentParams(IntentRequest{Amounts: amounts, Destination: "acct_123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPayment)
}

func TestCreateIntent(t *testing.T) {
	amounts := Amounts{Currency: "usd", ChargeMinor: 3300, ApplicationFeeMinor: 600, TransferMinor: 2700}

	t.Run("disabled without processor", func(t *testing.T) {
		_, err := NewService(nil, nil).CreateIntent(context.Background(), IntentRequest{Amounts: amounts, Destination: "acct_1"})
		assert.ErrorIs(t, err, ErrProcessorDisabled)
	})

	t.Run("submits params", func(t *testing.T) {
		intents := new(MockIntents)
		intents.On("New", mock.MatchedBy(func(p *stripe.PaymentIntentParams) bool {
			return *p.Amount == 3300 && *p.ApplicationFeeAmount == 600
		})).Return(&stripe.PaymentIntent{ID: "pi_1"}, nil)

		pi, err := NewService(intents, nil).CreateIntent(context.Background(), IntentRequest{Amounts: amounts, Destination: "acct_1"})
		require.NoError(t, err)
		assert.Equal(t, "pi_1", pi.ID)
		intents.AssertExpectations(t)
	})

	t.Run("wraps processor error", func(t *testing.T) {
		intents := new(MockIntents)
		intents.On("New", mock.Anything).Return(nil, errors.New("card declined"))

		_, err := NewService(intents, nil).CreateIntent(context.Background(), IntentRequest{Amounts: amounts, Destination: "acct_1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "card declined")
	})
}
