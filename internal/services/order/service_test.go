package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
	"mealpay/internal/repositories/cache"
	"mealpay/internal/services/fees"
	"mealpay/internal/services/payment"
)

type MockOrderRepo struct {
	mock.Mock
}

type MockIdempotency struct {
	mock.Mock
}

type MockIntents struct {
	mock.Mock
}

func newTestService(repo *MockOrderRepo, idem IdempotencyStore, intents payment.IntentCreator) Service {
	return NewService(
		fees.NewCalculator(),
		payment.NewService(intents, nil),
		repo,
		idem,
		Config{Currency: "usd", IdempotencyTTL: time.Hour},
		nil,
	)
}

func TestService_Quote(t *testing.T) {
	svc := newTestService(new(MockOrderRepo), nil, nil)

	q, err := svc.Quote(context.Background(), QuoteRequest{UnitPrice: 19.99, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, models.OrderBreakdown{Subtotal: 59.97, PlatformFee: 6, Total: 65.97}, q.Breakdown)
	assert.InDelta(t, 53.973, q.Split.SellerPayout, 1e-9)
	assert.InDelta(t, 11.994, q.Split.AppRevenue, 1e-9)
	assert.Equal(t, int64(6597), q.Payment.ChargeMinor)
	assert.Equal(t, int64(5397), q.Payment.TransferMinor)
	assert.Equal(t, int64(1200), q.Payment.ApplicationFeeMinor)
}

func TestService_Quote_InvalidInput(t *testing.T) {
	svc := newTestService(new(MockOrderRepo), nil, nil)

	_, err := svc.Quote(context.Background(), QuoteRequest{UnitPrice: 10, Quantity: 1000})
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	_, err = svc.Quote(context.Background(), QuoteRequest{UnitPrice: -1, Quantity: 1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidUnitPrice)
}

func TestService_Quote_ChargeMatchesDisplayedTotal(t *testing.T) {
	svc := newTestService(new(MockOrderRepo), nil, nil)

	for _, price := range []float64{0.01, 0.05, 0.15, 0.25, 1.05, 4.95, 12.35, 99.99} {
		for _, qty := range []int{1, 3, 7, 11, 999} {
			q, err := svc.Quote(context.Background(), QuoteRequest{UnitPrice: price, Quantity: qty})
			require.NoError(t, err, "price %v qty %d", price, qty)
			assert.Equal(t, fees.MinorUnits(q.Breakdown.Total), q.Payment.ChargeMinor)
		}
	}
}

func TestService_PlaceOrder(t *testing.T) {
	tests := []struct {
		name      string
		buyerID   uint
		req       PlaceOrderRequest
		setupMock func(*MockOrderRepo, *MockIdempotency)
		wantErr   error
		replayed  bool
	}{
		{
			name:    "records new order",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
					return o.Total == 33 && o.SellerPayout == 27 && o.AppRevenue == 6 &&
						o.ChargeMinor == 3300 && o.Status == models.OrderStatusPending
				})).Return(nil)
			},
		},
		{
			name:    "rejects self purchase",
			buyerID: 2,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 1},
			wantErr: apperrors.ErrInvalidOrder,
		},
		{
			name:    "rejects missing seller",
			buyerID: 1,
			req:     PlaceOrderRequest{UnitPrice: 10, Quantity: 1},
			wantErr: apperrors.ErrInvalidOrder,
		},
		{
			name:    "rejects invalid quantity before touching storage",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 0, IdempotencyKey: "k"},
			wantErr: apperrors.ErrInvalidQuantity,
		},
		{
			name:    "replays completed key from cache",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k1"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				idem.On("Lookup", mock.Anything, cache.Key(1, "k1")).Return("ref-1", false, nil)
				repo.On("FindByReference", mock.Anything, "ref-1").Return(&models.Order{Reference: "ref-1"}, nil)
			},
			replayed: true,
		},
		{
			name:    "replays key from database after cache expiry",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k2"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				idem.On("Lookup", mock.Anything, cache.Key(1, "k2")).Return("", false, nil)
				repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "k2").Return(&models.Order{Reference: "ref-2"}, nil)
			},
			replayed: true,
		},
		{
			name:    "rejects key in flight",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k3"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				idem.On("Lookup", mock.Anything, cache.Key(1, "k3")).Return("", true, nil)
			},
			wantErr: apperrors.ErrInvalidOrder,
		},
		{
			name:    "reserves and completes new key",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k4"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				key := cache.Key(1, "k4")
				idem.On("Lookup", mock.Anything, key).Return("", false, nil)
				repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "k4").Return(nil, apperrors.ErrOrderNotFound)
				idem.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
					return o.IdempotencyKey == "k4"
				})).Return(nil)
				idem.On("Complete", mock.Anything, key, mock.AnythingOfType("string"), time.Hour).Return(nil)
			},
		},
		{
			name:    "releases key when recording fails",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k5"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				key := cache.Key(1, "k5")
				idem.On("Lookup", mock.Anything, key).Return("", false, nil)
				repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "k5").Return(nil, apperrors.ErrOrderNotFound)
				idem.On("Reserve", mock.Anything, key, time.Hour).Return(true, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
				idem.On("Release", mock.Anything, key).Return(nil)
			},
			wantErr: errors.New("db down"),
		},
		{
			name:    "falls back to database when redis is down",
			buyerID: 1,
			req:     PlaceOrderRequest{SellerID: 2, UnitPrice: 10, Quantity: 3, IdempotencyKey: "k6"},
			setupMock: func(repo *MockOrderRepo, idem *MockIdempotency) {
				key := cache.Key(1, "k6")
				idem.On("Lookup", mock.Anything, key).Return("", false, errors.New("redis down"))
				repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "k6").Return(nil, apperrors.ErrOrderNotFound)
				idem.On("Reserve", mock.Anything, key, time.Hour).Return(false, errors.New("redis down"))
				repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
					return o.IdempotencyKey == "k6"
				})).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepo)
			idem := new(MockIdempotency)
			if tt.setupMock != nil {
				tt.setupMock(repo, idem)
			}

			svc := newTestService(repo, idem, nil)
			res, err := svc.PlaceOrder(context.Background(), tt.buyerID, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				if _, ok := apperrors.AsDomain(tt.wantErr); ok {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.replayed, res.Replayed)
				if !tt.replayed {
					_, perr := uuid.Parse(res.Order.Reference)
					assert.NoError(t, perr)
				}
			}

			repo.AssertExpectations(t)
			idem.AssertExpectations(t)
		})
	}
}

func TestService_PlaceOrder_CreatesPaymentIntent(t *testing.T) {
	repo := new(MockOrderRepo)
	intents := new(MockIntents)

	intents.On("New", mock.MatchedBy(func(p *stripe.PaymentIntentParams) bool {
		return *p.Amount == 3300 && *p.ApplicationFeeAmount == 600 && *p.TransferData.Destination == "acct_seller"
	})).Return(&stripe.PaymentIntent{ID: "pi_1", ClientSecret: "secret_1"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Metadata["payment_intent_id"] == "pi_1"
	})).Return(nil)

	svc := newTestService(repo, nil, intents)
	res, err := svc.PlaceOrder(context.Background(), 1, PlaceOrderRequest{
		SellerID:      2,
		SellerAccount: "acct_seller",
		UnitPrice:     10,
		Quantity:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, "secret_1", res.ClientSecret)

	repo.AssertExpectations(t)
	intents.AssertExpectations(t)
}

func TestService_PlaceOrder_ConcurrentDuplicateReplays(t *testing.T) {
	repo := new(MockOrderRepo)
	stored := &models.Order{Reference: "ref-first", IdempotencyKey: "dup"}

	repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "dup").Return(nil, apperrors.ErrOrderNotFound).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicateOrder).Once()
	repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "dup").Return(stored, nil).Once()

	res, err := newTestService(repo, nil, nil).PlaceOrder(context.Background(), 1, PlaceOrderRequest{
		SellerID:       2,
		UnitPrice:      10,
		Quantity:       3,
		IdempotencyKey: "dup",
	})
	require.NoError(t, err)
	assert.True(t, res.Replayed)
	assert.Equal(t, "ref-first", res.Order.Reference)
	repo.AssertExpectations(t)
}

func TestService_PlaceOrder_RetryReusesPaymentIntentKey(t *testing.T) {
	repo := new(MockOrderRepo)
	intents := new(MockIntents)

	var sent []*stripe.PaymentIntentParams
	intents.On("New", mock.Anything).
		Run(func(args mock.Arguments) {
			sent = append(sent, args.Get(0).(*stripe.PaymentIntentParams))
		}).
		Return(&stripe.PaymentIntent{ID: "pi_1", ClientSecret: "secret_1"}, nil)
	repo.On("FindByIdempotencyKey", mock.Anything, uint(1), "retry").Return(nil, apperrors.ErrOrderNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	svc := newTestService(repo, nil, intents)
	req := PlaceOrderRequest{
		SellerID:       2,
		SellerAccount:  "acct_seller",
		UnitPrice:      10,
		Quantity:       3,
		IdempotencyKey: "retry",
	}
	for i := 0; i < 2; i++ {
		_, err := svc.PlaceOrder(context.Background(), 1, req)
		require.Error(t, err)
	}

	require.Len(t, sent, 2)
	require.NotNil(t, sent[0].IdempotencyKey)
	require.NotNil(t, sent[1].IdempotencyKey)
	assert.Equal(t, *sent[0].IdempotencyKey, *sent[1].IdempotencyKey)
	assert.Equal(t, sent[0].Metadata["order_reference"], sent[1].Metadata["order_reference"])

	ref := sent[0].Metadata["order_reference"]
	_, err := uuid.Parse(ref)
	assert.NoError(t, err)
	assert.Equal(t, "order-intent:"+ref, *sent[0].IdempotencyKey)

	// Another buyer reusing the same key gets a different reference.
	assert.NotEqual(t, orderReference(1, "retry"), orderReference(3, "retry"))
	assert.Equal(t, ref, orderReference(1, "retry"))
}

func TestService_PlaceOrder_ProcessorDisabled(t *testing.T) {
	repo := new(MockOrderRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, nil, nil)
	res, err := svc.PlaceOrder(context.Background(), 1, PlaceOrderRequest{
		SellerID:      2,
		SellerAccount: "acct_seller",
		UnitPrice:     10,
		Quantity:      1,
	})
	require.NoError(t, err)
	assert.Empty(t, res.ClientSecret)
}

func TestService_GetOrder(t *testing.T) {
	ref := uuid.NewString()
	stored := &models.Order{Reference: ref, BuyerID: 1, SellerID: 2}

	tests := []struct {
		name      string
		reference string
		requester Requester
		wantErr   error
	}{
		{name: "buyer", reference: ref, requester: Requester{UserID: 1, Role: models.RoleBuyer}},
		{name: "seller", reference: ref, requester: Requester{UserID: 2, Role: models.RoleSeller}},
		{name: "admin", reference: ref, requester: Requester{UserID: 9, Role: models.RoleAdmin}},
		{name: "stranger", reference: ref, requester: Requester{UserID: 3, Role: models.RoleBuyer}, wantErr: apperrors.ErrForbidden},
		{name: "malformed reference", reference: "not-a-uuid", requester: Requester{UserID: 1}, wantErr: apperrors.ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepo)
			repo.On("FindByReference", mock.Anything, ref).Return(stored, nil).Maybe()

			o, err := newTestService(repo, nil, nil).GetOrder(context.Background(), tt.reference, tt.requester)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ref, o.Reference)
		})
	}
}

func TestService_ListSellerOrders_ClampsPage(t *testing.T) {
	repo := new(MockOrderRepo)
	repo.On("ListBySeller", mock.Anything, uint(2), MaxPageSize, 0).
		Return([]models.Order{{Reference: "a"}}, int64(1), nil)

	page, err := newTestService(repo, nil, nil).ListSellerOrders(context.Background(), 2, 5000, -3)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)
	assert.Equal(t, 0, page.Offset)
	assert.Len(t, page.Orders, 1)
	repo.AssertExpectations(t)
}

func TestService_ListBuyerOrders_DefaultPage(t *testing.T) {
	repo := new(MockOrderRepo)
	repo.On("ListByBuyer", mock.Anything, uint(1), DefaultPageSize, 40).
		Return([]models.Order{}, int64(0), nil)

	page, err := newTestService(repo, nil, nil).ListBuyerOrders(context.Background(), 1, 0, 40)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, page.Limit)
	repo.AssertExpectations(t)
}

// Implement required mock methods
func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepo) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) FindByIdempotencyKey(ctx context.Context, buyerID uint, key string) (*models.Order, error) {
	args := m.Called(ctx, buyerID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepo) ListBySeller(ctx context.Context, sellerID uint, limit, offset int) ([]models.Order, int64, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) ListByBuyer(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, int64, error) {
	args := m.Called(ctx, buyerID, limit, offset)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotency) Complete(ctx context.Context, key, reference string, ttl time.Duration) error {
	args := m.Called(ctx, key, reference, ttl)
	return args.Error(0)
}

func (m *MockIdempotency) Lookup(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotency) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
