package models

// Fee rates for the "Double 10" marketplace model. Every caller, including
// the payment edge function, must use these values; nothing else in the
// repository may hardcode a fee percentage.
const (
	BuyerFeeRate  = 0.10 // added on top of the base amount, paid by the buyer
	SellerFeeRate = 0.10 // deducted from the base amount before seller payout

	// MaxOrderQuantity is a business rule against runaway cart quantities.
	MaxOrderQuantity = 999
	MinOrderQuantity = 1

	// CurrencyPrecision is the number of decimal places kept for money.
	CurrencyPrecision = 2
)

// FeeRates is the published rate table.
type FeeRates struct {
	BuyerFeeRate      float64 `json:"buyer_fee_rate"`
	SellerFeeRate     float64 `json:"seller_fee_rate"`
	MinOrderQuantity  int     `json:"min_order_quantity"`
	MaxOrderQuantity  int     `json:"max_order_quantity"`
	CurrencyPrecision int32   `json:"currency_precision"`
}

// OrderSplit is the three-way split of a base amount.
type OrderSplit struct {
	TotalCaptured float64 `json:"total_captured"`
	AppRevenue    float64 `json:"app_revenue"`
	SellerPayout  float64 `json:"seller_payout"`
}

// OrderBreakdown is the buyer-facing breakdown of a cart line, rounded to
// CurrencyPrecision places.
type OrderBreakdown struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	Total       float64 `json:"total"`
}

// MinorSplit is an OrderSplit in integer minor units (cents), computed in
// decimal so ChargeMinor == AppRevenueMinor + SellerPayoutMinor exactly.
type MinorSplit struct {
	ChargeMinor       int64 `json:"charge_minor"`
	AppRevenueMinor   int64 `json:"app_revenue_minor"`
	SellerPayoutMinor int64 `json:"seller_payout_minor"`
}
