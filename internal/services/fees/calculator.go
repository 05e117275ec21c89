package fees

import (
	"github.com/shopspring/decimal"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

// FeeCalculator is the dependency services take instead of calling the
// package functions directly, so tests can substitute results.
type FeeCalculator interface {
	CalculateOrderSplit(baseAmount float64) (models.OrderSplit, error)
	CalculateOrderBreakdown(unitPrice float64, quantity int) (models.OrderBreakdown, error)
	CalculateSplitMinorUnits(baseAmount float64) (models.MinorSplit, error)
}

// Calculator is the stateless FeeCalculator backed by this package.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (Calculator) CalculateOrderSplit(baseAmount float64) (models.OrderSplit, error) {
	return CalculateOrderSplit(baseAmount)
}

func (Calculator) CalculateOrderBreakdown(unitPrice float64, quantity int) (models.OrderBreakdown, error) {
	return CalculateOrderBreakdown(unitPrice, quantity)
}

func (Calculator) CalculateSplitMinorUnits(baseAmount float64) (models.MinorSplit, error) {
	return CalculateSplitMinorUnits(baseAmount)
}

// Rates returns the published rate table.
func Rates() models.FeeRates {
	return models.FeeRates{
		BuyerFeeRate:      models.BuyerFeeRate,
		SellerFeeRate:     models.SellerFeeRate,
		MinOrderQuantity:  models.MinOrderQuantity,
		MaxOrderQuantity:  models.MaxOrderQuantity,
		CurrencyPrecision: models.CurrencyPrecision,
	}
}

// CalculateOrderSplit splits baseAmount between the buyer charge, the
// platform and the seller. Results are not rounded; SellerPayout+AppRevenue
// equals TotalCaptured up to floating-point error.
func CalculateOrderSplit(baseAmount float64) (models.OrderSplit, error) {
	if err := validateAmount(baseAmount, apperrors.ErrInvalidAmount); err != nil {
		return models.OrderSplit{}, err
	}

	buyerFee := baseAmount * models.BuyerFeeRate
	sellerFee := baseAmount * models.SellerFeeRate

	split := models.OrderSplit{
		TotalCaptured: baseAmount + buyerFee,
		AppRevenue:    buyerFee + sellerFee,
		SellerPayout:  baseAmount - sellerFee,
	}
	if err := checkFinite(split.TotalCaptured, split.AppRevenue, split.SellerPayout); err != nil {
		return models.OrderSplit{}, err
	}
	return split, nil
}

// CalculateOrderBreakdown prices a cart line. Subtotal and PlatformFee are
// rounded half-up to cents from their exact values, and Total is their sum,
// so Total == Subtotal + PlatformFee holds to the cent.
func CalculateOrderBreakdown(unitPrice float64, quantity int) (models.OrderBreakdown, error) {
	if err := validateAmount(unitPrice, apperrors.ErrInvalidUnitPrice); err != nil {
		return models.OrderBreakdown{}, err
	}
	if err := validateQuantity(quantity); err != nil {
		return models.OrderBreakdown{}, err
	}

	subtotal := toDecimal(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	fee := subtotal.Mul(buyerRate)

	roundedSubtotal := roundMoney(subtotal)
	roundedFee := roundMoney(fee)
	total := roundedSubtotal.Add(roundedFee)

	b := models.OrderBreakdown{
		Subtotal:    roundedSubtotal.InexactFloat64(),
		PlatformFee: roundedFee.InexactFloat64(),
		Total:       total.InexactFloat64(),
	}
	if err := checkFinite(b.Subtotal, b.PlatformFee, b.Total); err != nil {
		return models.OrderBreakdown{}, err
	}
	return b, nil
}

// CalculateOrderBreakdownFromFloat accepts a quantity decoded as a float
// (JSON, form input). Unit price is checked first, then the quantity must be
// a whole number in range.
func CalculateOrderBreakdownFromFloat(unitPrice, quantity float64) (models.OrderBreakdown, error) {
	qty, err := ValidateLine(unitPrice, quantity)
	if err != nil {
		return models.OrderBreakdown{}, err
	}
	return CalculateOrderBreakdown(unitPrice, qty)
}
