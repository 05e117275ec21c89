package fees

import (
	"github.com/shopspring/decimal"

	"mealpay/internal/models"
)

var (
	buyerRate  = decimal.NewFromFloat(models.BuyerFeeRate)
	sellerRate = decimal.NewFromFloat(models.SellerFeeRate)
)

// toDecimal uses the shortest decimal that round-trips to v, so 19.99 enters
// as exactly 19.99 rather than its binary approximation.
func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// roundMoney rounds half away from zero, which for the non-negative amounts
// handled here is half-up.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(models.CurrencyPrecision)
}

func toMinor(d decimal.Decimal) decimal.Decimal {
	return d.Shift(models.CurrencyPrecision).Round(0)
}

// MinorUnits converts a major-unit amount to minor units, rounding half-up.
func MinorUnits(amount float64) int64 {
	return toMinor(toDecimal(amount)).IntPart()
}
