package fees

import (
	"math"

	"github.com/shopspring/decimal"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// CalculateSplitMinorUnits is CalculateOrderSplit for payment processors.
// The buyer charge and seller payout are rounded half-up to the cent from
// exact decimal values and the platform keeps the difference, so amounts
// never drift from what CalculateOrderBreakdown displayed.
func CalculateSplitMinorUnits(baseAmount float64) (models.MinorSplit, error) {
	if err := validateAmount(baseAmount, apperrors.ErrInvalidAmount); err != nil {
		return models.MinorSplit{}, err
	}

	base := toDecimal(baseAmount)
	charge := toMinor(base.Add(base.Mul(buyerRate)))
	payout := toMinor(base.Sub(base.Mul(sellerRate)))
	if charge.GreaterThan(maxMinor) {
		return models.MinorSplit{}, apperrors.ErrCalculation.WithDetail("charge %s exceeds int64 minor units", charge)
	}

	return models.MinorSplit{
		ChargeMinor:       charge.IntPart(),
		AppRevenueMinor:   charge.Sub(payout).IntPart(),
		SellerPayoutMinor: payout.IntPart(),
	}, nil
}
