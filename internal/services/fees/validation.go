package fees

import (
	"math"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

func isMoney(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func validateAmount(v float64, kind *apperrors.DomainError) error {
	if !isMoney(v) {
		return kind.WithDetail("got %v", v)
	}
	return nil
}

func validateQuantity(q int) error {
	if q < models.MinOrderQuantity || q > models.MaxOrderQuantity {
		return apperrors.ErrInvalidQuantity.WithDetail("got %d", q)
	}
	return nil
}

// checkFinite guards computed outputs. A failure means the inputs were valid
// but too large to represent.
func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.ErrCalculation.WithDetail("got %v", v)
		}
	}
	return nil
}

// QuantityFromFloat converts a decoded JSON number into a quantity. NaN,
// infinities and fractional values are rejected rather than truncated.
func QuantityFromFloat(q float64) (int, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) || q != math.Trunc(q) {
		return 0, apperrors.ErrInvalidQuantity.WithDetail("got %v", q)
	}
	if q < models.MinOrderQuantity || q > models.MaxOrderQuantity {
		return 0, apperrors.ErrInvalidQuantity.WithDetail("got %v", q)
	}
	return int(q), nil
}

// ValidateLine checks a cart line decoded from transport input: unit price
// first, then quantity. It returns the quantity as an int.
func ValidateLine(unitPrice, quantity float64) (int, error) {
	if err := validateAmount(unitPrice, apperrors.ErrInvalidUnitPrice); err != nil {
		return 0, err
	}
	return QuantityFromFloat(quantity)
}
