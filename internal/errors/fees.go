package errors

import (
	"fmt"

	"mealpay/internal/models"
)

// Fee calculation errors
var (
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a finite number greater than or equal to zero",
		Field:   "amount",
	}
	ErrInvalidUnitPrice = &DomainError{
		Code:    "INVALID_UNIT_PRICE",
		Message: "unit price must be a finite number greater than or equal to zero",
		Field:   "unit_price",
	}
	ErrInvalidQuantity = &DomainError{
		Code:    "INVALID_QUANTITY",
		Message: fmt.Sprintf("quantity must be a whole number between %d and %d", models.MinOrderQuantity, models.MaxOrderQuantity),
		Field:   "quantity",
	}
	ErrCalculation = &DomainError{
		Code:    "CALCULATION_ERROR",
		Message: "fee calculation produced a non-finite result",
	}
)
