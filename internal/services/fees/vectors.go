package fees

import (
	"fmt"
	"math"
	"strconv"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

// Vector operations
const (
	OpSplit      = "split"
	OpSplitMinor = "split_minor"
	OpBreakdown  = "breakdown"
)

// splitTolerance bounds float error for unrounded split values.
const splitTolerance = 1e-9

// Vector is one row of the cross-runtime contract table. Inputs are strings
// so NaN and Infinity survive JSON encoding; they parse with
// strconv.ParseFloat semantics.
type Vector struct {
	Name      string                 `json:"name"`
	Operation string                 `json:"operation"`
	Amount    string                 `json:"amount,omitempty"`
	UnitPrice string                 `json:"unit_price,omitempty"`
	Quantity  string                 `json:"quantity,omitempty"`
	Split     *models.OrderSplit     `json:"split,omitempty"`
	Minor     *models.MinorSplit     `json:"minor,omitempty"`
	Breakdown *models.OrderBreakdown `json:"breakdown,omitempty"`
	ErrorCode string                 `json:"error_code,omitempty"`
}

// ContractVectors returns the fixed table every implementation of the fee
// model must reproduce to the cent.
func ContractVectors() []Vector {
	return []Vector{
		{Name: "split of 100", Operation: OpSplit, Amount: "100",
			Split: &models.OrderSplit{TotalCaptured: 110, AppRevenue: 20, SellerPayout: 90}},
		{Name: "split of zero", Operation: OpSplit, Amount: "0",
			Split: &models.OrderSplit{}},
		{Name: "split of 25.50", Operation: OpSplit, Amount: "25.5",
			Split: &models.OrderSplit{TotalCaptured: 28.05, AppRevenue: 5.1, SellerPayout: 22.95}},
		{Name: "negative amount", Operation: OpSplit, Amount: "-5",
			ErrorCode: apperrors.ErrInvalidAmount.Code},
		{Name: "NaN amount", Operation: OpSplit, Amount: "NaN",
			ErrorCode: apperrors.ErrInvalidAmount.Code},
		{Name: "infinite amount", Operation: OpSplit, Amount: "Infinity",
			ErrorCode: apperrors.ErrInvalidAmount.Code},
		{Name: "overflowing amount", Operation: OpSplit, Amount: "1.7976931348623157e308",
			ErrorCode: apperrors.ErrCalculation.Code},
		{Name: "minor split of 100", Operation: OpSplitMinor, Amount: "100",
			Minor: &models.MinorSplit{ChargeMinor: 11000, AppRevenueMinor: 2000, SellerPayoutMinor: 9000}},
		{Name: "minor split of 59.97", Operation: OpSplitMinor, Amount: "59.97",
			Minor: &models.MinorSplit{ChargeMinor: 6597, AppRevenueMinor: 1200, SellerPayoutMinor: 5397}},
		{Name: "minor split rounds half-up", Operation: OpSplitMinor, Amount: "0.15",
			Minor: &models.MinorSplit{ChargeMinor: 17, AppRevenueMinor: 3, SellerPayoutMinor: 14}},
		{Name: "minor split of negative amount", Operation: OpSplitMinor, Amount: "-0.01",
			ErrorCode: apperrors.ErrInvalidAmount.Code},
		{Name: "three at 10", Operation: OpBreakdown, UnitPrice: "10", Quantity: "3",
			Breakdown: &models.OrderBreakdown{Subtotal: 30, PlatformFee: 3, Total: 33}},
		{Name: "three at 19.99", Operation: OpBreakdown, UnitPrice: "19.99", Quantity: "3",
			Breakdown: &models.OrderBreakdown{Subtotal: 59.97, PlatformFee: 6, Total: 65.97}},
		{Name: "minimum quantity", Operation: OpBreakdown, UnitPrice: "10", Quantity: "1",
			Breakdown: &models.OrderBreakdown{Subtotal: 10, PlatformFee: 1, Total: 11}},
		{Name: "maximum quantity", Operation: OpBreakdown, UnitPrice: "10", Quantity: "999",
			Breakdown: &models.OrderBreakdown{Subtotal: 9990, PlatformFee: 999, Total: 10989}},
		{Name: "free item", Operation: OpBreakdown, UnitPrice: "0", Quantity: "5",
			Breakdown: &models.OrderBreakdown{}},
		// Sub-cent prices: total is the sum of the rounded parts, not the
		// rounded exact total (0.0154 would round to 0.02).
		{Name: "sub-cent unit price", Operation: OpBreakdown, UnitPrice: "0.014", Quantity: "1",
			Breakdown: &models.OrderBreakdown{Subtotal: 0.01, PlatformFee: 0, Total: 0.01}},
		{Name: "half-cent unit price", Operation: OpBreakdown, UnitPrice: "0.005", Quantity: "1",
			Breakdown: &models.OrderBreakdown{Subtotal: 0.01, PlatformFee: 0, Total: 0.01}},
		{Name: "zero quantity", Operation: OpBreakdown, UnitPrice: "10", Quantity: "0",
			ErrorCode: apperrors.ErrInvalidQuantity.Code},
		{Name: "quantity above limit", Operation: OpBreakdown, UnitPrice: "10", Quantity: "1000",
			ErrorCode: apperrors.ErrInvalidQuantity.Code},
		{Name: "fractional quantity", Operation: OpBreakdown, UnitPrice: "10", Quantity: "2.5",
			ErrorCode: apperrors.ErrInvalidQuantity.Code},
		{Name: "negative unit price", Operation: OpBreakdown, UnitPrice: "-1", Quantity: "1",
			ErrorCode: apperrors.ErrInvalidUnitPrice.Code},
		{Name: "NaN unit price", Operation: OpBreakdown, UnitPrice: "NaN", Quantity: "1",
			ErrorCode: apperrors.ErrInvalidUnitPrice.Code},
	}
}

// Verify runs v against this package and reports the first mismatch.
func Verify(v Vector) error {
	switch v.Operation {
	case OpSplit:
		got, err := CalculateOrderSplit(parseInput(v.Amount))
		if done, cerr := checkError(v, err); done {
			return cerr
		}
		if v.Split == nil {
			return fmt.Errorf("%s: vector has no expected split", v.Name)
		}
		if !near(got.TotalCaptured, v.Split.TotalCaptured) ||
			!near(got.AppRevenue, v.Split.AppRevenue) ||
			!near(got.SellerPayout, v.Split.SellerPayout) {
			return fmt.Errorf("%s: got %+v, want %+v", v.Name, got, *v.Split)
		}
		return nil

	case OpSplitMinor:
		got, err := CalculateSplitMinorUnits(parseInput(v.Amount))
		if done, cerr := checkError(v, err); done {
			return cerr
		}
		if v.Minor == nil {
			return fmt.Errorf("%s: vector has no expected minor split", v.Name)
		}
		if got != *v.Minor {
			return fmt.Errorf("%s: got %+v, want %+v", v.Name, got, *v.Minor)
		}
		return nil

	case OpBreakdown:
		got, err := CalculateOrderBreakdownFromFloat(parseInput(v.UnitPrice), parseInput(v.Quantity))
		if done, cerr := checkError(v, err); done {
			return cerr
		}
		if v.Breakdown == nil {
			return fmt.Errorf("%s: vector has no expected breakdown", v.Name)
		}
		if got != *v.Breakdown {
			return fmt.Errorf("%s: got %+v, want %+v", v.Name, got, *v.Breakdown)
		}
		return nil

	default:
		return fmt.Errorf("%s: unknown operation %q", v.Name, v.Operation)
	}
}

// checkError compares err with the vector's expected error code. done is
// true when no further comparison is needed.
func checkError(v Vector, err error) (done bool, mismatch error) {
	if v.ErrorCode == "" {
		if err != nil {
			return true, fmt.Errorf("%s: unexpected error: %w", v.Name, err)
		}
		return false, nil
	}
	de, ok := apperrors.AsDomain(err)
	if !ok {
		return true, fmt.Errorf("%s: want error %s, got %v", v.Name, v.ErrorCode, err)
	}
	if de.Code != v.ErrorCode {
		return true, fmt.Errorf("%s: want error %s, got %s", v.Name, v.ErrorCode, de.Code)
	}
	return true, nil
}

// parseInput maps unparseable text to NaN so it is rejected downstream.
func parseInput(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= splitTolerance*math.Max(1, math.Abs(b))
}
