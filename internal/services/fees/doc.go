/*
Package fees implements the marketplace "Double 10" fee model.

The platform takes a percentage from both sides of every sale: the buyer
pays the base amount plus models.BuyerFeeRate, and the seller receives the
base amount minus models.SellerFeeRate. Two entry points exist because
callers hold different inputs:

	// Aggregate sale amount (payment processing, payouts)
	split, err := fees.CalculateOrderSplit(100)
	// split == {TotalCaptured: 110, AppRevenue: 20, SellerPayout: 90}

	// Cart line item (display)
	b, err := fees.CalculateOrderBreakdown(19.99, 3)
	// b == {Subtotal: 59.97, PlatformFee: 6.00, Total: 65.97}

Payment processors need integer cents that reconcile with what the buyer
was shown, so CalculateSplitMinorUnits computes the same split in decimal:

	m, err := fees.CalculateSplitMinorUnits(59.97)
	// m == {ChargeMinor: 6597, AppRevenueMinor: 1200, SellerPayoutMinor: 5397}

All of them read their rates from internal/models; neither keeps state, so they
are safe for concurrent use and always return the same output for the same
input.

Error Handling:

Invalid input is never coerced. Use errors.Is against the sentinels in
internal/errors:
  - ErrInvalidAmount: base amount is NaN, infinite, or negative
  - ErrInvalidUnitPrice: unit price is NaN, infinite, or negative
  - ErrInvalidQuantity: quantity is fractional, non-finite, or outside 1..999
  - ErrCalculation: a computed value overflowed to a non-finite number

Runtimes that cannot import this package (the payment edge function) must
pass ContractVectors.
*/
package fees
