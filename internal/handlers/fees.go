package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"mealpay/internal/services/fees"
	"mealpay/internal/services/order"
	"mealpay/internal/utils/response"
)

// FeeHandler exposes the fee calculator to clients that cannot link it.
type FeeHandler struct {
	orders order.Service
}

func NewFeeHandler(orders order.Service) *FeeHandler {
	return &FeeHandler{orders: orders}
}

type splitInput struct {
	Amount json.RawMessage `json:"amount"`
}

type breakdownInput struct {
	UnitPrice json.RawMessage `json:"unit_price"`
	Quantity  json.RawMessage `json:"quantity"`
}

// GetRates returns the published fee rates.
func (h *FeeHandler) GetRates(c *fiber.Ctx) error {
	return response.Success(c, "Fee rates", fees.Rates())
}

// GetVectors returns the contract vectors other runtimes test against.
func (h *FeeHandler) GetVectors(c *fiber.Ctx) error {
	return response.Success(c, "Fee contract vectors", fees.ContractVectors())
}

// Split computes the buyer charge, platform revenue and seller payout.
func (h *FeeHandler) Split(c *fiber.Ctx) error {
	var input splitInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	split, err := fees.CalculateOrderSplit(decodeNumber(input.Amount))
	if err != nil {
		return err
	}
	return response.Success(c, "Order split calculated", split)
}

// Breakdown prices a cart line for display.
func (h *FeeHandler) Breakdown(c *fiber.Ctx) error {
	var input breakdownInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	b, err := fees.CalculateOrderBreakdownFromFloat(decodeNumber(input.UnitPrice), decodeNumber(input.Quantity))
	if err != nil {
		return err
	}
	return response.Success(c, "Order breakdown calculated", b)
}

// Quote returns the breakdown, the split and the processor amounts.
func (h *FeeHandler) Quote(c *fiber.Ctx) error {
	var input breakdownInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	unitPrice, qty, err := parseLine(input.UnitPrice, input.Quantity)
	if err != nil {
		return err
	}

	q, err := h.orders.Quote(c.UserContext(), order.QuoteRequest{UnitPrice: unitPrice, Quantity: qty})
	if err != nil {
		return err
	}
	return response.Success(c, "Order quote", q)
}

// parseLine validates a cart line from JSON in the calculator's order: unit
// price first, then quantity.
func parseLine(rawPrice, rawQty json.RawMessage) (float64, int, error) {
	unitPrice := decodeNumber(rawPrice)
	qty, err := fees.ValidateLine(unitPrice, decodeNumber(rawQty))
	if err != nil {
		return 0, 0, err
	}
	return unitPrice, qty, nil
}
