package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"mealpay/internal/services/order"
	"mealpay/internal/utils"
	"mealpay/internal/utils/pagination"
	"mealpay/internal/utils/response"
)

// IdempotencyHeader lets clients retry order placement safely.
const IdempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// PlaceOrder records a purchase for the authenticated buyer.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		SellerID      uint            `json:"seller_id"`
		SellerAccount string          `json:"seller_account"`
		MealID        string          `json:"meal_id"`
		UnitPrice     json.RawMessage `json:"unit_price"`
		Quantity      json.RawMessage `json:"quantity"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	unitPrice, qty, err := parseLine(input.UnitPrice, input.Quantity)
	if err != nil {
		return err
	}

	res, err := h.orders.PlaceOrder(c.UserContext(), claims.UserID, order.PlaceOrderRequest{
		SellerID:       input.SellerID,
		SellerAccount:  strings.TrimSpace(input.SellerAccount),
		MealID:         input.MealID,
		UnitPrice:      unitPrice,
		Quantity:       qty,
		IdempotencyKey: c.Get(IdempotencyHeader),
	})
	if err != nil {
		return err
	}

	if res.Replayed {
		return response.Success(c, "Order already placed", res)
	}
	return response.Created(c, "Order placed", res)
}

// GetOrder returns one order to its buyer, its seller or an admin.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	o, err := h.orders.GetOrder(c.UserContext(), c.Params("reference"), order.Requester{
		UserID: claims.UserID,
		Role:   claims.Role,
	})
	if err != nil {
		return err
	}
	return response.Success(c, "Order retrieved", o)
}

// ListSellerOrders returns the authenticated seller's payout history.
func (h *OrderHandler) ListSellerOrders(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	page, err := h.orders.ListSellerOrders(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	p.Total = page.Total
	return c.JSON(pagination.Response(p, page.Orders))
}

// ListBuyerOrders returns the authenticated buyer's purchases.
func (h *OrderHandler) ListBuyerOrders(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	page, err := h.orders.ListBuyerOrders(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	p.Total = page.Total
	return c.JSON(pagination.Response(p, page.Orders))
}
