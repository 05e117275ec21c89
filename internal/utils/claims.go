package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mealpay/internal/models"
)

// ClaimsLocalKey is the fiber.Ctx locals key holding *models.UserClaims.
const ClaimsLocalKey = "claims"

var (
	ErrNoMarketplaceUser = errors.New("no authenticated buyer or seller on request")
	ErrMalformedClaims   = errors.New("request claims are not marketplace user claims")
)

// GetUserClaims returns the buyer, seller or admin the auth middleware
// attached to the request. Handlers answer 401 on either error.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	v := c.Locals(ClaimsLocalKey)
	if v == nil {
		return nil, ErrNoMarketplaceUser
	}

	claims, ok := v.(*models.UserClaims)
	if !ok || claims == nil {
		return nil, ErrMalformedClaims
	}
	if claims.UserID == 0 {
		return nil, ErrNoMarketplaceUser
	}
	return claims, nil
}
