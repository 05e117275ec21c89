package handlers

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/utils/response"
)

// ErrorHandler is installed as fiber's ErrorHandler so errors returned from
// handlers and middleware share one JSON shape.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if de, ok := apperrors.AsDomain(err); ok {
			if response.StatusFor(de) >= fiber.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return response.Domain(c, de)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Code, fe.Message)
		}

		logger.Error("unhandled error", zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(err))
		return response.ServerError(c, "internal server error")
	}
}

// decodeNumber reads a JSON number. Missing, null and non-numeric values
// come back as NaN so the fee calculator rejects them with the right kind.
func decodeNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return math.NaN()
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return math.NaN()
	}
	return *f
}
