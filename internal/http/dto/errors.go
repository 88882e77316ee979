package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler writes errors in the ErrorResponse envelope. Application errors
// are returned as is; anything unexpected is logged and hidden behind
// INTERNAL_ERROR.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			if e.Details == nil {
				e = e.WithDetails(map[string]any{})
			}
			return c.Status(e.Status()).JSON(ErrorResponse{Error: e})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fromFiber(fe)})
		}

		reqID, _ := c.Locals("request_id").(string)
		log.Error("unhandled error",
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: apperr.Internal()})
	}
}

func fromFiber(fe *fiber.Error) *apperr.Error {
	switch fe.Code {
	case fiber.StatusNotFound:
		return apperr.NotFound("%s", fe.Message)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperr.Validation("%s", fe.Message)
	case fiber.StatusUnauthorized:
		return apperr.Unauthorized(fe.Message)
	case fiber.StatusForbidden:
		return apperr.Forbidden(fe.Message)
	}
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
	if code == "" {
		code = "HTTP_ERROR"
	}
	return apperr.New(code, fe.Message)
}
