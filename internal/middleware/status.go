package middleware

import (
	"errors"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

func statusOf(err error) int {
	if e, ok := apperr.As(err); ok {
		return e.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
