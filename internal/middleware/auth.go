package middleware

import (
	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/auth"
	"github.com/fruitctl/fruitctl/internal/rbac"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const CtxRole = "role"

// AuthMiddleware authenticates the bearer capability token and stores the role.
func AuthMiddleware(gate *auth.Gate, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := gate.Authenticate(auth.BearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			log.Debug("authentication failed", zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return err
		}
		c.Locals(CtxRole, role)
		return c.Next()
	}
}

func GetRole(c *fiber.Ctx) auth.Role {
	role, _ := c.Locals(CtxRole).(auth.Role)
	return role
}

// RequirePermission rejects authenticated requests whose role lacks perm.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return apperr.Unauthorized("Missing credentials")
		}
		if !rbac.HasPermission(role, perm) {
			return apperr.Forbidden("Role " + string(role) + " may not perform this operation").
				WithDetails(map[string]any{"role": string(role), "permission": perm})
		}
		return c.Next()
	}
}
