package integrations

import (
	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// ProposeHandler validates the request body against the action's schema and
// records a pending proposal for it. It never executes the action.
func ProposeHandler(p Proposer, integration string, action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := action.ParamsSchema.Validate(c.Body())
		if err != nil {
			return err
		}
		proposal, err := p.Propose(c.UserContext(), integration, action.Name, params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(proposal)
	}
}

// MountActions mounts a POST /<action> propose route for every action in m.
func MountActions(r fiber.Router, m Manifest, p Proposer) {
	for name, action := range m.Actions {
		if action.Name == "" {
			action.Name = name
		}
		r.Post("/"+name, ProposeHandler(p, m.Name, action))
	}
}

// BindParams validates the body against schema and decodes it into dst.
func BindParams(c *fiber.Ctx, schema *Schema, dst any) error {
	raw, err := schema.Validate(c.Body())
	if err != nil {
		return err
	}
	if err := decodeParams(raw, dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}
