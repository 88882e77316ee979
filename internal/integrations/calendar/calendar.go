// Package calendar exposes Apple Calendar through ekctl.
package calendar

import (
	"context"
	"encoding/json"

	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/integrations/shell"
	"github.com/gofiber/fiber/v2"
)

const Name = "calendar"

func New(run shell.Runner) integrations.Integration {
	ctl := NewEkctl(run)
	m := integrations.Manifest{
		Name:    Name,
		Version: "0.1.0",
		NativeDeps: []integrations.NativeDep{
			{Name: binary, Check: ctl.Available},
		},
		Capabilities: []integrations.Capability{
			{Name: "list_calendars", Description: "List all event calendars", ParamsSchema: listCalendarsSchema},
			{Name: "list_events", Description: "List events in a calendar within a time range", ParamsSchema: listEventsSchema},
			{Name: "show_event", Description: "Get a specific event by ID", ParamsSchema: showEventSchema},
			{Name: "add", Description: "Add a new calendar event", RequiresApproval: true, ParamsSchema: addEventSchema},
			{Name: "delete", Description: "Delete a calendar event", RequiresApproval: true, ParamsSchema: deleteEventSchema},
		},
		Actions: map[string]integrations.Action{
			"add": {
				Name:         "add",
				Description:  "Add a new calendar event",
				ParamsSchema: addEventSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[AddEventParams](raw)
					if err != nil {
						return nil, err
					}
					return ctl.AddEvent(ctx, p)
				},
			},
			"delete": {
				Name:         "delete",
				Description:  "Delete a calendar event",
				ParamsSchema: deleteEventSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[DeleteEventParams](raw)
					if err != nil {
						return nil, err
					}
					if err := ctl.DeleteEvent(ctx, p.ID); err != nil {
						return nil, err
					}
					return map[string]any{"id": p.ID, "deleted": true}, nil
				},
			},
		},
	}

	return integrations.Integration{
		Manifest: m,
		Mount: func(r fiber.Router, opts integrations.MountOptions) {
			r.Get("/calendars", func(c *fiber.Ctx) error {
				calendars, err := ctl.ListCalendars(c.UserContext())
				if err != nil {
					return err
				}
				return c.JSON(fiber.Map{"items": calendars})
			})

			r.Get("/events", func(c *fiber.Ctx) error {
				query := map[string]any{}
				for _, k := range []string{"calendar", "from", "to"} {
					if v := c.Query(k); v != "" {
						query[k] = v
					}
				}
				if err := listEventsSchema.ValidateValue(query); err != nil {
					return err
				}
				events, err := ctl.ListEvents(c.UserContext(), c.Query("calendar"), c.Query("from"), c.Query("to"))
				if err != nil {
					return err
				}
				return c.JSON(fiber.Map{"items": events})
			})

			r.Get("/events/:id", func(c *fiber.Ctx) error {
				event, err := ctl.ShowEvent(c.UserContext(), c.Params("id"))
				if err != nil {
					return err
				}
				return c.JSON(fiber.Map{"item": event})
			})

			integrations.MountActions(r, m, opts.Approval)
		},
	}
}
