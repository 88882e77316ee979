// Package reminders exposes Apple Reminders through remindctl.
package reminders

import (
	"context"
	"encoding/json"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/integrations/shell"
	"github.com/gofiber/fiber/v2"
)

const Name = "reminders"

// New returns the reminders integration backed by run.
func New(run shell.Runner) integrations.Integration {
	ctl := NewRemindctl(run)
	m := manifest(ctl)
	return integrations.Integration{
		Manifest: m,
		Mount: func(r fiber.Router, opts integrations.MountOptions) {
			mount(r, ctl, m, opts)
		},
	}
}

func manifest(ctl *Remindctl) integrations.Manifest {
	return integrations.Manifest{
		Name:    Name,
		Version: "0.1.0",
		NativeDeps: []integrations.NativeDep{
			{Name: binary, Check: ctl.Available},
		},
		Capabilities: []integrations.Capability{
			{Name: "list_lists", Description: "List all Reminders lists", ParamsSchema: listListsSchema},
			{Name: "list_reminders", Description: "List reminders in a specific list", ParamsSchema: listRemindersSchema},
			{Name: "get_reminder", Description: "Get a specific reminder by ID", ParamsSchema: getReminderSchema},
			{Name: "add", Description: "Add a new reminder", RequiresApproval: true, ParamsSchema: addReminderSchema},
			{Name: "edit", Description: "Edit an existing reminder", RequiresApproval: true, ParamsSchema: editReminderSchema},
			{Name: "complete", Description: "Mark a reminder as complete", RequiresApproval: true, ParamsSchema: idSchema},
			{Name: "delete", Description: "Delete a reminder", RequiresApproval: true, ParamsSchema: idSchema},
		},
		Actions: map[string]integrations.Action{
			"add": {
				Name:         "add",
				Description:  "Add a new reminder",
				ParamsSchema: addReminderSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[AddParams](raw)
					if err != nil {
						return nil, err
					}
					return ctl.Add(ctx, p)
				},
			},
			"edit": {
				Name:         "edit",
				Description:  "Edit an existing reminder",
				ParamsSchema: editReminderSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[EditParams](raw)
					if err != nil {
						return nil, err
					}
					return ctl.Edit(ctx, p)
				},
			},
			"complete": {
				Name:         "complete",
				Description:  "Mark a reminder as complete",
				ParamsSchema: idSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[IDParams](raw)
					if err != nil {
						return nil, err
					}
					if err := ctl.Complete(ctx, p.ID); err != nil {
						return nil, err
					}
					return map[string]any{"id": p.ID, "completed": true}, nil
				},
			},
			"delete": {
				Name:         "delete",
				Description:  "Delete a reminder",
				ParamsSchema: idSchema,
				Execute: func(ctx context.Context, raw json.RawMessage) (any, error) {
					p, err := integrations.DecodeParams[IDParams](raw)
					if err != nil {
						return nil, err
					}
					if err := ctl.Delete(ctx, p.ID); err != nil {
						return nil, err
					}
					return map[string]any{"id": p.ID, "deleted": true}, nil
				},
			},
		},
	}
}

func mount(r fiber.Router, ctl *Remindctl, m integrations.Manifest, opts integrations.MountOptions) {
	r.Get("/lists", func(c *fiber.Ctx) error {
		lists, err := ctl.ListLists(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"items": lists})
	})

	r.Post("/list", func(c *fiber.Ctx) error {
		var req struct {
			List string `json:"list"`
		}
		if err := integrations.BindParams(c, listRemindersSchema, &req); err != nil {
			return err
		}
		reminders, err := ctl.ListReminders(c.UserContext(), req.List)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"items": reminders})
	})

	r.Post("/get", func(c *fiber.Ctx) error {
		var req IDParams
		if err := integrations.BindParams(c, getReminderSchema, &req); err != nil {
			return err
		}
		reminder, err := ctl.GetReminder(c.UserContext(), req.ID)
		if err != nil {
			return err
		}
		if reminder == nil {
			return apperr.NotFound("Reminder %q not found", req.ID)
		}
		return c.JSON(fiber.Map{"item": reminder})
	})

	integrations.MountActions(r, m, opts.Approval)
}
