package reminders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fruitctl/fruitctl/internal/integrations/shell"
)

const binary = "remindctl"

type List struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Reminder is passed through as reported by remindctl.
type Reminder map[string]any

type AddParams struct {
	Title    string `json:"title"`
	List     string `json:"list,omitempty"`
	Due      string `json:"due,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Priority string `json:"priority,omitempty"`
}

type EditParams struct {
	ID       string  `json:"id"`
	Title    *string `json:"title,omitempty"`
	List     *string `json:"list,omitempty"`
	Due      *string `json:"due,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

type IDParams struct {
	ID string `json:"id"`
}

// Remindctl wraps the remindctl command-line tool.
type Remindctl struct {
	run shell.Runner
}

func NewRemindctl(run shell.Runner) *Remindctl {
	if run == nil {
		run = shell.ExecRunner{}
	}
	return &Remindctl{run: run}
}

func (r *Remindctl) Available(ctx context.Context) bool {
	return shell.Available(ctx, r.run, binary, "status")
}

func (r *Remindctl) ListLists(ctx context.Context) ([]List, error) {
	var lists []List
	if err := r.runJSON(ctx, &lists, "list", "--json"); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *Remindctl) ListReminders(ctx context.Context, list string) ([]Reminder, error) {
	var reminders []Reminder
	if err := r.runJSON(ctx, &reminders, "list", list, "--json"); err != nil {
		return nil, err
	}
	return reminders, nil
}

// GetReminder returns nil when no reminder has the id.
func (r *Remindctl) GetReminder(ctx context.Context, id string) (Reminder, error) {
	var all []Reminder
	if err := r.runJSON(ctx, &all, "all", "--json"); err != nil {
		return nil, err
	}
	for _, rem := range all {
		if rem["id"] == id {
			return rem, nil
		}
	}
	return nil, nil
}

func (r *Remindctl) Add(ctx context.Context, p AddParams) (Reminder, error) {
	args := []string{"add", "--title", p.Title}
	args = appendFlag(args, "--list", p.List)
	args = appendFlag(args, "--due", p.Due)
	args = appendFlag(args, "--notes", p.Notes)
	args = appendFlag(args, "--priority", p.Priority)
	args = append(args, "--json")

	var created Reminder
	if err := r.runJSON(ctx, &created, args...); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Remindctl) Edit(ctx context.Context, p EditParams) (Reminder, error) {
	args := []string{"edit", p.ID}
	args = appendOptional(args, "--title", p.Title)
	args = appendOptional(args, "--list", p.List)
	args = appendOptional(args, "--due", p.Due)
	args = appendOptional(args, "--notes", p.Notes)
	args = appendOptional(args, "--priority", p.Priority)
	args = append(args, "--json")

	var updated Reminder
	if err := r.runJSON(ctx, &updated, args...); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Remindctl) Complete(ctx context.Context, id string) error {
	_, err := r.run.Run(ctx, binary, "complete", id)
	return err
}

func (r *Remindctl) Delete(ctx context.Context, id string) error {
	_, err := r.run.Run(ctx, binary, "delete", id, "--force")
	return err
}

func (r *Remindctl) runJSON(ctx context.Context, dst any, args ...string) error {
	out, err := r.run.Run(ctx, binary, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, dst); err != nil {
		return fmt.Errorf("%s %s: decode output: %w", binary, args[0], err)
	}
	return nil
}

func appendFlag(args []string, flag, value string) []string {
	if value == "" {
		return args
	}
	return append(args, flag, value)
}

func appendOptional(args []string, flag string, value *string) []string {
	if value == nil {
		return args
	}
	return append(args, flag, *value)
}
