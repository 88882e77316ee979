package calendar

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fruitctl/fruitctl/internal/integrations/shell"
)

const binary = "ekctl"

type Calendar struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Type                string `json:"type"`
	Source              string `json:"source"`
	AllowsModifications bool   `json:"allowsModifications"`
	Color               string `json:"color"`
}

// Event is passed through as reported by ekctl.
type Event map[string]any

type AddEventParams struct {
	Calendar string `json:"calendar"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
	AllDay   bool   `json:"allDay,omitempty"`
}

type DeleteEventParams struct {
	ID string `json:"id"`
}

// Ekctl wraps the ekctl command-line tool.
type Ekctl struct {
	run shell.Runner
}

func NewEkctl(run shell.Runner) *Ekctl {
	if run == nil {
		run = shell.ExecRunner{}
	}
	return &Ekctl{run: run}
}

func (e *Ekctl) Available(ctx context.Context) bool {
	return shell.Available(ctx, e.run, binary, "--version")
}

// ListCalendars returns event calendars only; reminder lists are skipped.
func (e *Ekctl) ListCalendars(ctx context.Context) ([]Calendar, error) {
	var out struct {
		Calendars []Calendar `json:"calendars"`
	}
	if err := e.runJSON(ctx, &out, "list", "calendars"); err != nil {
		return nil, err
	}
	calendars := make([]Calendar, 0, len(out.Calendars))
	for _, c := range out.Calendars {
		if c.Type == "event" {
			calendars = append(calendars, c)
		}
	}
	return calendars, nil
}

func (e *Ekctl) ListEvents(ctx context.Context, calendar, from, to string) ([]Event, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	if err := e.runJSON(ctx, &out, "list", "events", "--calendar", calendar, "--from", from, "--to", to); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (e *Ekctl) ShowEvent(ctx context.Context, id string) (Event, error) {
	var out struct {
		Event Event `json:"event"`
	}
	if err := e.runJSON(ctx, &out, "show", "event", id); err != nil {
		return nil, err
	}
	return out.Event, nil
}

func (e *Ekctl) AddEvent(ctx context.Context, p AddEventParams) (map[string]any, error) {
	args := []string{"add", "event",
		"--calendar", p.Calendar,
		"--title", p.Title,
		"--start", p.Start,
		"--end", p.End,
	}
	if p.Location != "" {
		args = append(args, "--location", p.Location)
	}
	if p.Notes != "" {
		args = append(args, "--notes", p.Notes)
	}
	if p.AllDay {
		args = append(args, "--all-day")
	}

	var created map[string]any
	if err := e.runJSON(ctx, &created, args...); err != nil {
		return nil, err
	}
	return created, nil
}

func (e *Ekctl) DeleteEvent(ctx context.Context, id string) error {
	_, err := e.run.Run(ctx, binary, "delete", "event", id)
	return err
}

func (e *Ekctl) runJSON(ctx context.Context, dst any, args ...string) error {
	out, err := e.run.Run(ctx, binary, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, dst); err != nil {
		return fmt.Errorf("%s %s: decode output: %w", binary, args[0], err)
	}
	return nil
}
