package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/fruitctl/fruitctl/internal/integrations/shell"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProposer struct {
	got []models.Proposal
}

func (p *stubProposer) Propose(_ context.Context, integration, action string, params json.RawMessage) (*models.Proposal, error) {
	prop := models.Proposal{ID: "p-1", Integration: integration, Action: action, Params: params,
		Status: models.ProposalStatusPending, CreatedAt: time.Now()}
	p.got = append(p.got, prop)
	return &prop, nil
}

func recordingRunner(calls *[][]string, out string, err error) shell.Runner {
	return shell.RunnerFunc(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != binary {
			return nil, errors.New("unexpected binary " + name)
		}
		*calls = append(*calls, args)
		return []byte(out), err
	})
}

func newApp(in integrations.Integration, p integrations.Proposer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(fiber.Map{"error": e})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	in.Mount(app.Group("/"+in.Manifest.Name), integrations.MountOptions{Approval: p, Log: zap.NewNop()})
	return app
}

func TestProbe(t *testing.T) {
	var calls [][]string
	reg := integrations.Register(context.Background(),
		[]integrations.Integration{New(recordingRunner(&calls, "ekctl 1.0", nil))}, zap.NewNop())
	assert.Equal(t, []string{Name}, reg.Registered)
	assert.Equal(t, [][]string{{"--version"}}, calls)

	calls = nil
	reg = integrations.Register(context.Background(),
		[]integrations.Integration{New(recordingRunner(&calls, "", errors.New("not found")))}, zap.NewNop())
	assert.Equal(t, []string{Name}, reg.Skipped)
}

func TestListCalendarsKeepsEventCalendars(t *testing.T) {
	var calls [][]string
	ctl := NewEkctl(recordingRunner(&calls, `{"calendars":[
		{"id":"c-1","title":"Work","type":"event"},
		{"id":"c-2","title":"Groceries","type":"reminder"}
	]}`, nil))

	calendars, err := ctl.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 1)
	assert.Equal(t, "Work", calendars[0].Title)
	assert.Equal(t, []string{"list", "calendars"}, calls[0])
}

func TestAddEventAction(t *testing.T) {
	var calls [][]string
	in := New(recordingRunner(&calls, `{"status":"success","event":{"id":"e-1"}}`, nil))

	out, err := in.Manifest.Actions["add"].Execute(context.Background(), json.RawMessage(`{
		"calendar":"c-1","title":"Standup","start":"2026-03-01T09:00:00Z","end":"2026-03-01T09:15:00Z","allDay":true
	}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "success", "event": map[string]any{"id": "e-1"}}, out)
	assert.Equal(t, []string{"add", "event",
		"--calendar", "c-1", "--title", "Standup",
		"--start", "2026-03-01T09:00:00Z", "--end", "2026-03-01T09:15:00Z",
		"--all-day"}, calls[0])
}

func TestEventsQueryIsValidated(t *testing.T) {
	var calls [][]string
	app := newApp(New(recordingRunner(&calls, `{"events":[{"id":"e-1"}]}`, nil)), &stubProposer{})

	resp, err := app.Test(httptest.NewRequest("GET", "/calendar/events?calendar=c-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, calls)

	resp, err = app.Test(httptest.NewRequest("GET", "/calendar/events?calendar=c-1&from=2026-03-01&to=2026-03-02", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"items":[{"id":"e-1"}]}`, string(body))
	assert.Equal(t, []string{"list", "events", "--calendar", "c-1", "--from", "2026-03-01", "--to", "2026-03-02"}, calls[0])
}

func TestDeleteProposeRoute(t *testing.T) {
	var calls [][]string
	p := &stubProposer{}
	app := newApp(New(recordingRunner(&calls, "", nil)), p)

	req := httptest.NewRequest("POST", "/calendar/delete", strings.NewReader(`{"id":"e-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, p.got, 1)
	assert.Equal(t, "calendar", p.got[0].Integration)
	assert.Empty(t, calls, "proposing never runs ekctl")
}
