package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProposer struct {
	calls []models.Proposal
}

func (p *recordingProposer) Propose(ctx context.Context, integration, action string, params json.RawMessage) (*models.Proposal, error) {
	prop := models.Proposal{
		ID:          "p-1",
		Integration: integration,
		Action:      action,
		Params:      params,
		Status:      models.ProposalStatusPending,
		CreatedAt:   time.Now(),
	}
	p.calls = append(p.calls, prop)
	return &prop, nil
}

func probe(name string, ok bool, calls *[]string) NativeDep {
	return NativeDep{Name: name, Check: func(context.Context) bool {
		*calls = append(*calls, name)
		return ok
	}}
}

func okAction(name string) Action {
	return Action{Name: name, Execute: func(context.Context, json.RawMessage) (any, error) {
		return name, nil
	}}
}

func testIntegration(name string, deps []NativeDep, caps []Capability, actions map[string]Action) Integration {
	return Integration{
		Manifest: Manifest{Name: name, Version: "0.1.0", NativeDeps: deps, Capabilities: caps, Actions: actions},
		Mount: func(r fiber.Router, opts MountOptions) {
			r.Get("/ping", func(c *fiber.Ctx) error { return c.SendString(name) })
		},
	}
}

func TestRegister_SkipsIntegrationsWithFailingProbes(t *testing.T) {
	var calls []string
	good := testIntegration("reminders",
		[]NativeDep{probe("remindctl", true, &calls)},
		[]Capability{{Name: "list_lists"}},
		map[string]Action{"add": okAction("add")})
	bad := testIntegration("calendar",
		[]NativeDep{probe("ekctl", false, &calls), probe("never-run", true, &calls)},
		[]Capability{{Name: "list_calendars"}},
		map[string]Action{"delete": okAction("delete")})

	reg := Register(context.Background(), []Integration{good, bad}, zap.NewNop())

	assert.Equal(t, []string{"reminders"}, reg.Registered)
	assert.Equal(t, []string{"calendar"}, reg.Skipped)
	require.Len(t, reg.Capabilities, 1)
	assert.Equal(t, "list_lists", reg.Capabilities[0].Name)
	assert.Equal(t, []string{"remindctl", "ekctl"}, calls, "probes short-circuit on first failure")

	_, ok := reg.Registry.Lookup("reminders", "add")
	assert.True(t, ok)
	_, ok = reg.Registry.Lookup("calendar", "delete")
	assert.False(t, ok, "skipped integrations contribute no actions")
	assert.Equal(t, 1, reg.Registry.Len())
}

func TestRegister_MountsRegisteredUnderNamespace(t *testing.T) {
	var calls []string
	good := testIntegration("reminders", []NativeDep{probe("remindctl", true, &calls)}, nil, nil)
	bad := testIntegration("calendar", []NativeDep{probe("ekctl", false, &calls)}, nil, nil)
	reg := Register(context.Background(), []Integration{good, bad}, zap.NewNop())

	app := fiber.New()
	reg.Mount(app, MountOptions{Log: zap.NewNop()})

	resp, err := app.Test(httptest.NewRequest("GET", "/reminders/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "reminders", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/calendar/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRegister_EmptyInput(t *testing.T) {
	reg := Register(context.Background(), nil, zap.NewNop())
	assert.Empty(t, reg.Registered)
	assert.Empty(t, reg.Skipped)
	assert.NotNil(t, reg.Capabilities)
	assert.Equal(t, 0, reg.Registry.Len())
}

func TestRegistry_NilIsDecisionOnly(t *testing.T) {
	var r *Registry
	_, ok := r.Lookup("reminders", "add")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_IgnoresActionsWithoutExecute(t *testing.T) {
	r := NewRegistry(testIntegration("notes", nil, nil, map[string]Action{
		"add":    okAction("add"),
		"broken": {Name: "broken"},
	}))
	_, ok := r.Lookup("notes", "broken")
	assert.False(t, ok)
	a, ok := r.Lookup("notes", "add")
	require.True(t, ok)
	out, err := a.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "add", out)
}

func TestProposeHandler_ValidatesAgainstSchema(t *testing.T) {
	schema := MustCompileSchema("test/add", `{
		"type": "object",
		"properties": {"title": {"type": "string", "minLength": 1}},
		"required": ["title"]
	}`)
	p := &recordingProposer{}
	m := Manifest{Name: "reminders", Actions: map[string]Action{
		"add": {Name: "add", ParamsSchema: schema, Execute: okAction("add").Execute},
	}}

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			return c.Status(e.Status()).JSON(e)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	MountActions(app.Group("/reminders"), m, p)

	req := httptest.NewRequest("POST", "/reminders/add", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, p.calls)

	req = httptest.NewRequest("POST", "/reminders/add", strings.NewReader(`not json`))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("POST", "/reminders/add", strings.NewReader(`{"title":"Buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	require.Len(t, p.calls, 1)
	assert.Equal(t, "reminders", p.calls[0].Integration)
	assert.Equal(t, "add", p.calls[0].Action)
	assert.JSONEq(t, `{"title":"Buy milk"}`, string(p.calls[0].Params))

	var got models.Proposal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, models.ProposalStatusPending, got.Status)
}

func TestSchema_MarshalsSource(t *testing.T) {
	capability := Capability{Name: "get", ParamsSchema: MustCompileSchema("test/get", `{"type":"object"}`)}
	data, err := json.Marshal(capability)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"get","description":"","requiresApproval":false,"paramsSchema":{"type":"object"}}`, string(data))
}

func TestCompileSchema_RejectsInvalidDocument(t *testing.T) {
	_, err := CompileSchema("test/bad", `{"type":`)
	assert.Error(t, err)
}
