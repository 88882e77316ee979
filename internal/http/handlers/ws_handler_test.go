package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/auth"
	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/fruitctl/fruitctl/internal/http/dto"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const wsTestSecret = "ws-test-secret-value"

type fakeSubscriber struct {
	mu       sync.Mutex
	stream   string
	handlers []func(events.Event)
}

func (s *fakeSubscriber) Subscribe(_ context.Context, stream string, handler func(events.Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream = stream
	s.handlers = append(s.handlers, handler)
	return nil
}

func (s *fakeSubscriber) emit(e events.Event) {
	s.mu.Lock()
	handlers := append([]func(events.Event){}, s.handlers...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(e)
	}
}

func startHub(t *testing.T) (*WSHub, *fakeSubscriber, string) {
	t.Helper()
	sub := &fakeSubscriber{}
	hub := NewWSHub(auth.NewGate(wsTestSecret), sub, zap.NewNop())
	require.NoError(t, hub.Start(context.Background()))
	assert.Equal(t, events.StreamProposals, sub.stream)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use("/ws", WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(hub.HandleWS))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return hub, sub, "ws://" + ln.Addr().String() + "/ws"
}

func dial(t *testing.T, url string) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	return conn
}

func TestWSHub_RejectsBadToken(t *testing.T) {
	hub, _, url := startHub(t)

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing token", "", "Missing credentials"},
		{"wrong token", "?token=fctl_admin_deadbeef", "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, url+tt.query)
			defer conn.Close()

			_, data, err := conn.ReadMessage()
			require.NoError(t, err)
			var env dto.ErrorResponse
			require.NoError(t, json.Unmarshal(data, &env))
			require.NotNil(t, env.Error)
			assert.Equal(t, apperr.CodeUnauthorized, env.Error.Code)
			assert.Equal(t, tt.message, env.Error.Message)
			assert.False(t, env.Error.Retryable)

			_, _, err = conn.ReadMessage()
			assert.Error(t, err, "connection is closed after the error frame")
		})
	}
	assert.Equal(t, 0, hub.Len())
}

func TestWSHub_RelaysEventsToClients(t *testing.T) {
	hub, sub, url := startHub(t)

	conn := dial(t, url+"?token="+auth.DeriveToken(wsTestSecret, auth.RoleAgent))
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	sub.emit(events.Event{
		Type:    events.EventProposalResolved,
		Payload: map[string]any{"id": "p-1", "status": "approved"},
	})

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got events.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, events.EventProposalResolved, got.Type)
	assert.Equal(t, "p-1", got.Payload["id"])
	assert.Equal(t, "approved", got.Payload["status"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWSUpgradeMiddleware_RequiresUpgrade(t *testing.T) {
	app := fiber.New()
	app.Use("/ws", WSUpgradeMiddleware())
	app.Get("/ws", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
