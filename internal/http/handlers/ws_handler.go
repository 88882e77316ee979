package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/fruitctl/fruitctl/internal/auth"
	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/fruitctl/fruitctl/internal/http/dto"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WSHub relays proposal lifecycle events to connected clients.
type WSHub struct {
	gate        *auth.Gate
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.Mutex
	connections map[*websocket.Conn]struct{}
}

func NewWSHub(gate *auth.Gate, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		gate:        gate,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[*websocket.Conn]struct{}),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamProposals, h.broadcast)
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}

// Len is the number of connected clients.
func (h *WSHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// HandleWS authenticates with the capability token in ?token= since
// browsers cannot set headers on websocket requests.
func (h *WSHub) HandleWS(conn *websocket.Conn) {
	role, err := h.gate.Authenticate(conn.Query("token"))
	if err != nil {
		appErr, ok := apperr.As(err)
		if !ok {
			appErr = apperr.Unauthorized("Invalid credentials")
		}
		if data, err := json.Marshal(dto.ErrorResponse{Error: appErr}); err == nil {
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
		conn.Close()
		return
	}

	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("ws client connected", zap.String("role", string(role)))

	defer func() {
		h.mu.Lock()
		delete(h.connections, conn)
		h.mu.Unlock()
		conn.Close()
		h.log.Debug("ws client disconnected", zap.String("role", string(role)))
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
