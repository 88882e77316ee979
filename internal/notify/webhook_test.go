package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fruitctl/fruitctl/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		event events.Event
		want  string
	}{
		{
			events.Event{Type: events.EventProposalCreated, Payload: map[string]any{"id": "p1", "integration": "reminders", "action": "add"}},
			"New proposal p1: reminders.add awaits approval",
		},
		{
			events.Event{Type: events.EventProposalResolved, Payload: map[string]any{"id": "p1", "status": "approved", "resolvedBy": "admin"}},
			"Proposal p1 approved by admin",
		},
		{
			events.Event{Type: events.EventProposalsExpired, Payload: map[string]any{"count": 3}},
			"3 pending proposals expired",
		},
		{events.Event{Type: "other"}, "Event: other"},
	}

	for _, tt := range tests {
		t.Run(tt.event.Type, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.event))
		})
	}
}

func TestWebhookClient_Send(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, zap.NewNop())
	c.Forward(context.Background(), events.Event{
		Type:    events.EventProposalCreated,
		Payload: map[string]any{"id": "p1", "integration": "calendar", "action": "delete"},
	})

	assert.Equal(t, events.EventProposalCreated, got.Type)
	assert.Equal(t, "New proposal p1: calendar.delete awaits approval", got.Text)
	assert.Equal(t, "p1", got.Payload["id"])
}

func TestWebhookClient_SendReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookClient(srv.URL, zap.NewNop()).Send(context.Background(), Message{Type: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
