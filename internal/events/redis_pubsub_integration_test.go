//go:build integration

package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fruitctl/fruitctl/internal/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Run with: FRUITCTL_REDIS_URL=redis://... go test -tags integration ./internal/events/
func TestRedisPubSub_RoundTrip(t *testing.T) {
	url := os.Getenv("FRUITCTL_REDIS_URL")
	if url == "" {
		t.Skip("FRUITCTL_REDIS_URL not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, url, zap.NewNop())
	require.NoError(t, err)
	defer rdb.Close()

	stream := "events:test:" + uuid.NewString()
	received := make(chan Event, 1)
	sub := NewRedisSubscriber(rdb, zap.NewNop())
	require.NoError(t, sub.Subscribe(ctx, stream, func(e Event) { received <- e }))

	pub := NewRedisPublisher(rdb, zap.NewNop())
	require.NoError(t, pub.Publish(ctx, stream, Event{
		Type:    EventProposalCreated,
		Payload: map[string]any{"id": "p-1"},
	}))

	select {
	case e := <-received:
		assert.Equal(t, EventProposalCreated, e.Type)
		assert.Equal(t, "p-1", e.Payload["id"])
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}
