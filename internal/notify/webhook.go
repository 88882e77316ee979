// Package notify forwards proposal lifecycle events to an HTTP webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fruitctl/fruitctl/internal/events"
	"go.uber.org/zap"
)

// Message is the body posted to the webhook.
type Message struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
}

// WebhookClient posts Messages to a single URL.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookClient(url string, log *zap.Logger) *WebhookClient {
	return &WebhookClient{
		url: strings.TrimSpace(url),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(data))
	}
	return nil
}

// Forward sends event to the webhook, logging failures.
func (c *WebhookClient) Forward(ctx context.Context, event events.Event) {
	msg := Message{Type: event.Type, Text: Describe(event), Payload: event.Payload}
	if err := c.Send(ctx, msg); err != nil {
		c.log.Warn("failed to forward notification", zap.String("type", event.Type), zap.Error(err))
	}
}

// Describe renders a one-line summary of event.
func Describe(event events.Event) string {
	p := event.Payload
	switch event.Type {
	case events.EventProposalCreated:
		return fmt.Sprintf("New proposal %v: %v.%v awaits approval", p["id"], p["integration"], p["action"])
	case events.EventProposalResolved:
		return fmt.Sprintf("Proposal %v %v by %v", p["id"], p["status"], p["resolvedBy"])
	case events.EventProposalsExpired:
		return fmt.Sprintf("%v pending proposals expired", p["count"])
	}
	return fmt.Sprintf("Event: %s", event.Type)
}
