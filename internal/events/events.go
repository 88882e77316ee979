package events

import "context"

// Stream carrying proposal lifecycle events.
const StreamProposals = "events:proposals"

// Event types
const (
	EventProposalCreated  = "proposal.created"
	EventProposalResolved = "proposal.resolved"
	EventProposalsExpired = "proposals.expired"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops events. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
