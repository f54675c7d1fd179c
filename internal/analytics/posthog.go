// Package analytics captures ecommerce events in PostHog.
package analytics

import (
	"context"
	"fmt"

	"github.com/posthog/posthog-go"
)

const DefaultEndpoint = "https://eu.i.posthog.com"

type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PostHog queues events for background delivery. Capture does not wait for
// the network.
type PostHog struct {
	client enqueuer
}

func NewPostHog(apiKey, endpoint string) (*PostHog, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		return nil, fmt.Errorf("posthog client: %w", err)
	}
	return &PostHog{client: client}, nil
}

func (p *PostHog) Capture(_ context.Context, distinctID, event string, props map[string]any) error {
	if distinctID == "" {
		return nil
	}
	properties := posthog.NewProperties()
	for k, v := range props {
		properties.Set(k, v)
	}
	if err := p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		return fmt.Errorf("enqueue %q: %w", event, err)
	}
	return nil
}

// Close flushes queued events.
func (p *PostHog) Close() error {
	return p.client.Close()
}

// Noop is used when no PostHog key is configured.
type Noop struct{}

func (Noop) Capture(context.Context, string, string, map[string]any) error { return nil }
