package notification

import "context"

// Notification is the payload handed to the delivery collaborator. Delivery
// transport and retries are the collaborator's concern, not the engine's.
type Notification struct {
	ClientID string         `json:"client_id"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

type Provider interface {
	Send(ctx context.Context, n Notification) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, n Notification) error {
	return nil
}
