package events

import "context"

// Channels
const (
	ChannelSecurityAlerts = "events:security"
)

// Event types
const (
	EventSuspiciousRequest = "suspicious_request"
	EventBruteForceLockout = "brute_force_lockout"
	EventAuthFailure       = "auth_failure"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(Event)) error
}
