package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter      EventType = "node_enter"
	EventNodeLeave      EventType = "node_leave"
	EventProviderCall   EventType = "provider_call"
	EventProviderReturn EventType = "provider_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`

	// Set on leave only.
	Next     string        `json:"next,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Diff     *StateDiff    `json:"diff,omitempty"`
}

// ProviderEvent represents a call to a generation or verification provider.
type ProviderEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Role     string        `json:"role"`
	Prompt   string        `json:"prompt,omitempty"`
	Reply    string        `json:"reply,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any hook may be nil; hooks never influence control flow.
type LifecycleHooks struct {
	OnNodeEnter      func(context.Context, *NodeEvent)
	OnNodeLeave      func(context.Context, *NodeEvent)
	OnProviderCall   func(context.Context, *ProviderEvent)
	OnProviderReturn func(context.Context, *ProviderEvent)
}

type runKey struct{}

// RunInfo identifies the run and node on whose behalf a context is used.
type RunInfo struct {
	RunID  string
	NodeID string
}

// WithRunInfo attaches run information to ctx so adapters can label their events.
func WithRunInfo(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runKey{}, info)
}

// RunInfoFrom extracts run information previously attached with WithRunInfo.
func RunInfoFrom(ctx context.Context) RunInfo {
	info, _ := ctx.Value(runKey{}).(RunInfo)
	return info
}
