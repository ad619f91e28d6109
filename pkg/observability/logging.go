package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/aacflow/pkg/domain"
)

// LoggingHooks logs every engine event at debug level.
// Provider prompts and replies are only logged when withPayloads is set,
// since they carry the user's phrases.
func LoggingHooks(logger *slog.Logger, withPayloads bool) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "run_id", e.RunID, "node_id", e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"run_id", e.RunID,
				"node_id", e.NodeID,
				"next", e.Next,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnProviderCall: func(ctx context.Context, e *domain.ProviderEvent) {
			attrs := []any{"run_id", e.RunID, "node_id", e.NodeID, "role", e.Role}
			if withPayloads {
				attrs = append(attrs, "prompt", e.Prompt)
			}
			logger.DebugContext(ctx, "provider_call", attrs...)
		},
		OnProviderReturn: func(ctx context.Context, e *domain.ProviderEvent) {
			attrs := []any{"run_id", e.RunID, "node_id", e.NodeID, "role", e.Role, "duration", e.Duration}
			if withPayloads {
				attrs = append(attrs, "reply", e.Reply)
			}
			if e.IsError {
				logger.ErrorContext(ctx, "provider_return", append(attrs, "is_error", true)...)
				return
			}
			logger.DebugContext(ctx, "provider_return", attrs...)
		},
	}
}
