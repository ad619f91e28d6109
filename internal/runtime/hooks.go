package runtime

import (
	"context"
	"time"

	"github.com/aretw0/aacflow/pkg/domain"
)

func (e *Engine) emitNodeEnter(ctx context.Context, runID, nodeID string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventNodeEnter,
			RunID:     runID,
		},
		NodeID: nodeID,
	})
}

// emitNodeLeave reports what the node changed between before and after.
// The diff is only computed when someone listens.
func (e *Engine) emitNodeLeave(ctx context.Context, before, after domain.WorkflowState, nodeID, next string, d time.Duration, isError bool) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventNodeLeave,
			RunID:     before.RunID,
		},
		NodeID:   nodeID,
		Next:     next,
		Duration: d,
		IsError:  isError,
		Diff:     domain.Diff(before, after),
	})
}
