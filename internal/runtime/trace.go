package runtime

import (
	"context"
	"slices"
	"time"

	"github.com/aretw0/aacflow/pkg/domain"
)

// Trace wraps step so that every invocation appends one entry to the debug
// trace: the node's declared reads before the call and its declared writes
// after it. A failed invocation is recorded with an "error" output and the
// unchanged state. Existing entries are never modified.
func Trace(node domain.Node, step domain.Step, now func() time.Time) domain.Step {
	return func(ctx context.Context, in domain.WorkflowState) (domain.WorkflowState, error) {
		inputs := in.Snapshot(node.Contract.Reads...)

		out, err := step(ctx, in)

		entry := domain.TraceEntry{
			Step:   node.ID,
			Inputs: inputs,
			At:     now().UTC(),
		}
		if err != nil {
			out = in
			entry.Outputs = map[string]any{"error": err.Error()}
		} else {
			entry.Outputs = out.Snapshot(node.Contract.Writes...)
		}

		// Copy before appending so a caller holding `in` never sees the entry.
		trace := slices.Clone(out.DebugTrace)
		out.DebugTrace = append(trace, entry)
		return out, err
	}
}
