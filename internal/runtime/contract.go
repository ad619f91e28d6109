package runtime

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
)

// Enforce wraps the node's step so that any change to a field outside the
// node's declared writes fails the invocation. The step receives a private
// copy of the state, so a rejected result never leaks into the run.
func Enforce(node domain.Node) domain.Step {
	return func(ctx context.Context, in domain.WorkflowState) (domain.WorkflowState, error) {
		out, err := node.Run(ctx, in.Clone())
		if err != nil {
			return in, err
		}

		var undeclared []string
		for _, field := range domain.ChangedFields(in, out) {
			if !node.Contract.Allows(field) {
				undeclared = append(undeclared, field)
			}
		}
		if len(undeclared) > 0 {
			return in, &ContractViolationError{NodeID: node.ID, Fields: undeclared}
		}
		return out, nil
	}
}
