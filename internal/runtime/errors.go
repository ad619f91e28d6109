package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/aacflow/pkg/domain"
)

// NodeError reports a node whose step failed. State is the run state at the
// time of failure, with the failing node's trace entry appended.
type NodeError struct {
	NodeID string
	Err    error
	State  domain.WorkflowState
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' failed: %v", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// ContractViolationError reports a node that wrote fields it did not declare.
type ContractViolationError struct {
	NodeID string
	Fields []string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("node '%s' wrote undeclared fields: %s", e.NodeID, strings.Join(e.Fields, ", "))
}
