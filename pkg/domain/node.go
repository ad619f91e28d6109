package domain

import "context"

// NodeFinish is the virtual terminal node. Routing to it ends the run.
const NodeFinish = "finish"

// Step is the body of a node: it maps a state to a new state,
// performing at most one external call.
type Step func(ctx context.Context, state WorkflowState) (WorkflowState, error)

// Router picks the next node from the state a node produced.
type Router func(state WorkflowState) string

// Contract declares which state fields a node reads and which it may write.
// The engine rejects any write outside Writes.
type Contract struct {
	Reads  []string `json:"reads,omitempty" yaml:"reads,omitempty"`
	Writes []string `json:"writes,omitempty" yaml:"writes,omitempty"`
}

// Allows reports whether field is among the declared writes.
func (c Contract) Allows(field string) bool {
	for _, w := range c.Writes {
		if w == field {
			return true
		}
	}
	return false
}

// Transition defines a possible edge out of a node.
type Transition struct {
	ToNodeID string `json:"to_node_id" yaml:"to"`

	// Condition is a human-readable label for a routed edge.
	// If empty, it is the unconditional edge.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Node represents a logical unit in the graph.
type Node struct {
	ID          string
	Description string
	Run         Step
	Contract    Contract

	// Transitions defines the possible paths from this node.
	// A node without transitions ends the run.
	Transitions []Transition

	// Route selects among Transitions. Nil means the first transition is always taken.
	Route Router
}

// Targets returns the IDs the node may transition to.
func (n Node) Targets() []string {
	out := make([]string, 0, len(n.Transitions))
	for _, t := range n.Transitions {
		out = append(out, t.ToNodeID)
	}
	return out
}

// CanReach reports whether target is a declared transition of the node.
func (n Node) CanReach(target string) bool {
	for _, t := range n.Transitions {
		if t.ToNodeID == target {
			return true
		}
	}
	return false
}
