package dsl

import "github.com/aretw0/aacflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Describe sets a human-readable description used by introspection tools.
func (n *NodeBuilder) Describe(text string) *NodeBuilder {
	n.node.Description = text
	return n
}

// Do sets the step executed when the node runs.
func (n *NodeBuilder) Do(step domain.Step) *NodeBuilder {
	n.node.Run = step
	return n
}

// Reads declares the state fields the node consumes.
func (n *NodeBuilder) Reads(fields ...string) *NodeBuilder {
	n.node.Contract.Reads = append(n.node.Contract.Reads, fields...)
	return n
}

// Writes declares the state fields the node may replace.
func (n *NodeBuilder) Writes(fields ...string) *NodeBuilder {
	n.node.Contract.Writes = append(n.node.Contract.Writes, fields...)
	return n
}

// Go adds an unconditional transition to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		ToNodeID: target,
	})
	return n
}

// Branch adds a labelled transition that the node's router may select.
func (n *NodeBuilder) Branch(condition string, target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Condition: condition,
		ToNodeID:  target,
	})
	return n
}

// Route sets the decision function choosing among the node's branches.
func (n *NodeBuilder) Route(router domain.Router) *NodeBuilder {
	n.node.Route = router
	return n
}

// Finish routes the node unconditionally to the terminal node.
func (n *NodeBuilder) Finish() *NodeBuilder {
	return n.Go(domain.NodeFinish)
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
