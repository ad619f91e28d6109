package dsl

import (
	"fmt"

	"github.com/aretw0/aacflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	entry string
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Entry sets the node a run starts at. Defaults to the first node added.
func (b *Builder) Entry(id string) *Builder {
	b.entry = id
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID: id,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	if b.entry == "" {
		b.entry = id
	}
	return nb
}

// Build validates the graph and compiles it.
func (b *Builder) Build() (*domain.Graph, error) {
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", domain.ErrInvalidGraph)
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("%w: entry node %q is not defined", domain.ErrInvalidGraph, b.entry)
	}

	nodes := make([]domain.Node, 0, len(b.nodes))
	for _, id := range b.order {
		n := b.nodes[id].node
		if err := b.validateNode(n); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	return domain.NewGraph(b.entry, nodes...), nil
}

func (b *Builder) validateNode(n domain.Node) error {
	if n.ID == domain.NodeFinish {
		return fmt.Errorf("%w: %q is reserved for the terminal node", domain.ErrInvalidGraph, n.ID)
	}
	if n.Run == nil {
		return fmt.Errorf("%w: node %q has no step", domain.ErrInvalidGraph, n.ID)
	}
	if n.Route == nil && len(n.Transitions) > 1 {
		return fmt.Errorf("%w: node %q has %d transitions but no router", domain.ErrInvalidGraph, n.ID, len(n.Transitions))
	}
	if n.Route != nil && len(n.Transitions) == 0 {
		return fmt.Errorf("%w: node %q has a router but no transitions", domain.ErrInvalidGraph, n.ID)
	}
	for _, t := range n.Transitions {
		if t.ToNodeID == domain.NodeFinish {
			continue
		}
		if _, ok := b.nodes[t.ToNodeID]; !ok {
			return fmt.Errorf("%w: node %q transitions to undefined node %q", domain.ErrInvalidGraph, n.ID, t.ToNodeID)
		}
	}
	return nil
}
