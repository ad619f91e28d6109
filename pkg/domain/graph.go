package domain

// Graph is a compiled, read-only workflow definition.
type Graph struct {
	entry string
	nodes map[string]Node
	order []string
}

// NewGraph assembles a graph from nodes in declaration order.
// Structural validation lives in the dsl builder; NewGraph only indexes.
func NewGraph(entry string, nodes ...Node) *Graph {
	g := &Graph{
		entry: entry,
		nodes: make(map[string]Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; !dup {
			g.order = append(g.order, n.ID)
		}
		g.nodes[n.ID] = n
	}
	return g
}

// Entry returns the ID of the first node of a run.
func (g *Graph) Entry() string {
	return g.entry
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in declaration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodeDescription is the serializable view of a node.
type NodeDescription struct {
	ID          string       `json:"id" yaml:"id"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Reads       []string     `json:"reads,omitempty" yaml:"reads,omitempty"`
	Writes      []string     `json:"writes,omitempty" yaml:"writes,omitempty"`
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

// GraphDescription is the serializable view of a graph, used by introspection tools.
type GraphDescription struct {
	Entry string            `json:"entry" yaml:"entry"`
	Nodes []NodeDescription `json:"nodes" yaml:"nodes"`
}

// Describe returns a serializable description of g.
func (g *Graph) Describe() GraphDescription {
	desc := GraphDescription{Entry: g.entry}
	for _, n := range g.Nodes() {
		desc.Nodes = append(desc.Nodes, NodeDescription{
			ID:          n.ID,
			Description: n.Description,
			Reads:       n.Contract.Reads,
			Writes:      n.Contract.Writes,
			Transitions: n.Transitions,
		})
	}
	return desc
}
