// Package explain builds the navigable explanation graph attached to a
// computation run: a rooted, acyclic tree of nodes documenting how each
// output figure was derived and which transactions fed it.
package explain

import (
	"fmt"
)

// KV is one named value in a node's input or output snapshot. Ordered
// slices, not maps, keep serialization deterministic.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Node documents one derivation step
type Node struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Formula        string   `json:"formula,omitempty"`
	Inputs         []KV     `json:"inputs,omitempty"`
	Outputs        []KV     `json:"outputs,omitempty"`
	Children       []string `json:"children,omitempty"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
}

// Graph is an arena-style store of explanation nodes with a single recorded
// root. The graph is acyclic by construction: children are added before
// their parent references them.
type Graph struct {
	Nodes  map[string]*Node `json:"nodes"`
	RootID string           `json:"root_id"`
}

// NewGraph creates an empty explanation graph
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// Add stores a node in the arena
func (g *Graph) Add(node *Node) {
	g.Nodes[node.ID] = node
}

// SetRoot records the top-level node
func (g *Graph) SetRoot(id string) {
	g.RootID = id
}

// Root returns the root node, or nil when unset
func (g *Graph) Root() *Node {
	return g.Nodes[g.RootID]
}

// Validate checks the graph invariants: exactly one resolvable root, all
// child references resolving within the graph, and no cycles.
func (g *Graph) Validate() error {
	if g.RootID == "" {
		return fmt.Errorf("explanation graph has no root")
	}
	if _, ok := g.Nodes[g.RootID]; !ok {
		return fmt.Errorf("explanation root %s does not resolve", g.RootID)
	}

	for id, node := range g.Nodes {
		for _, child := range node.Children {
			if _, ok := g.Nodes[child]; !ok {
				return fmt.Errorf("node %s references missing child %s", id, child)
			}
		}
	}

	// Cycle check via coloring
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make(map[string]int, len(g.Nodes))
	var visit func(id string) error
	visit = func(id string) error {
		switch colors[id] {
		case gray:
			return fmt.Errorf("explanation graph has a cycle through %s", id)
		case black:
			return nil
		}
		colors[id] = gray
		for _, child := range g.Nodes[id].Children {
			if err := visit(child); err != nil {
				return err
			}
		}
		colors[id] = black
		return nil
	}
	for id := range g.Nodes {
		if err := visit(id); err != nil {
			return err
		}
	}

	return nil
}
