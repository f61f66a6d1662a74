// Package depgraph turns a tenant's asset set into a migration plan graph:
// dependency inference, graph construction and a cycle-tolerant
// topological sort.
//
// Cycles are reported, never rejected. A cycle is data for the operator;
// the sort breaks it and still returns a total order.
package depgraph

import (
	"github.com/roach88/scriptplan/internal/asset"
	"github.com/roach88/scriptplan/internal/rules"
)

// EdgeType distinguishes real blocking relationships from the
// presentation-only chain through the suggested order.
type EdgeType string

const (
	EdgeDependency     EdgeType = "dependency"
	EdgeSuggestedOrder EdgeType = "suggested_order"
)

// Node is one non-terminal asset in the graph.
//
// Dependencies may contain ids that are not graph nodes; those are kept
// for transparency but never produce edges.
type Node struct {
	ID           string   `json:"id"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
}

// Edge points from a dependency to its dependent.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Type EdgeType `json:"type"`
}

// Graph is the per-run planning view. It is never persisted.
type Graph struct {
	Nodes          []Node   `json:"nodes"`
	Edges          []Edge   `json:"edges"`
	SuggestedOrder []string `json:"suggested_order"`
	Cycles         []Cycle  `json:"cycles"`

	byID map[string]int
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// DependentCount returns how many nodes depend on id.
func (g *Graph) DependentCount(id string) int {
	n, ok := g.Node(id)
	if !ok {
		return 0
	}
	return len(n.Dependents)
}

// DependencyEdges returns only the edges that are real constraints.
func (g *Graph) DependencyEdges() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Type == EdgeDependency {
			out = append(out, e)
		}
	}
	return out
}

// BuildGraph infers dependencies for every non-terminal asset and assembles
// the full graph, including the suggested order and detected cycles.
func BuildGraph(assets []asset.Asset, r rules.Rules) *Graph {
	idx := asset.NewIndex(assets)
	inf := NewInferrer(idx, r)

	active := idx.Active()
	ids := make([]string, 0, len(active))
	deps := make(map[string][]string, len(active))
	for _, a := range active {
		ids = append(ids, a.ID)
		deps[a.ID] = inf.Infer(*a)
	}

	return Build(ids, deps)
}

// Build assembles a graph from node ids (in input order) and their
// dependency lists.
func Build(ids []string, deps map[string][]string) *Graph {
	g := &Graph{
		Nodes:  make([]Node, 0, len(ids)),
		Edges:  []Edge{},
		Cycles: []Cycle{},
		byID:   make(map[string]int, len(ids)),
	}

	for _, id := range ids {
		if _, dup := g.byID[id]; dup {
			continue
		}
		g.byID[id] = len(g.Nodes)
		d := deps[id]
		if d == nil {
			d = []string{}
		}
		g.Nodes = append(g.Nodes, Node{ID: id, Dependencies: d, Dependents: []string{}})
	}

	// Invert forward edges. Dangling dependency ids stay on the node only.
	for _, n := range g.Nodes {
		seen := make(map[string]bool, len(n.Dependencies))
		for _, dep := range n.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			di, ok := g.byID[dep]
			if !ok {
				continue
			}
			g.Nodes[di].Dependents = append(g.Nodes[di].Dependents, n.ID)
			g.Edges = append(g.Edges, Edge{From: dep, To: n.ID, Type: EdgeDependency})
		}
	}

	result := Sort(g.Nodes)
	g.SuggestedOrder = result.Order
	g.Cycles = result.Cycles
	for i := 1; i < len(result.Order); i++ {
		g.Edges = append(g.Edges, Edge{
			From: result.Order[i-1],
			To:   result.Order[i],
			Type: EdgeSuggestedOrder,
		})
	}

	return g
}
