package depgraph

import (
	"fmt"
	"strings"
)

// Cycle is a dependency loop that the sort broke to finish.
//
// Cycles are not errors. Stored links written by operators, or heuristics
// that point both ways, can legitimately produce loops; the operator needs
// to see them, but planning must not stop.
type Cycle struct {
	Path    []string `json:"path"`    // Closes on itself: ["a", "b", "c", "a"]
	Message string   `json:"message"` // Human-readable description
}

// SortResult is the outcome of a cycle-tolerant topological sort.
type SortResult struct {
	Order  []string `json:"order"`
	Cycles []Cycle  `json:"cycles"`
}

// frame is one level of the explicit DFS stack.
type frame struct {
	id   string
	next int // index of the next dependency to visit
}

// Sort orders nodes so that every dependency precedes its dependents.
//
// The algorithm is a depth-first postorder over dependency lists, walking
// nodes in input order. When a dependency is already on the current path
// the back edge closes a cycle: the cycle is recorded and the edge is
// treated as satisfied, so every node still finishes and appears in Order
// exactly once. Only along a broken back edge is the ordering relaxed.
//
// The DFS keeps its own stack instead of recursing, so deep dependency
// chains in large tenants cannot exhaust the goroutine stack.
//
// Leaves with no dependencies keep their relative input order. The result
// is a valid order, not the only valid one.
func Sort(nodes []Node) SortResult {
	deps := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if _, dup := deps[n.ID]; !dup {
			deps[n.ID] = n.Dependencies
		}
	}

	result := SortResult{
		Order:  make([]string, 0, len(deps)),
		Cycles: []Cycle{},
	}

	visited := make(map[string]bool, len(deps))
	onPath := make(map[string]int) // id → position in path
	var path []string
	var stack []frame

	push := func(id string) {
		onPath[id] = len(path)
		path = append(path, id)
		stack = append(stack, frame{id: id})
	}

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}
		push(n.ID)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := deps[top.id]

			if top.next < len(children) {
				dep := children[top.next]
				top.next++

				if _, isNode := deps[dep]; !isNode || visited[dep] {
					continue
				}
				if pos, ok := onPath[dep]; ok {
					result.Cycles = append(result.Cycles, newCycle(path[pos:], dep))
					continue
				}
				push(dep)
				continue
			}

			// All dependencies done: finish the node.
			visited[top.id] = true
			delete(onPath, top.id)
			result.Order = append(result.Order, top.id)
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}

	return result
}

func newCycle(suffix []string, closing string) Cycle {
	p := make([]string, 0, len(suffix)+1)
	p = append(p, suffix...)
	p = append(p, closing)

	if len(p) == 2 {
		return Cycle{
			Path:    p,
			Message: fmt.Sprintf("Self-dependency broken: %s → %s", p[0], p[1]),
		}
	}
	return Cycle{
		Path:    p,
		Message: fmt.Sprintf("Dependency cycle broken: %s", strings.Join(p, " → ")),
	}
}
