package depgraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(lists ...[]string) []Node {
	out := make([]Node, 0, len(lists))
	for _, s := range lists {
		out = append(out, Node{ID: s[0], Dependencies: s[1:]})
	}
	return out
}

func position(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return pos
}

func TestSort_Empty(t *testing.T) {
	result := Sort(nil)
	assert.Empty(t, result.Order)
	assert.Empty(t, result.Cycles)
}

func TestSort_Chain(t *testing.T) {
	result := Sort(nodes(
		[]string{"c", "b"},
		[]string{"b", "a"},
		[]string{"a"},
	))

	assert.Equal(t, []string{"a", "b", "c"}, result.Order)
	assert.Empty(t, result.Cycles)
}

func TestSort_LeavesKeepInputOrder(t *testing.T) {
	result := Sort(nodes(
		[]string{"z"},
		[]string{"m"},
		[]string{"a"},
	))

	assert.Equal(t, []string{"z", "m", "a"}, result.Order)
}

func TestSort_Diamond(t *testing.T) {
	result := Sort(nodes(
		[]string{"top", "left", "right"},
		[]string{"left", "base"},
		[]string{"right", "base"},
		[]string{"base"},
	))

	assert.Equal(t, []string{"base", "left", "right", "top"}, result.Order)
	assert.Empty(t, result.Cycles)
}

// TestSort_ThreeNodeCycle tests that A → B → C → A is reported once and
// every node is still ordered.
func TestSort_ThreeNodeCycle(t *testing.T) {
	result := Sort(nodes(
		[]string{"a", "b"},
		[]string{"b", "c"},
		[]string{"c", "a"},
	))

	require.Len(t, result.Cycles, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, result.Cycles[0].Path)
	assert.Contains(t, result.Cycles[0].Message, "a → b → c → a")
	assert.Equal(t, []string{"c", "b", "a"}, result.Order)
}

func TestSort_SelfLoop(t *testing.T) {
	result := Sort(nodes([]string{"a", "a"}))

	require.Len(t, result.Cycles, 1)
	assert.Equal(t, []string{"a", "a"}, result.Cycles[0].Path)
	assert.Contains(t, result.Cycles[0].Message, "Self-dependency")
	assert.Equal(t, []string{"a"}, result.Order)
}

func TestSort_CycleWithTail(t *testing.T) {
	// tail depends on the loop; the loop x ⇄ y is broken.
	result := Sort(nodes(
		[]string{"tail", "x"},
		[]string{"x", "y"},
		[]string{"y", "x"},
		[]string{"free"},
	))

	require.Len(t, result.Cycles, 1)
	assert.Equal(t, []string{"x", "y", "x"}, result.Cycles[0].Path)
	assert.Equal(t, []string{"y", "x", "tail", "free"}, result.Order)
}

func TestSort_DanglingDependenciesIgnored(t *testing.T) {
	result := Sort(nodes(
		[]string{"a", "ghost", "b"},
		[]string{"b"},
	))

	assert.Equal(t, []string{"b", "a"}, result.Order)
	assert.Empty(t, result.Cycles)
}

func TestSort_DuplicateNodeIDs(t *testing.T) {
	result := Sort(nodes(
		[]string{"a"},
		[]string{"a"},
	))
	assert.Equal(t, []string{"a"}, result.Order)
}

func TestSort_Totality(t *testing.T) {
	// Dense graph with many back edges: every node i depends on i+1 and i-3.
	const n = 40
	var ns []Node
	for i := 0; i < n; i++ {
		var deps []string
		if i+1 < n {
			deps = append(deps, fmt.Sprintf("n%02d", i+1))
		}
		if i >= 3 {
			deps = append(deps, fmt.Sprintf("n%02d", i-3))
		}
		ns = append(ns, Node{ID: fmt.Sprintf("n%02d", i), Dependencies: deps})
	}

	result := Sort(ns)

	require.Len(t, result.Order, n)
	seen := make(map[string]bool)
	for _, id := range result.Order {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.NotEmpty(t, result.Cycles)
	for _, c := range result.Cycles {
		assert.Equal(t, c.Path[0], c.Path[len(c.Path)-1], "cycle must close on itself")
	}
}

func TestSort_PartialOrderOnAcyclicGraph(t *testing.T) {
	ns := nodes(
		[]string{"e", "c", "d"},
		[]string{"a"},
		[]string{"d", "b"},
		[]string{"c", "a", "b"},
		[]string{"b", "a"},
		[]string{"f"},
	)

	result := Sort(ns)
	require.Empty(t, result.Cycles)
	pos := position(result.Order)

	for _, n := range ns {
		for _, dep := range n.Dependencies {
			assert.Less(t, pos[dep], pos[n.ID], "%s must precede %s", dep, n.ID)
		}
	}
}

func TestSort_DeepChainDoesNotRecurse(t *testing.T) {
	const n = 200000
	ns := make([]Node, n)
	for i := 0; i < n; i++ {
		ns[i] = Node{ID: fmt.Sprintf("n%d", i)}
		if i+1 < n {
			ns[i].Dependencies = []string{fmt.Sprintf("n%d", i+1)}
		}
	}

	result := Sort(ns)

	require.Len(t, result.Order, n)
	assert.Equal(t, fmt.Sprintf("n%d", n-1), result.Order[0])
	assert.Equal(t, "n0", result.Order[n-1])
}
