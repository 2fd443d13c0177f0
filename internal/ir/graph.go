package ir

import "fmt"

// Graph wraps a workflow's nodes and edges for topological-order and
// linear-chain checks. Adapted from a general DAG topological sort (the
// teacher's pkg/graph.Graph) to spec.md §3's tighter requirement: the edge
// set must form a LINEAR chain, not merely an acyclic one — every node has
// at most one successor.
type Graph struct {
	nodes []NodeSpec
	edges []Edge
}

// NewGraph builds a Graph view over a workflow's nodes and edges.
func NewGraph(nodes []NodeSpec, edges []Edge) *Graph {
	return &Graph{nodes: nodes, edges: edges}
}

// TopologicalOrder returns node IDs in dependency order, matching Kahn's
// algorithm the way the teacher's pkg/graph.Graph.TopologicalSort does: seed
// the queue with zero-in-degree nodes in declared node order (so nodes the
// edges leave unordered keep the order the IR lists them in), then drain it,
// decrementing neighbor in-degree as we go. If fewer nodes come out than
// went in, the edge set contains a cycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	n := len(g.nodes)
	if n == 0 {
		return []string{}, nil
	}

	inDegree := make(map[string]int, n)
	adjacency := make(map[string][]string, n)
	for _, node := range g.nodes {
		inDegree[node.ID] = 0
	}
	for _, e := range g.edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		inDegree[e.To]++
	}

	var queue []string
	for _, node := range g.nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, n)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		var next []string
		for _, neighbor := range adjacency[current] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				next = append(next, neighbor)
			}
		}
		insertionSort(next)
		queue = append(queue, next...)
	}

	if len(order) != n {
		return nil, fmt.Errorf("workflow graph contains a cycle")
	}
	return order, nil
}

func insertionSort(arr []string) {
	for i := 1; i < len(arr); i++ {
		key := arr[i]
		j := i - 1
		for j >= 0 && arr[j] > key {
			arr[j+1] = arr[j]
			j--
		}
		arr[j+1] = key
	}
}

// ValidateLinearChain performs spec.md §3/§4.1 Layer 2 validation: every edge
// endpoint must reference an existing node, every node has at most one
// outgoing and one incoming edge (a linear chain, not a general DAG), there
// are no cycles, and the resulting topological order must equal the IR's
// declared `nodes` order (spec.md: "nodes order is the execution order").
func ValidateLinearChain(w *Workflow) []ErrorRecord {
	var records []ErrorRecord

	ids := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		ids[n.ID] = true
	}

	outDegree := make(map[string]int)
	inDegree := make(map[string]int)
	for _, e := range w.Edges {
		if !ids[e.From] {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategoryGraph,
				Message:  fmt.Sprintf("edge references unknown source node %q", e.From),
				Fixable:  true,
			})
		}
		if !ids[e.To] {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategoryGraph,
				Message:  fmt.Sprintf("edge references unknown target node %q", e.To),
				Fixable:  true,
			})
		}
		outDegree[e.From]++
		inDegree[e.To]++
	}
	if len(records) > 0 {
		return records
	}

	for id, d := range outDegree {
		if d > 1 {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategoryGraph,
				Message:  fmt.Sprintf("node %q has %d outgoing edges; the chain must be linear (at most 1)", id, d),
				NodeID:   id,
				Fixable:  true,
			})
		}
	}
	for id, d := range inDegree {
		if d > 1 {
			records = append(records, ErrorRecord{
				Source:   SourceValidation,
				Category: CategoryGraph,
				Message:  fmt.Sprintf("node %q has %d incoming edges; the chain must be linear (at most 1)", id, d),
				NodeID:   id,
				Fixable:  true,
			})
		}
	}
	if len(records) > 0 {
		return records
	}

	g := NewGraph(w.Nodes, w.Edges)
	order, err := g.TopologicalOrder()
	if err != nil {
		records = append(records, ErrorRecord{
			Source:   SourceValidation,
			Category: CategoryGraph,
			Message:  err.Error(),
			Fixable:  false,
		})
		return records
	}

	declared := make([]string, len(w.Nodes))
	for i, n := range w.Nodes {
		declared[i] = n.ID
	}
	if !sameOrder(order, declared) {
		records = append(records, ErrorRecord{
			Source:   SourceValidation,
			Category: CategoryGraph,
			Message:  "declared node order does not match the topological order implied by edges",
			Fixable:  true,
		})
	}

	return records
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Precedes reports whether node `a` comes strictly before node `b` in the
// IR's declared node order — the check Layer 3 uses to decide whether a
// template may reference a node (spec.md §4.1 Layer 3: "a node that precedes
// the referencing node in topological order").
func Precedes(w *Workflow, a, b string) bool {
	ai, bi := -1, -1
	for i, n := range w.Nodes {
		if n.ID == a {
			ai = i
		}
		if n.ID == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return false
	}
	return ai < bi
}
