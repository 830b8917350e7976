// Package graph finds dependency cycles in a directed graph of jobs and
// embedded flows.
package graph

import (
	"sort"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
)

// Graph is a directed graph keyed by node ID. Edges point from a job to what
// it waits on.
type Graph struct {
	nodes map[string]bool
	adj   map[string][]flow.Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]bool),
		adj:   make(map[string][]flow.Edge),
	}
}

// AddNode adds id if it is not present yet.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = true
}

// AddEdge adds an edge, adding both endpoints as nodes.
func (g *Graph) AddEdge(from, to string, kind flow.EdgeKind) {
	g.AddNode(from)
	g.AddNode(to)
	g.adj[from] = append(g.adj[from], flow.Edge{From: from, To: to, Kind: kind})
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// visitState tracks a node's progress through the walk.
type visitState int

const (
	unvisited  visitState = iota
	inProgress            // On the walk stack
	done                  // Assigned to a component
)

type walker struct {
	g     *Graph
	state map[string]visitState
	index map[string]int
	low   map[string]int
	comp  map[string]int
	stack []string
	next  int
	ncomp int
}

// CycleEdges returns every edge that lies on a cycle, sorted by ID. Each
// cycle of n edges contributes n entries; a self-loop contributes one.
func (g *Graph) CycleEdges() []flow.Edge {
	w := &walker{
		g:     g,
		state: make(map[string]visitState, len(g.nodes)),
		index: make(map[string]int, len(g.nodes)),
		low:   make(map[string]int, len(g.nodes)),
		comp:  make(map[string]int, len(g.nodes)),
	}
	for _, id := range g.sortedNodes() {
		if w.state[id] == unvisited {
			w.visit(id)
		}
	}

	var out []flow.Edge
	for _, id := range g.sortedNodes() {
		for _, e := range g.adj[id] {
			// Both endpoints in one strongly connected component means the
			// edge closes a path back to its source.
			if w.comp[e.From] == w.comp[e.To] {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

func (w *walker) visit(v string) {
	w.state[v] = inProgress
	w.index[v] = w.next
	w.low[v] = w.next
	w.next++
	w.stack = append(w.stack, v)

	for _, e := range w.g.adj[v] {
		switch w.state[e.To] {
		case unvisited:
			w.visit(e.To)
			w.low[v] = min(w.low[v], w.low[e.To])
		case inProgress:
			// Back edge into the current walk: do not recurse.
			w.low[v] = min(w.low[v], w.index[e.To])
		}
	}

	if w.low[v] != w.index[v] {
		return
	}
	for {
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.state[top] = done
		w.comp[top] = w.ncomp
		if top == v {
			break
		}
	}
	w.ncomp++
}

// Reachable returns the set of nodes reachable from root, root included.
func (g *Graph) Reachable(root string) map[string]bool {
	seen := make(map[string]bool)
	if !g.nodes[root] {
		return seen
	}
	queue := []string{root}
	seen[root] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.adj[cur] {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return seen
}

// ReachesAny returns true if any of targets is reachable from root.
func (g *Graph) ReachesAny(root string, targets map[string]bool) bool {
	if len(targets) == 0 {
		return false
	}
	for id := range g.Reachable(root) {
		if targets[id] {
			return true
		}
	}
	return false
}

func (g *Graph) sortedNodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
