// Package flow holds the in-memory model of a project's flows: named graphs
// of jobs connected by dependency edges.
package flow

import "sort"

// Project is the unit the loaders populate.
type Project struct {
	ID    int
	Name  string
	Flows map[string]*Flow
}

// NewProject creates a project with an empty flow map.
func NewProject(id int, name string) *Project {
	return &Project{
		ID:    id,
		Name:  name,
		Flows: make(map[string]*Flow),
	}
}

// FlowNames returns the project's flow names, sorted.
func (p *Project) FlowNames() []string {
	return sortedKeys(p.Flows)
}

// Node is a job descriptor inside a flow.
type Node struct {
	Name         string
	Type         string
	Dependencies []string
	EmbeddedFlow string // Set when Type is "flow"
	Source       string // Job file or manifest the node was declared in
	PropsSource  string // Shared properties file the job inherits from
}

// IsEmbeddedFlow returns true if the node stands for another flow.
func (n *Node) IsEmbeddedFlow() bool {
	return n.Type == string(JobFlow)
}

// EdgeKind distinguishes plain dependencies from embedded flow references.
type EdgeKind int

const (
	EdgeDependency EdgeKind = iota // Job waits on another job
	EdgeEmbedded                   // Job expands into another flow
)

// String returns the string representation of EdgeKind
func (k EdgeKind) String() string {
	switch k {
	case EdgeDependency:
		return "dependency"
	case EdgeEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Edge points from a job to what it waits on.
type Edge struct {
	From  string
	To    string
	Kind  EdgeKind
	Error string // Non-empty when the edge could not be resolved
}

// ID returns the edge in "from->to" form.
func (e Edge) ID() string {
	return e.From + "->" + e.To
}

// HasError returns true if the edge is broken.
func (e Edge) HasError() bool {
	return e.Error != ""
}

// Flow is a named graph of jobs.
type Flow struct {
	Name          string
	Nodes         map[string]*Node
	Edges         []*Edge
	EmbeddedFlows []string
	Errors        []string
}

// New creates an empty flow.
func New(name string) *Flow {
	return &Flow{
		Name:  name,
		Nodes: make(map[string]*Node),
	}
}

// AddNode adds or replaces a node.
func (f *Flow) AddNode(n *Node) {
	f.Nodes[n.Name] = n
}

// AddEdge appends an edge.
func (f *Flow) AddEdge(e *Edge) {
	f.Edges = append(f.Edges, e)
}

// AddEmbeddedFlow records a flow this flow expands into. Duplicates are
// ignored.
func (f *Flow) AddEmbeddedFlow(name string) {
	for _, existing := range f.EmbeddedFlows {
		if existing == name {
			return
		}
	}
	f.EmbeddedFlows = append(f.EmbeddedFlows, name)
}

// AddError flags the flow as unusable.
func (f *Flow) AddError(msg string) {
	f.Errors = append(f.Errors, msg)
}

// IsValid returns true if the flow has no recorded errors.
func (f *Flow) IsValid() bool {
	return len(f.Errors) == 0
}

// NodeNames returns the flow's job names, sorted.
func (f *Flow) NodeNames() []string {
	return sortedKeys(f.Nodes)
}

// Node returns the named job, or nil.
func (f *Flow) Node(name string) *Node {
	return f.Nodes[name]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
