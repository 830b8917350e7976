package loader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/graph"
	"github.com/devicelab-dev/flowcheck/pkg/logger"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

// File extensions recognised by the directory loader.
const (
	JobExtension        = ".job"
	PropertiesExtension = ".properties"
)

// DirectoryLoader loads one job per <name>.job file found under a project
// directory. Every job that no other job depends on roots a flow of the
// same name.
type DirectoryLoader struct {
	base *props.Props
}

// NewDirectoryLoader creates a loader whose job bags all inherit from base.
// base is only read.
func NewDirectoryLoader(base *props.Props) *DirectoryLoader {
	return &DirectoryLoader{base: base}
}

// Load walks dir and builds its flows. A missing or unreadable directory
// yields an empty outcome.
func (l *DirectoryLoader) Load(project *flow.Project, dir string) *Outcome {
	s := &dirLoad{
		root:    dir,
		out:     NewOutcome(),
		nodes:   make(map[string]*flow.Node),
		edges:   make(map[string][]*flow.Edge),
		dupJobs: make(duplicates),
		graph:   graph.New(),
	}

	s.walk(dir, l.base)
	s.resolveDependencies()
	s.buildFlows()
	s.resolveEmbeddedFlows()
	checkCycles(s.out, s.graph, s.flowRoots())

	logger.Debug("Loaded %d job(s) into %d flow(s) from %s for project %q",
		len(s.nodes), len(s.out.Flows), dir, projectName(project))
	return s.out
}

// dirLoad is the state of a single Load call.
type dirLoad struct {
	root    string
	out     *Outcome
	nodes   map[string]*flow.Node
	edges   map[string][]*flow.Edge // Keyed by dependent job
	dupJobs duplicates
	graph   *graph.Graph
}

func (s *dirLoad) rel(path string) string {
	if r, err := filepath.Rel(s.root, path); err == nil {
		return r
	}
	return path
}

// walk loads the shared properties of dir, then its job files, then its
// sub-directories. Each properties file chains onto the previous one, so
// jobs see every shared file of their directory and its ancestors.
func (s *dirLoad) walk(dir string, parent *props.Props) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Cannot read %s, no jobs loaded from it: %v", dir, err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) || filepath.Ext(e.Name()) != PropertiesExtension {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := props.LoadFile(parent, path)
		if err != nil {
			record(s.out.Errors, msgPropsFile, s.rel(path), err.Error())
			continue
		}
		p.SetSource(s.rel(path))
		s.out.Props = append(s.out.Props, p)
		parent = p
	}

	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) || filepath.Ext(e.Name()) != JobExtension {
			continue
		}
		s.loadJob(filepath.Join(dir, e.Name()), parent)
	}

	for _, e := range entries {
		if e.IsDir() && !isHidden(e.Name()) {
			s.walk(filepath.Join(dir, e.Name()), parent)
		}
	}
}

func (s *dirLoad) loadJob(path string, parent *props.Props) {
	name := strings.TrimSuffix(filepath.Base(path), JobExtension)
	if s.dupJobs[name] {
		return
	}
	if _, exists := s.nodes[name]; exists {
		s.dupJobs.firstRepeat(name)
		record(s.out.Errors, msgDuplicateJob, name)
		delete(s.nodes, name)
		delete(s.out.JobProps, name)
		return
	}

	p, err := props.LoadFile(parent, path)
	if err != nil {
		record(s.out.Errors, msgJobFile, s.rel(path), err.Error())
		return
	}
	p.SetSource(s.rel(path))

	node := &flow.Node{
		Name:         name,
		Type:         p.GetString(flow.PropType, ""),
		Dependencies: p.GetStringList(flow.PropDependencies),
		Source:       s.rel(path),
	}
	if parent != nil {
		node.PropsSource = parent.Source()
	}
	if node.Type == "" {
		record(s.out.Errors, msgNoType, name)
	}
	if node.IsEmbeddedFlow() {
		node.EmbeddedFlow = p.GetString(flow.PropFlowName, "")
		if node.EmbeddedFlow == "" {
			record(s.out.Errors, msgNoFlowName, name)
		}
	}

	s.nodes[name] = node
	s.out.JobProps[name] = p
}

// resolveDependencies turns dependency names into edges. Broken edges are
// kept, with their error set, so flows can show them.
func (s *dirLoad) resolveDependencies() {
	for _, name := range s.nodeNames() {
		node := s.nodes[name]
		s.graph.AddNode(name)
		for _, dep := range node.Dependencies {
			edge := &flow.Edge{From: name, To: dep, Kind: flow.EdgeDependency}
			switch {
			case s.dupJobs[dep]:
				edge.Error = edgeErrAmbiguous
				record(s.out.Errors, msgAmbiguousDep, name, dep)
			case s.nodes[dep] == nil:
				edge.Error = edgeErrNotFound
				record(s.out.Errors, msgMissingDep, name, dep)
			default:
				s.graph.AddEdge(name, dep, flow.EdgeDependency)
			}
			s.edges[name] = append(s.edges[name], edge)
		}
	}
}

// buildFlows creates a flow for every job nothing else depends on. A job
// depending on itself still roots a flow.
func (s *dirLoad) buildFlows() {
	hasDependents := make(map[string]bool)
	for from, edges := range s.edges {
		for _, e := range edges {
			if !e.HasError() && e.To != from {
				hasDependents[e.To] = true
			}
		}
	}

	for _, name := range s.nodeNames() {
		if hasDependents[name] {
			continue
		}
		f := flow.New(name)
		s.collect(f, name)
		s.out.Flows[name] = f
	}
}

// collect adds name and everything it transitively depends on to f.
func (s *dirLoad) collect(f *flow.Flow, name string) {
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if f.Nodes[cur] != nil {
			continue
		}
		node := s.nodes[cur]
		f.AddNode(node)
		if node.EmbeddedFlow != "" {
			f.AddEmbeddedFlow(node.EmbeddedFlow)
		}
		for _, e := range s.edges[cur] {
			f.AddEdge(e)
			if e.HasError() {
				f.AddError(sprintEdgeError(e))
				continue
			}
			queue = append(queue, e.To)
		}
	}
}

func sprintEdgeError(e *flow.Edge) string {
	return e.ID() + ": " + e.Error
}

// resolveEmbeddedFlows links every flow-typed job to the root job of the
// flow it names. The target must itself be a flow.
func (s *dirLoad) resolveEmbeddedFlows() {
	for _, name := range s.nodeNames() {
		node := s.nodes[name]
		if node.EmbeddedFlow == "" || s.out.Flows[node.EmbeddedFlow] == nil {
			continue
		}
		s.graph.AddEdge(name, node.EmbeddedFlow, flow.EdgeEmbedded)
	}

	for _, name := range s.out.FlowNames() {
		f := s.out.Flows[name]
		for _, target := range f.EmbeddedFlows {
			if s.out.Flows[target] == nil {
				flagFlow(s.out, f, msgMissingEmbedded, name, target)
			}
		}
	}
}

// flowRoots maps each flow to the job it is named after.
func (s *dirLoad) flowRoots() map[string][]string {
	roots := make(map[string][]string, len(s.out.Flows))
	for name := range s.out.Flows {
		roots[name] = []string{name}
	}
	return roots
}

func (s *dirLoad) nodeNames() []string {
	out := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
