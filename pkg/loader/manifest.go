package loader

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/graph"
	"github.com/devicelab-dev/flowcheck/pkg/logger"
	"github.com/devicelab-dev/flowcheck/pkg/manifest"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

// ManifestLoader loads flows declared in project.yaml. A directory without
// the manifest yields an empty outcome.
type ManifestLoader struct{}

// NewManifestLoader creates a ManifestLoader.
func NewManifestLoader() *ManifestLoader {
	return &ManifestLoader{}
}

// Load parses dir/project.yaml into flows and job property bags.
func (l *ManifestLoader) Load(project *flow.Project, dir string) *Outcome {
	out := NewOutcome()

	if !hasFile(dir, manifest.FileName) {
		logger.Debug("No %s in %s", manifest.FileName, dir)
		return out
	}

	m, err := manifest.ParseFile(filepath.Join(dir, manifest.FileName))
	if err != nil {
		var pe *manifest.ParseError
		if errors.As(err, &pe) {
			record(out.Errors, msgManifestParse, manifest.FileName, pe.Message)
		} else {
			out.Errors.Addf(msgManifestRead, manifest.FileName, err.Error())
			logger.Error("Cannot read %s in %s: %v", manifest.FileName, dir, err)
		}
		return out
	}

	c := &manifestConverter{
		out:      out,
		seen:     make(map[string]bool),
		dupFlows: make(duplicates),
		dupJobs:  make(duplicates),
	}
	c.convert(m)
	logger.Debug("Loaded %d flow(s) from %s for project %q", len(out.Flows), manifest.FileName, projectName(project))
	return out
}

// hasFile reports whether dir holds an entry named exactly name. The
// directory listing is used so the match stays case-sensitive on every
// filesystem.
func hasFile(dir, name string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() == name && !e.IsDir() {
			return true
		}
	}
	return false
}

func projectName(p *flow.Project) string {
	if p == nil {
		return ""
	}
	return p.Name
}

type manifestConverter struct {
	out      *Outcome
	seen     map[string]bool // Flow names declared so far
	dupFlows duplicates
	dupJobs  duplicates
}

func qualifiedJobName(flowName, jobName string) string {
	return flowName + ":" + jobName
}

func (c *manifestConverter) convert(m *manifest.Manifest) {
	for _, fc := range m.Flows {
		if fc.Name == "" {
			record(c.out.Errors, msgUnnamedFlow, manifest.FileName, fc.Line)
			continue
		}
		// A repeated flow name rejects every declaration of it.
		if c.seen[fc.Name] {
			if c.dupFlows.firstRepeat(fc.Name) {
				record(c.out.Errors, msgDuplicateFlow, fc.Name)
				c.dropFlow(fc.Name)
			}
			continue
		}
		c.seen[fc.Name] = true
		c.out.Flows[fc.Name] = c.convertFlow(fc)
	}
	c.resolve()
}

func (c *manifestConverter) dropFlow(name string) {
	delete(c.out.Flows, name)
	prefix := name + ":"
	for key := range c.out.JobProps {
		if strings.HasPrefix(key, prefix) {
			delete(c.out.JobProps, key)
		}
	}
}

func (c *manifestConverter) convertFlow(fc manifest.FlowConfig) *flow.Flow {
	f := flow.New(fc.Name)
	for _, jc := range fc.Jobs {
		if jc.Name == "" {
			record(c.out.Errors, msgUnnamedJob, manifest.FileName, jc.Line, fc.Name)
			continue
		}
		qualified := qualifiedJobName(fc.Name, jc.Name)
		if _, exists := f.Nodes[jc.Name]; exists || c.dupJobs[qualified] {
			if c.dupJobs.firstRepeat(qualified) {
				record(c.out.Errors, msgDuplicateJob, qualified)
				delete(c.out.JobProps, qualified)
				delete(f.Nodes, jc.Name)
			}
			continue
		}

		node := &flow.Node{
			Name:         jc.Name,
			Type:         string(jc.Type),
			Dependencies: jc.DependsOn,
			Source:       manifest.FileName,
		}
		p := props.New(nil)
		p.SetSource(manifest.FileName)
		p.Put(flow.PropType, string(jc.Type))
		if len(jc.DependsOn) > 0 {
			p.Put(flow.PropDependencies, strings.Join(jc.DependsOn, ","))
		}

		var ute *manifest.UnknownTypeError
		switch {
		case errors.As(jc.Err, &ute):
			record(c.out.Errors, msgUnknownType, ute.Type, qualified)
		case jc.Err != nil:
			record(c.out.Errors, msgBadOptions, qualified, jc.Err.Error())
		default:
			putSorted(p, jc.Options.Flatten())
			if fo, ok := jc.Options.(*flow.FlowOptions); ok {
				if fo.FlowName == "" {
					record(c.out.Errors, msgNoFlowName, qualified)
					break
				}
				node.EmbeddedFlow = fo.FlowName
			}
		}

		f.AddNode(node)
		c.out.JobProps[qualified] = p
	}

	// Only jobs that survived duplicate removal embed anything.
	for _, jc := range fc.Jobs {
		if node := f.Nodes[jc.Name]; node != nil && node.EmbeddedFlow != "" {
			f.AddEmbeddedFlow(node.EmbeddedFlow)
		}
	}
	return f
}

// resolve wires dependency and embedded-flow edges once every flow is known,
// then checks the result for cycles. Graph nodes are qualified job names.
func (c *manifestConverter) resolve() {
	g := graph.New()
	roots := make(map[string][]string)

	for _, name := range c.out.FlowNames() {
		f := c.out.Flows[name]
		for _, jobName := range f.NodeNames() {
			node := f.Nodes[jobName]
			from := qualifiedJobName(name, jobName)
			g.AddNode(from)
			roots[name] = append(roots[name], from)

			for _, dep := range node.Dependencies {
				to := qualifiedJobName(name, dep)
				edge := &flow.Edge{From: jobName, To: dep, Kind: flow.EdgeDependency}
				switch {
				case c.dupJobs[to]:
					edge.Error = edgeErrAmbiguous
					flagFlow(c.out, f, msgAmbiguousDep, from, dep)
				case f.Nodes[dep] == nil:
					edge.Error = edgeErrNotFound
					flagFlow(c.out, f, msgMissingDep, from, dep)
				default:
					g.AddEdge(from, to, flow.EdgeDependency)
				}
				f.AddEdge(edge)
			}

			if node.EmbeddedFlow == "" {
				continue
			}
			target := c.out.Flows[node.EmbeddedFlow]
			if target == nil {
				flagFlow(c.out, f, msgMissingEmbedded, name, node.EmbeddedFlow)
				continue
			}
			// Expanding the embedded flow makes all of its jobs reachable.
			for _, targetJob := range target.NodeNames() {
				g.AddEdge(from, qualifiedJobName(target.Name, targetJob), flow.EdgeEmbedded)
			}
		}
	}

	checkCycles(c.out, g, roots)
}

func putSorted(p *props.Props, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Put(k, m[k])
	}
}
