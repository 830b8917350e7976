package loader

import (
	"sort"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/graph"
)

// checkCycles records one error per edge of g lying on a cycle and one per
// flow that reaches such an edge from any of its roots. Flagged flows stay
// in the outcome but are no longer valid.
func checkCycles(out *Outcome, g *graph.Graph, roots map[string][]string) {
	cycleEdges := g.CycleEdges()
	if len(cycleEdges) == 0 {
		return
	}

	cyclic := make(map[string]bool)
	for _, e := range cycleEdges {
		format := msgDependencyCycle
		if e.Kind == flow.EdgeEmbedded {
			format = msgEmbeddedCycle
		}
		record(out.Errors, format, e.ID())
		cyclic[e.From] = true
	}

	names := make([]string, 0, len(roots))
	for name := range roots {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := out.Flows[name]
		if f == nil {
			continue
		}
		for _, root := range roots[name] {
			if g.ReachesAny(root, cyclic) {
				flagFlow(out, f, msgFlowCycle, name)
				break
			}
		}
	}
}

// flagFlow records a flow-level error on both the flow and the outcome.
func flagFlow(out *Outcome, f *flow.Flow, format string, args ...interface{}) {
	f.AddError(record(out.Errors, format, args...))
}
