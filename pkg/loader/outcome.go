// Package loader turns a project directory into flows. Two independent
// sources are supported: the project.yaml manifest and a tree of per-job
// files. Every recoverable problem becomes an entry of the outcome's error
// set; loaders never stop at the first one.
package loader

import (
	"sort"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

// FlowLoader loads the flows of a project directory.
type FlowLoader interface {
	Load(project *flow.Project, dir string) *Outcome
}

// Outcome is the result of one load.
type Outcome struct {
	Flows    map[string]*flow.Flow
	JobProps map[string]*props.Props // Keyed by qualified job name
	Props    []*props.Props          // Shared property bags, in load order
	Errors   ErrorSet
}

// NewOutcome creates an empty outcome.
func NewOutcome() *Outcome {
	return &Outcome{
		Flows:    make(map[string]*flow.Flow),
		JobProps: make(map[string]*props.Props),
		Errors:   NewErrorSet(),
	}
}

// FlowNames returns the outcome's flow names, sorted.
func (o *Outcome) FlowNames() []string {
	out := make([]string, 0, len(o.Flows))
	for name := range o.Flows {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge combines outcomes in order. Flows and job properties are a
// last-writer-wins union, prop lists are concatenated and error sets are
// unioned.
func Merge(outcomes ...*Outcome) *Outcome {
	merged := NewOutcome()
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		for name, f := range o.Flows {
			merged.Flows[name] = f
		}
		for name, p := range o.JobProps {
			merged.JobProps[name] = p
		}
		merged.Props = append(merged.Props, o.Props...)
		merged.Errors.AddAll(o.Errors)
	}
	return merged
}
