package manifest

import (
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
)

// optionsDecoder turns a job's options node into its typed payload. The node
// has Kind 0 when the job declares no options.
type optionsDecoder func(node *yaml.Node) (flow.Options, error)

var decoders = map[flow.JobType]optionsDecoder{
	flow.JobCommand:     decodeCommand,
	flow.JobJavaProcess: decodeInto(func() flow.Options { return &flow.JavaProcessOptions{} }),
	flow.JobFlow:        decodeFlow,
	flow.JobNoop:        decodeInto(func() flow.Options { return &flow.NoopOptions{} }),
}

// IsKnownType returns true if t has a registered decoder.
func IsKnownType(t flow.JobType) bool {
	_, ok := decoders[t]
	return ok
}

func decodeInto(newOptions func() flow.Options) optionsDecoder {
	return func(node *yaml.Node) (flow.Options, error) {
		opts := newOptions()
		if node.Kind == 0 {
			return opts, nil
		}
		if err := node.Decode(opts); err != nil {
			return nil, err
		}
		return opts, nil
	}
}

// decodeCommand accepts "options: ./run.sh" as shorthand for the command.
func decodeCommand(node *yaml.Node) (flow.Options, error) {
	if node.Kind == yaml.ScalarNode {
		return &flow.CommandOptions{Command: node.Value}, nil
	}
	return decodeInto(func() flow.Options { return &flow.CommandOptions{} })(node)
}

// decodeFlow accepts "options: inner" as shorthand for the embedded flow name.
func decodeFlow(node *yaml.Node) (flow.Options, error) {
	if node.Kind == yaml.ScalarNode {
		return &flow.FlowOptions{FlowName: node.Value}, nil
	}
	return decodeInto(func() flow.Options { return &flow.FlowOptions{} })(node)
}
