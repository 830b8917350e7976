package flow

import (
	"sort"
	"strconv"
	"strings"
)

// JobType is the type tag of a job.
type JobType string

// Job type constants.
const (
	JobCommand     JobType = "command"
	JobJavaProcess JobType = "javaprocess"
	JobFlow        JobType = "flow" // Embedded flow reference
	JobNoop        JobType = "noop"
)

// Well-known job property keys.
const (
	PropType         = "type"
	PropDependencies = "dependencies"
	PropFlowName     = "flow.name"
	PropCommand      = "command"
	PropJavaClass    = "java.class"
	PropClasspath    = "classpath"
	PropJVMArgs      = "jvm.args"
	PropXms          = "Xms"
	PropXmx          = "Xmx"
)

// Options is the type-specific payload of a job. Flatten turns it into the
// key/value pairs stored in the job's property bag.
type Options interface {
	Type() JobType
	Flatten() map[string]string
}

// CommandOptions configures a shell command job.
type CommandOptions struct {
	Command    string            `yaml:"command"`
	Commands   []string          `yaml:"commands"` // Extra commands run after Command
	Env        map[string]string `yaml:"env"`
	Properties map[string]string `yaml:"properties"`
}

func (o *CommandOptions) Type() JobType { return JobCommand }

func (o *CommandOptions) Flatten() map[string]string {
	out := copyMap(o.Properties)
	if o.Command != "" {
		out[PropCommand] = o.Command
	}
	for i, c := range o.Commands {
		out[PropCommand+"."+strconv.Itoa(i+1)] = c
	}
	for k, v := range o.Env {
		out["env."+k] = v
	}
	return out
}

// JavaProcessOptions configures a JVM job.
type JavaProcessOptions struct {
	JavaClass  string            `yaml:"javaClass"`
	Classpath  []string          `yaml:"classpath"`
	JVMArgs    string            `yaml:"jvmArgs"`
	Xms        string            `yaml:"xms"`
	Xmx        string            `yaml:"xmx"`
	Properties map[string]string `yaml:"properties"`
}

func (o *JavaProcessOptions) Type() JobType { return JobJavaProcess }

func (o *JavaProcessOptions) Flatten() map[string]string {
	out := copyMap(o.Properties)
	setIf(out, PropJavaClass, o.JavaClass)
	setIf(out, PropClasspath, strings.Join(o.Classpath, ","))
	setIf(out, PropJVMArgs, o.JVMArgs)
	setIf(out, PropXms, o.Xms)
	setIf(out, PropXmx, o.Xmx)
	return out
}

// FlowOptions makes the job an embedded reference to another flow.
type FlowOptions struct {
	FlowName   string            `yaml:"flowName"`
	Properties map[string]string `yaml:"properties"`
}

func (o *FlowOptions) Type() JobType { return JobFlow }

func (o *FlowOptions) Flatten() map[string]string {
	out := copyMap(o.Properties)
	setIf(out, PropFlowName, o.FlowName)
	return out
}

// NoopOptions is the empty payload of a noop job.
type NoopOptions struct{}

func (o *NoopOptions) Type() JobType { return JobNoop }

func (o *NoopOptions) Flatten() map[string]string { return map[string]string{} }

// KnownJobTypes returns the registered type tags, sorted.
func KnownJobTypes() []string {
	out := []string{string(JobCommand), string(JobJavaProcess), string(JobFlow), string(JobNoop)}
	sort.Strings(out)
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func setIf(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
