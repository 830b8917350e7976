package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// UnknownTypeError is reported for a job whose type tag has no decoder.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown job type %q", e.Type)
}

type rawManifest struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Flows       []rawFlow `yaml:"flows"`
}

type rawFlow struct {
	Name string      `yaml:"name"`
	Jobs []yaml.Node `yaml:"jobs"`
}

type rawJob struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	DependsOn []string  `yaml:"dependsOn"`
	Options   yaml.Node `yaml:"options"`
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is the project manifest
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses manifest content. Document-level problems return a
// *ParseError; job-level problems are attached to the job's Err so the rest
// of the document is still usable.
func Parse(data []byte, sourcePath string) (*Manifest, error) {
	m := &Manifest{SourcePath: sourcePath}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: err.Error(),
		}
	}
	// Empty document
	if root.Kind == 0 || len(root.Content) == 0 {
		return m, nil
	}

	var raw rawManifest
	if err := root.Decode(&raw); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    root.Content[0].Line,
			Message: fmt.Sprintf("invalid manifest: %v", err),
		}
	}

	m.Name = raw.Name
	m.Description = raw.Description
	flowLines := flowNodeLines(root.Content[0])
	for i, rf := range raw.Flows {
		fc := FlowConfig{Name: rf.Name}
		if i < len(flowLines) {
			fc.Line = flowLines[i]
		}
		for j := range rf.Jobs {
			job, err := parseJob(&rf.Jobs[j], sourcePath)
			if err != nil {
				return nil, err
			}
			fc.Jobs = append(fc.Jobs, job)
		}
		m.Flows = append(m.Flows, fc)
	}
	return m, nil
}

func parseJob(node *yaml.Node, sourcePath string) (JobConfig, error) {
	if node.Kind != yaml.MappingNode {
		return JobConfig{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "job must be a mapping",
		}
	}

	var rj rawJob
	if err := node.Decode(&rj); err != nil {
		return JobConfig{}, wrapParseError(sourcePath, node.Line, err)
	}

	job := JobConfig{
		Name:      rj.Name,
		Type:      flow.JobType(rj.Type),
		DependsOn: rj.DependsOn,
		Line:      node.Line,
	}

	decode, ok := decoders[job.Type]
	if !ok {
		job.Err = &UnknownTypeError{Type: rj.Type}
		return job, nil
	}
	opts, err := decode(&rj.Options)
	if err != nil {
		line := rj.Options.Line
		if line == 0 {
			line = node.Line
		}
		job.Err = wrapParseError(sourcePath, line, err)
		return job, nil
	}
	job.Options = opts
	return job, nil
}

// flowNodeLines returns the line of each entry of the top-level flows list.
func flowNodeLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(doc.Content)-1; i += 2 {
		if doc.Content[i].Value != "flows" {
			continue
		}
		var lines []int
		for _, n := range doc.Content[i+1].Content {
			lines = append(lines, n.Line)
		}
		return lines
	}
	return nil
}

func wrapParseError(sourcePath string, line int, err error) error {
	return &ParseError{
		Path:    sourcePath,
		Line:    line,
		Message: err.Error(),
	}
}
