// Package manifest parses project.yaml, the single-file declaration of a
// project's flows and jobs.
package manifest

import "github.com/devicelab-dev/flowcheck/pkg/flow"

// FileName is the manifest's fixed, case-sensitive name at the project root.
const FileName = "project.yaml"

// Manifest is a parsed project.yaml.
type Manifest struct {
	SourcePath  string
	Name        string // Project identity, consumed by project persistence
	Description string
	Flows       []FlowConfig
}

// FlowConfig declares one flow.
type FlowConfig struct {
	Name string
	Line int
	Jobs []JobConfig
}

// JobConfig declares one job of a flow.
type JobConfig struct {
	Name      string
	Type      flow.JobType
	DependsOn []string
	Options   flow.Options // Nil when Err is set
	Line      int
	Err       error // Job-level problem: unknown type or malformed options
}
