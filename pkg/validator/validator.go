// Package validator loads a project directory through every flow loader and
// turns the merged result into a report.
package validator

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/flowcheck/pkg/config"
	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/loader"
	"github.com/devicelab-dev/flowcheck/pkg/logger"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

// Name identifies this validator to callers that run several.
const Name = "Directory Flow"

// Validator validates project directories.
type Validator struct {
	base     *props.Props
	baseErr  error
	parallel bool
	maxXms   string
	maxXmx   string
	loaders  []loader.FlowLoader
}

// Option configures a Validator.
type Option func(*Validator)

// WithParallel overrides the configured loader concurrency.
func WithParallel(parallel bool) Option {
	return func(v *Validator) {
		v.parallel = parallel
	}
}

// WithLoaders replaces the default manifest and directory loaders. Results
// are merged in the order given.
func WithLoaders(loaders ...loader.FlowLoader) Option {
	return func(v *Validator) {
		v.loaders = loaders
	}
}

// New creates a Validator with default configuration.
func New(opts ...Option) *Validator {
	v := &Validator{}
	v.apply(config.Default())
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Initialize applies cfg. It never fails: a base properties file that
// cannot be loaded is reported by every later validation instead.
func (v *Validator) Initialize(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	v.apply(cfg)
	return nil
}

func (v *Validator) apply(cfg *config.Config) {
	v.base, v.baseErr = cfg.BaseProps()
	v.parallel = cfg.Parallel
	v.maxXms = cfg.MaxXms
	v.maxXmx = cfg.MaxXmx
}

// Name returns the validator name.
func (v *Validator) Name() string {
	return Name
}

func (v *Validator) flowLoaders() []loader.FlowLoader {
	if v.loaders != nil {
		return v.loaders
	}
	return []loader.FlowLoader{
		loader.NewManifestLoader(),
		loader.NewDirectoryLoader(v.base),
	}
}

// Load runs every loader against dir, merges their outcomes and stores the
// merged flows in project. Merge order does not depend on scheduling.
func (v *Validator) Load(project *flow.Project, dir string) *loader.Outcome {
	loaders := v.flowLoaders()
	outcomes := make([]*loader.Outcome, len(loaders))

	if v.parallel {
		var g errgroup.Group
		for i, l := range loaders {
			g.Go(func() error {
				outcomes[i] = l.Load(project, dir)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, l := range loaders {
			outcomes[i] = l.Load(project, dir)
		}
	}

	merged := loader.Merge(outcomes...)
	if project != nil {
		project.Flows = merged.Flows
	}
	return merged
}

// ValidateProject loads dir into project and reports every problem found.
func (v *Validator) ValidateProject(project *flow.Project, dir string) *Report {
	if project == nil {
		project = flow.NewProject(0, filepath.Base(dir))
	}
	logger.Info("Validating project %q in %s", project.Name, dir)

	out := v.Load(project, dir)
	report := &Report{}
	if v.baseErr != nil {
		out.Errors.Add(fmt.Sprintf("Error loading base properties: %v", v.baseErr))
	}
	v.checkMemoryLimits(out)
	report.Errors = out.Errors.Sorted()

	if len(out.Flows) == 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("No flows found in %s", dir))
	} else {
		report.Info = append(report.Info, fmt.Sprintf("Loaded %d flow(s) and %d job(s)", len(out.Flows), len(out.JobProps)))
	}

	logger.Info("Validation of %q finished: %s (%d error(s))", project.Name, report.Status(), len(report.Errors))
	return report
}
