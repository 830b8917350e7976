package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/flowcheck/pkg/config"
	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/validator"
)

// configFlags are shared by every command that loads a project.
var configFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to flowcheck.yaml (default: <dir>/flowcheck.yaml)",
		EnvVars: []string{"FLOWCHECK_CONFIG"},
	},
	&cli.StringSliceFlag{
		Name:    "property",
		Aliases: []string{"p"},
		Usage:   "Base property every job inherits (KEY=VALUE)",
	},
	&cli.BoolFlag{
		Name:  "sequential",
		Usage: "Run the loaders one after the other",
	},
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Load a project directory and report every problem",
	ArgsUsage: "<project-dir>",
	Description: `Loads project.yaml and every .job file under the directory, merges
them and prints the resulting report. Exits with status 1 when the report
has errors.

Examples:
  flowcheck validate ./project
  flowcheck validate ./project -p user.to.proxy=etl
  flowcheck validate ./project --json`,
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the report as JSON",
		},
	}, configFlags...),
	Action: runValidate,
}

// jsonReport is the --json output.
type jsonReport struct {
	Project  string           `json:"project"`
	Dir      string           `json:"dir"`
	Status   validator.Status `json:"status"`
	Flows    []string         `json:"flows"`
	Errors   []string         `json:"errors"`
	Warnings []string         `json:"warnings"`
	Info     []string         `json:"info"`
}

func runValidate(c *cli.Context) error {
	dir, err := projectDir(c)
	if err != nil {
		return err
	}

	v, err := newValidator(c, dir)
	if err != nil {
		return err
	}

	project := flow.NewProject(0, filepath.Base(dir))
	report := v.ValidateProject(project, dir)

	if c.Bool("json") {
		out := jsonReport{
			Project:  project.Name,
			Dir:      dir,
			Status:   report.Status(),
			Flows:    project.FlowNames(),
			Errors:   nonNil(report.Errors),
			Warnings: nonNil(report.Warnings),
			Info:     nonNil(report.Info),
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		printReport(c.App.Writer, project, report)
	}

	if !report.IsValid() {
		return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
	}
	return nil
}

// projectDir returns the absolute project directory named by the first
// argument.
func projectDir(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("exactly one project directory is required")
	}
	dir, err := filepath.Abs(c.Args().First())
	if err != nil {
		return "", fmt.Errorf("invalid project directory: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot access project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

// newValidator builds a validator from --config (or the project's own
// flowcheck.yaml) plus any -p overrides.
func newValidator(c *cli.Context, dir string) (*validator.Validator, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(dir)
	}
	if err != nil {
		return nil, err
	}

	overrides, err := parseProperties(c.StringSlice("property"))
	if err != nil {
		return nil, err
	}
	for k, val := range overrides {
		cfg.SetProperty(k, val)
	}
	if c.Bool("sequential") {
		cfg.Parallel = false
	}

	v := validator.New()
	if err := v.Initialize(cfg); err != nil {
		return nil, err
	}
	return v, nil
}

// parseProperties parses KEY=VALUE pairs. An empty value is allowed, a
// missing '=' or key is not.
func parseProperties(pairs []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, p := range pairs {
		parts := strings.SplitN(p, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid property %q, expected KEY=VALUE", p)
		}
		result[strings.TrimSpace(parts[0])] = parts[1]
	}
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
