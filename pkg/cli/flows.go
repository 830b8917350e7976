package cli

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
)

var flowsCommand = &cli.Command{
	Name:      "flows",
	Usage:     "List the flows of a project directory",
	ArgsUsage: "<project-dir>",
	Description: `Prints every flow found in the directory with its jobs, their
dependencies and whether the flow is valid.

Examples:
  flowcheck flows ./project`,
	Flags:  configFlags,
	Action: runFlows,
}

func runFlows(c *cli.Context) error {
	dir, err := projectDir(c)
	if err != nil {
		return err
	}

	v, err := newValidator(c, dir)
	if err != nil {
		return err
	}

	project := flow.NewProject(0, filepath.Base(dir))
	v.Load(project, dir)
	printFlows(c.App.Writer, project)
	return nil
}
