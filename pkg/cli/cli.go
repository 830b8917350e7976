// Package cli provides the command-line interface for flowcheck.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/flowcheck/pkg/config"
	"github.com/devicelab-dev/flowcheck/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"FLOWCHECK_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-level",
		Usage:   "Minimum log level: debug, info, warn or error",
		Value:   "info",
		EnvVars: []string{"FLOWCHECK_LOG_LEVEL"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write the log to this file instead of stderr",
	},
	&cli.BoolFlag{
		Name:  "log",
		Usage: "Write the log to $FLOWCHECK_HOME/logs/flowcheck.log",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "flowcheck",
		Usage:   "Load and validate workflow project directories",
		Version: Version,
		Description: `flowcheck loads the flows of a project directory, declared either in
project.yaml or as one .job file per job, and reports every problem found:
parse failures, duplicate names, missing dependencies and cycles.

Examples:
  flowcheck validate ./project
  flowcheck validate ./project -p user.to.proxy=etl --json
  flowcheck flows ./project`,
		Flags:  GlobalFlags,
		Before: setupLogging,
		Commands: []*cli.Command{
			validateCommand,
			flowsCommand,
		},
	}
}

// setupLogging sends the log to --log-file, or to the home log with --log.
// Without either, only --verbose or an explicit --log-level produces a log,
// on stderr. --verbose implies debug.
func setupLogging(c *cli.Context) error {
	if c.Bool("no-ansi") {
		colorsEnabled = false
	}

	level := logger.ParseLevel(c.String("log-level"))
	if c.Bool("verbose") {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)

	path := c.String("log-file")
	if path == "" && c.Bool("log") {
		path = config.DefaultLogFile()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if path != "" {
		return logger.Init(path)
	}
	if c.Bool("verbose") || c.IsSet("log-level") {
		logger.InitWriter(c.App.ErrWriter)
	}
	return nil
}

// runApp runs app and closes the log. A failure is logged before the log
// is closed.
func runApp(app *cli.App, args []string) error {
	defer logger.Close()
	err := app.Run(args)
	if err != nil {
		logger.Error("%v", err)
	}
	return err
}

// Execute runs the CLI.
func Execute() {
	if err := runApp(newApp(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
