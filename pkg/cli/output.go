package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/validator"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
)

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func printReport(w io.Writer, project *flow.Project, report *validator.Report) {
	fmt.Fprintf(w, "\n%sProject %s%s\n", color(colorBold), project.Name, color(colorReset))
	fmt.Fprintln(w, strings.Repeat("─", 40))

	for _, msg := range report.Info {
		fmt.Fprintf(w, "  %s%s%s\n", color(colorDim), msg, color(colorReset))
	}
	for _, msg := range report.Warnings {
		fmt.Fprintf(w, "  %s⚠%s %s\n", color(colorYellow), color(colorReset), msg)
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(w, "  %s✗%s %s\n", color(colorRed), color(colorReset), msg)
	}

	fmt.Fprintln(w)
	switch report.Status() {
	case validator.StatusError:
		fmt.Fprintf(w, "%s✗ %d error(s)%s\n", color(colorRed), len(report.Errors), color(colorReset))
	case validator.StatusWarn:
		fmt.Fprintf(w, "%s⚠ passed with %d warning(s)%s\n", color(colorYellow), len(report.Warnings), color(colorReset))
	default:
		fmt.Fprintf(w, "%s✓ passed%s\n", color(colorGreen), color(colorReset))
	}
}

func printFlows(w io.Writer, project *flow.Project) {
	names := project.FlowNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "No flows found")
		return
	}

	for _, name := range names {
		f := project.Flows[name]
		state := color(colorGreen) + "valid" + color(colorReset)
		if !f.IsValid() {
			state = color(colorRed) + "invalid" + color(colorReset)
		}
		fmt.Fprintf(w, "%s%s%s (%s)\n", color(colorBold), name, color(colorReset), state)

		for _, jobName := range f.NodeNames() {
			node := f.Nodes[jobName]
			line := fmt.Sprintf("  %s [%s]", jobName, node.Type)
			if len(node.Dependencies) > 0 {
				line += " <- " + strings.Join(node.Dependencies, ", ")
			}
			if node.EmbeddedFlow != "" {
				line += " => " + node.EmbeddedFlow
			}
			fmt.Fprintln(w, line)
		}
		for _, msg := range f.Errors {
			fmt.Fprintf(w, "  %s! %s%s\n", color(colorRed), msg, color(colorReset))
		}
	}
}
