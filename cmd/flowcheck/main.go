// Command flowcheck loads and validates workflow project directories.
package main

import "github.com/devicelab-dev/flowcheck/pkg/cli"

func main() {
	cli.Execute()
}
