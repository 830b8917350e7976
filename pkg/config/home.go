package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "FLOWCHECK_HOME"

// configNames are the config file names looked up in a directory, in order.
var configNames = []string{"flowcheck.yaml", "flowcheck.yml"}

var (
	homeOnce sync.Once
	homeDir  string
)

// GetHome returns the flowcheck home directory. It holds the shared
// flowcheck.yaml used by projects without their own, and the logs/ directory
// written with --log.
//
// $FLOWCHECK_HOME wins. Otherwise a binary installed as <home>/bin/flowcheck
// makes <home> the home, and anything else falls back to the working
// directory.
func GetHome() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// GetLogDir returns <home>/logs.
func GetLogDir() string {
	return filepath.Join(GetHome(), "logs")
}

// DefaultLogFile returns <home>/logs/flowcheck.log.
func DefaultLogFile() string {
	return filepath.Join(GetLogDir(), "flowcheck.log")
}

// HomeConfigFile returns the home flowcheck.yaml (or .yml), or "" when the
// home has none.
func HomeConfigFile() string {
	return findConfig(GetHome())
}

// findConfig returns the first config file present in dir, or "".
func findConfig(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func resolveHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}
	if home, ok := installHome(); ok {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// installHome reports the install prefix of a binary living in a bin/
// directory.
func installHome() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	bin := filepath.Dir(exe)
	if filepath.Base(bin) != "bin" {
		return "", false
	}
	return filepath.Dir(bin), true
}

// ResetHome clears the cached home so tests can point FLOWCHECK_HOME
// somewhere else.
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
