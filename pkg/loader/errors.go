package loader

import (
	"fmt"
	"sort"

	"github.com/devicelab-dev/flowcheck/pkg/logger"
)

// ErrorSet accumulates load error messages. Adding the same message twice
// keeps one entry.
type ErrorSet map[string]struct{}

// NewErrorSet creates an empty set.
func NewErrorSet() ErrorSet {
	return make(ErrorSet)
}

// Add records msg.
func (s ErrorSet) Add(msg string) {
	s[msg] = struct{}{}
}

// Addf records a formatted message.
func (s ErrorSet) Addf(format string, args ...interface{}) {
	s.Add(fmt.Sprintf(format, args...))
}

// AddAll records every message of other.
func (s ErrorSet) AddAll(other ErrorSet) {
	for msg := range other {
		s[msg] = struct{}{}
	}
}

// Contains reports whether msg was recorded.
func (s ErrorSet) Contains(msg string) bool {
	_, ok := s[msg]
	return ok
}

// Len returns the number of distinct messages.
func (s ErrorSet) Len() int {
	return len(s)
}

// Sorted returns the messages in lexical order.
func (s ErrorSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for msg := range s {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

// record adds a formatted message to errs, logs it and returns it.
func record(errs ErrorSet, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	errs.Add(msg)
	logger.Warn("%s", msg)
	return msg
}

// duplicates tracks names already reported as duplicated so each name is
// reported once no matter how often it repeats.
type duplicates map[string]bool

// firstRepeat returns true the first time a repeated name is seen and marks
// it reported.
func (d duplicates) firstRepeat(name string) bool {
	if d[name] {
		return false
	}
	d[name] = true
	return true
}

// Report messages. Tests and downstream tooling match on these, keep them
// stable.
const (
	msgManifestParse   = "Error parsing %s: %s"
	msgManifestRead    = "Error reading %s: %s"
	msgUnnamedFlow     = "Flow declared at %s:%d has no name"
	msgUnnamedJob      = "Job declared at %s:%d in flow %s has no name"
	msgDuplicateFlow   = "Duplicate flow names found: %s"
	msgDuplicateJob    = "Duplicate job names found: %s"
	msgUnknownType     = "Unknown job type %q for job %s"
	msgBadOptions      = "Invalid options for job %s: %s"
	msgJobFile         = "Error loading job file %s: %s"
	msgPropsFile       = "Error loading properties file %s: %s"
	msgNoType          = "Job %s doesn't have type set"
	msgNoFlowName      = "Job %s is an embedded flow but flow.name is not set"
	msgMissingDep      = "%s cannot find dependency %s"
	msgAmbiguousDep    = "%s has ambiguous dependency %s"
	msgMissingEmbedded = "Flow %s embeds %s but it can't be found"
	msgDependencyCycle = "Cyclical dependency found at %s"
	msgEmbeddedCycle   = "Embedded flow cycle found at %s"
	msgFlowCycle       = "Flow %s contains a dependency cycle"
)

// Edge errors kept on flow edges.
const (
	edgeErrNotFound  = "Dependency not found."
	edgeErrAmbiguous = "Ambiguous dependency. Duplicates found."
)
