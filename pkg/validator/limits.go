package validator

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/devicelab-dev/flowcheck/pkg/flow"
	"github.com/devicelab-dev/flowcheck/pkg/loader"
	"github.com/devicelab-dev/flowcheck/pkg/props"
)

type heapLimit struct {
	prop     string // Job property, e.g. Xmx
	limitKey string // Base property overriding the configured limit
	limit    string
}

// checkMemoryLimits rejects javaprocess jobs whose heap settings exceed the
// configured maximums.
func (v *Validator) checkMemoryLimits(out *loader.Outcome) {
	limits := []heapLimit{
		{prop: flow.PropXms, limitKey: flow.JobMaxXms, limit: v.limitFor(flow.JobMaxXms, v.maxXms)},
		{prop: flow.PropXmx, limitKey: flow.JobMaxXmx, limit: v.limitFor(flow.JobMaxXmx, v.maxXmx)},
	}

	for _, l := range limits {
		ceiling, err := parseHeapSize(l.limit)
		if err != nil {
			out.Errors.Addf("Invalid %s value %s", l.limitKey, l.limit)
			continue
		}
		for _, job := range sortedJobs(out.JobProps) {
			p := out.JobProps[job]
			if p.GetString(flow.PropType, "") != string(flow.JobJavaProcess) {
				continue
			}
			value := p.GetString(l.prop, "")
			if value == "" {
				continue
			}
			size, err := parseHeapSize(value)
			if err != nil {
				out.Errors.Addf("Job %s has invalid %s value %s", job, l.prop, value)
				continue
			}
			if size > ceiling {
				out.Errors.Addf("Job %s requests %s %s which exceeds %s %s", job, l.prop, value, l.limitKey, l.limit)
			}
		}
	}
}

func (v *Validator) limitFor(key, configured string) string {
	if v.base == nil {
		return configured
	}
	return v.base.GetString(key, configured)
}

// parseHeapSize reads a JVM size such as 512m or 2G. JVM suffixes are
// binary, so they are read as KiB, MiB, GiB and TiB.
func parseHeapSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if n := len(s); n > 1 && strings.ContainsRune("kKmMgGtT", rune(s[n-1])) && s[n-2] >= '0' && s[n-2] <= '9' {
		s += "iB"
	}
	return humanize.ParseBytes(s)
}

func sortedJobs(m map[string]*props.Props) []string {
	jobs := make([]string, 0, len(m))
	for job := range m {
		jobs = append(jobs, job)
	}
	sort.Strings(jobs)
	return jobs
}
