package validator

// Status is the overall verdict of a Report.
type Status string

const (
	StatusPass  Status = "pass"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

// Report is the result of validating one project directory. Each list is
// sorted.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Info     []string `json:"info"`
}

// IsValid returns true if there are no errors. Warnings do not count.
func (r *Report) IsValid() bool {
	return len(r.Errors) == 0
}

// Status derives the verdict from the most severe non-empty list.
func (r *Report) Status() Status {
	switch {
	case len(r.Errors) > 0:
		return StatusError
	case len(r.Warnings) > 0:
		return StatusWarn
	default:
		return StatusPass
	}
}
