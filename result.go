package testgen

// InvocationError carries the identifying context of a failed invocation.
type InvocationError struct {
	Generator   string `json:"generator"`
	Params      string `json:"params,omitempty"`
	RepeatIndex int    `json:"repeat_index"`
	Slug        string `json:"slug"`
	ErrorMsg    string `json:"error_msg"`
	Error       error  `json:"-"`
}

// GenerationReport summarizes a generation run. Generation is all-or-
// nothing: a non-empty FailedInvocation means the run aborted at that
// invocation and nothing after it was attempted.
type GenerationReport struct {
	TotalPlanned     int              `json:"total_planned"`     // Invocations in the resolved plan
	Completed        int              `json:"completed"`         // Invocations fully written and validated
	BytesWritten     int64            `json:"bytes_written"`     // Total bytes across .in/.ans/.desc files
	Manifest         *Manifest        `json:"manifest"`          // Checksums of every written invocation
	FailedInvocation *InvocationError `json:"failed,omitempty"`  // Set when the run aborted
}

// IsComplete returns true if every planned invocation was generated.
func (r *GenerationReport) IsComplete() bool {
	return r.FailedInvocation == nil && r.Completed == r.TotalPlanned
}
