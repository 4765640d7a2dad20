package constants

// JobStatus is the lifecycle state of a queued document job.
type JobStatus string

// Stable values (reported verbatim by the API).
const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
)

// HeaderPolicy selects where document-level fields are read from during merge.
type HeaderPolicy string

const (
	// HeaderPolicyFirstRow copies every document field from the first row in Line order, blank or not.
	HeaderPolicyFirstRow HeaderPolicy = "first-row"
	// HeaderPolicyFirstNonBlank takes, per field, the first non-blank value in Line order.
	HeaderPolicyFirstNonBlank HeaderPolicy = "first-non-blank"
)

// Valid reports whether p is a known policy.
func (p HeaderPolicy) Valid() bool {
	return p == HeaderPolicyFirstRow || p == HeaderPolicyFirstNonBlank
}
