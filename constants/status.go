package constants

// Status is the canonical lifecycle state of a queue item.
type Status string

// Stable values (these exact strings cross the API boundary).
const (
	StatusPending    Status = "PENDING"    // uploaded, waiting for a batch run
	StatusProcessing Status = "PROCESSING" // extraction call in flight
	StatusReview     Status = "REVIEW"     // extraction succeeded, awaiting confirmation
	StatusCompleted  Status = "COMPLETED"  // record confirmed; frozen
	StatusError      Status = "ERROR"      // reader or extraction failed; terminal
)

// Terminal reports whether an item can never change status again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}
