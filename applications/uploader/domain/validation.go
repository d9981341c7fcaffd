package domain

// ValidationResult is either Accepted or Rejected with a reason.
type ValidationResult struct {
	rejected bool
	reason   string
}

func Accepted() ValidationResult {
	return ValidationResult{}
}

func Rejected(reason string) ValidationResult {
	return ValidationResult{rejected: true, reason: reason}
}

func (r ValidationResult) IsAccepted() bool {
	return !r.rejected
}

// Reason is empty for an accepted result.
func (r ValidationResult) Reason() string {
	return r.reason
}
