package validation

// ValidationError is a local rejection. It never reaches the network and is
// fixed by choosing another file.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
