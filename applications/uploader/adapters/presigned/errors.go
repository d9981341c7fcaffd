package presigned

import (
	"errors"
	"fmt"
)

var (
	ErrRequestFailed  = errors.New("upload URL request failed")
	ErrTransferFailed = errors.New("transfer failed")
	ErrNetwork        = errors.New("network error")
)

// RequestFailedError is a failed call to the issuance or sync endpoint.
type RequestFailedError struct {
	Op     string
	Status int
	Text   string
	Err    error
}

func (e *RequestFailedError) Error() string {
	switch {
	case e.Text != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Text)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// TransferFailedError is a storage PUT answered with a non-2xx status.
type TransferFailedError struct {
	Status     int
	StatusText string
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("Failed to upload file to storage: %d %s", e.Status, e.StatusText)
}

func (e *TransferFailedError) Is(target error) bool {
	return target == ErrTransferFailed
}

// NetworkError is a transport failure during the PUT.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("Network error during upload: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
