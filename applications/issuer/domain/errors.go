package domain

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("invalid or used upload token")
	ErrLengthRequired = errors.New("content length required")
	ErrNoSpace        = errors.New("not enough free space")
	ErrNotFound       = errors.New("object not found")
	ErrDirectUpload   = errors.New("objects are uploaded directly to the bucket")
)
