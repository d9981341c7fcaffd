package domain

import "time"

// TransferSample is one observation of an active transfer.
type TransferSample struct {
	BytesTransferred uint64
	BytesTotal       uint64
	At               time.Time
}

// TransferStats is derived from the transfer start and the latest sample.
type TransferStats struct {
	Percent          float64
	SpeedBytesPerSec float64
	Transferred      uint64
	Total            uint64
	ETA              time.Duration
	ETAKnown         bool
	ETADescription   string
}

// UploadTarget is a presigned URL valid for a single transfer.
type UploadTarget struct {
	URL string `json:"url"`
}

// UploadURLRequest is the body sent to the URL issuance endpoint.
type UploadURLRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType,omitempty"`
}
