package domain

import (
	"io"
	"time"
)

type UploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType,omitempty"`
}

type Grant struct {
	URL       string    `json:"url"`
	Key       string    `json:"-"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

type ObjectMeta struct {
	Key           string
	ContentType   string
	ContentLength int64
	VolumeURL     string
	UploadedAt    time.Time
}

type Object struct {
	Meta ObjectMeta
	Body io.ReadCloser
}

type SyncRun struct {
	ID      string    `json:"id"`
	Objects int       `json:"objects"`
	At      time.Time `json:"-"`
}
