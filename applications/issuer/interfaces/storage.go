package interfaces

import (
	"context"
	"io"
)

type Volume interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64) error
	ReadObject(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, key string) error
	GetFreeSpace() (int64, error)
	GetVolumeURL() string
}

type VolumeManager interface {
	PickVolume(ctx context.Context, size int64) (Volume, error)
	GetVolume(ctx context.Context, volumeURL string) (Volume, error)
	AddVolume(ctx context.Context, volumeURL string, volume Volume) error
}
