package interfaces

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
)

type ObjectMetaStorage interface {
	StartUpload(ctx context.Context, meta domain.ObjectMeta) error
	CompleteUpload(ctx context.Context, key string) (*domain.ObjectMeta, error)
	AbortUpload(ctx context.Context, key string) error
	GetObjectMeta(ctx context.Context, key string) (domain.ObjectMeta, error)
	CountCompleted(ctx context.Context) (int, error)
}
