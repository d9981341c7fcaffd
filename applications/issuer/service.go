package issuer

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
)

// UploadService hands out presigned URLs and, in in-memory mode, accepts the
// PUTs made against them.
type UploadService interface {
	IssueURL(ctx context.Context, req domain.UploadRequest) (domain.Grant, error)
	PutObject(ctx context.Context, token string, obj domain.Object) error
	GetObject(ctx context.Context, key string) (domain.Object, error)
	TriggerSync(ctx context.Context) (domain.SyncRun, error)
}
