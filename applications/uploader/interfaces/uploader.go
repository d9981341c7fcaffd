package interfaces

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// Uploader moves one file to storage. Samples, when non-nil, is closed by the
// uploader before Upload returns.
type Uploader interface {
	Upload(ctx context.Context, file domain.FileHandle, targetName string, samples chan<- domain.TransferSample) error
}

type SyncTrigger interface {
	TriggerSync(ctx context.Context, url string) error
}
