package uploader

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/uploader/config"
	"github.com/donmikel/sheetdrop/applications/uploader/domain"
	"github.com/donmikel/sheetdrop/applications/uploader/workflow"
)

// UploadPage is one workflow variant presented to the user.
type UploadPage interface {
	Workflow() config.Workflow
	Slots() []workflow.Slot
	Enabled(slotID string) bool
	Choose(slotID string, file domain.FileHandle) domain.ValidationResult
	Upload(ctx context.Context, slotID string) error
	TriggerSync(ctx context.Context) error
	Banner() domain.Banner
	Progress() (domain.TransferStats, bool)
	Filler() string
}
