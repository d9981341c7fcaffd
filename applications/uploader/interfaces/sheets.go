package interfaces

import (
	"context"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// SheetReader lists the worksheet names of a workbook in document order.
type SheetReader interface {
	SheetNames(ctx context.Context, file domain.FileHandle) ([]string, error)
}
