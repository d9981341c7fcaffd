// Package excel reads the worksheet directory of a workbook.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

type SheetReader struct{}

func NewSheetReader() *SheetReader {
	return &SheetReader{}
}

// SheetNames returns the sheet names in workbook order.
func (r *SheetReader) SheetNames(ctx context.Context, file domain.FileHandle) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("can't open %s: %w", file.Name(), err)
	}
	defer rc.Close()

	book, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("can't read workbook %s: %w", file.Name(), err)
	}
	defer book.Close()

	return book.GetSheetList(), nil
}
