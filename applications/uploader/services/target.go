package services

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// TargetName expands {name}, {stem}, {ext} and {date} in template. An empty
// template keeps the selected file's name.
func TargetName(template string, file domain.FileHandle, now time.Time) string {
	name := file.Name()
	if template == "" {
		return name
	}

	ext := filepath.Ext(name)

	return strings.NewReplacer(
		"{name}", name,
		"{stem}", strings.TrimSuffix(name, ext),
		"{ext}", strings.TrimPrefix(ext, "."),
		"{date}", now.Format("2006-01-02"),
	).Replace(template)
}
