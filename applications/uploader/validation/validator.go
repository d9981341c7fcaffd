// Package validation decides whether a selected file may be uploaded.
// Nothing in here touches the network.
package validation

import (
	"fmt"
	"strings"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// ValidateSelection accepts a file whose extension or declared MIME type is
// in the accepted lists.
func ValidateSelection(file domain.FileHandle, acceptedExtensions, acceptedMimeTypes []string) domain.ValidationResult {
	if file == nil {
		return domain.Rejected("no file selected")
	}

	ext := Extension(file.Name())
	if ext != "" {
		for _, accepted := range acceptedExtensions {
			if strings.EqualFold(ext, normalizeExtension(accepted)) {
				return domain.Accepted()
			}
		}
	}

	mimeType := strings.TrimSpace(file.MimeType())
	if mimeType != "" {
		for _, accepted := range acceptedMimeTypes {
			if strings.EqualFold(mimeType, strings.TrimSpace(accepted)) {
				return domain.Accepted()
			}
		}
	}

	return domain.Rejected(defaultReason(file.Name(), acceptedExtensions))
}

// Extension returns the lower-cased part of name after the last dot, or ""
// when name has no dot.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}

	return strings.ToLower(name[i+1:])
}

func normalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}

func defaultReason(name string, acceptedExtensions []string) string {
	if len(acceptedExtensions) == 0 {
		return fmt.Sprintf("file %q has an unsupported type", name)
	}

	exts := make([]string, 0, len(acceptedExtensions))
	for _, ext := range acceptedExtensions {
		exts = append(exts, "."+normalizeExtension(ext))
	}

	return fmt.Sprintf("file %q has an unsupported type, accepted: %s", name, strings.Join(exts, ", "))
}

// Rules are the selection rules of one workflow.
type Rules struct {
	Extensions    []string
	MimeTypes     []string
	RejectMessage string
}

// Validate runs ValidateSelection and swaps in RejectMessage when set.
func (r Rules) Validate(file domain.FileHandle) domain.ValidationResult {
	res := ValidateSelection(file, r.Extensions, r.MimeTypes)
	if !res.IsAccepted() && r.RejectMessage != "" && file != nil {
		return domain.Rejected(r.RejectMessage)
	}

	return res
}
