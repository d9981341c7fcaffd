package validation

import (
	"fmt"
	"strings"
)

const (
	msgNoSheets       = "The file has no sheets/tabs!"
	msgUnreadableBook = "Error reading file. Please ensure it is a valid Excel file."
)

// ValidateRequiredTabs reports whether every required tab exists among
// sheetNames, comparing trimmed names case-insensitively.
func ValidateRequiredTabs(sheetNames, requiredTabs []string) bool {
	present := make(map[string]struct{}, len(sheetNames))
	for _, name := range sheetNames {
		present[tabKey(name)] = struct{}{}
	}

	for _, tab := range requiredTabs {
		if _, ok := present[tabKey(tab)]; !ok {
			return false
		}
	}

	return true
}

func tabKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CheckWorkbook reports an empty workbook first, then missing tabs.
func CheckWorkbook(sheetNames, requiredTabs []string) error {
	if len(sheetNames) == 0 {
		return &ValidationError{Reason: msgNoSheets}
	}

	if !ValidateRequiredTabs(sheetNames, requiredTabs) {
		return &ValidationError{Reason: fmt.Sprintf("Invalid file format!\n\nRequired tabs: %s\n\nFound tabs: %s",
			strings.Join(requiredTabs, ", "),
			strings.Join(sheetNames, ", "),
		)}
	}

	return nil
}

// UnreadableWorkbook wraps a decode failure of the sheet reader.
func UnreadableWorkbook(err error) error {
	return &ValidationError{Reason: msgUnreadableBook, Err: err}
}
