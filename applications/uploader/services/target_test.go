package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

func TestTargetName(t *testing.T) {
	file := domain.NewMemoryFile("Invoice March.csv", "text/csv", nil)
	now := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "Invoice March.csv", TargetName("", file, now))
	assert.Equal(t, "Invoice March.csv", TargetName("{name}", file, now))
	assert.Equal(t, "bonus_buy_report.xlsx", TargetName("bonus_buy_report.xlsx", file, now))
	assert.Equal(t, "promo_2024-03-31.csv", TargetName("promo_{date}.{ext}", file, now))
	assert.Equal(t, "archive/Invoice March", TargetName("archive/{stem}", file, now))
}
