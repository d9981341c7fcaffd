package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
	"github.com/donmikel/sheetdrop/applications/uploader/workflow"
)

func TestParseSlotFiles(t *testing.T) {
	files, err := parseSlotFiles([]string{"blue-yonder=/tmp/a.csv", "ecommerce=b=c.csv"})
	require.NoError(t, err)
	assert.Equal(t, []slotFile{
		{slot: "blue-yonder", path: "/tmp/a.csv"},
		{slot: "ecommerce", path: "b=c.csv"},
	}, files)

	for _, bad := range []string{"a.csv", "=a.csv", "slot="} {
		_, err = parseSlotFiles([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestProgressViewLogsSteps(t *testing.T) {
	var buf bytes.Buffer
	view := newProgressView(&buf, log.NewLogfmtLogger(&buf))
	require.False(t, view.terminal)

	slot := workflow.Slot{ID: "bonus-buy"}
	for _, pct := range []float64{0, 10, 30, 40, 60, 100} {
		view.onProgress(slot, domain.TransferStats{
			Percent:        pct,
			Transferred:    uint64(pct),
			Total:          100,
			ETADescription: "1s",
		})
	}
	view.onProgress(slot, domain.TransferStats{})

	assert.Equal(t, 4, strings.Count(buf.String(), "transfer progress"))
	assert.Equal(t, 0, view.lastStep)
}

func TestEnsureNewline(t *testing.T) {
	assert.Equal(t, "", ensureNewline(""))
	assert.Equal(t, "ok\n", ensureNewline("ok"))
	assert.Equal(t, "ok\n", ensureNewline("ok\n"))
}

func TestShowBanner(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, showBanner(&out, domain.Banner{}, nil))
	assert.Empty(t, out.String())

	require.NoError(t, showBanner(&out, domain.Banner{Success: "a.csv uploaded successfully!"}, nil))
	assert.Equal(t, "a.csv uploaded successfully!\n", out.String())

	err := showBanner(&out, domain.Banner{Error: "Upload failed for a.csv: boom"}, errors.New("boom"))
	assert.EqualError(t, err, "Upload failed for a.csv: boom")

	err = showBanner(&out, domain.Banner{}, errors.New("boom"))
	assert.EqualError(t, err, "boom")
}

func TestWorkflowsListsDescriptions(t *testing.T) {
	var out bytes.Buffer
	opts := &options{configPath: "../config/config.yml", logger: log.NewNopLogger()}

	cmd := workflowsCmd(opts)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Upload your stock invoice file and trigger stock sync")
	assert.Contains(t, out.String(), "blue_yonda_range.csv")
}
