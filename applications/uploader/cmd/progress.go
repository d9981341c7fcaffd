package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
	"github.com/donmikel/sheetdrop/applications/uploader/telemetry"
	"github.com/donmikel/sheetdrop/applications/uploader/workflow"
)

// logStep is how far, in percent, a transfer moves between two log lines when
// no terminal is attached.
const logStep = 25

const progressThrottle = 100 * time.Millisecond

// progressView renders page progress as a bar on a terminal and as log lines
// everywhere else.
type progressView struct {
	mu       sync.Mutex
	w        io.Writer
	logger   log.Logger
	terminal bool

	bar      *progressbar.ProgressBar
	filler   string
	lastStep int
}

func newProgressView(w io.Writer, logger log.Logger) *progressView {
	return &progressView{
		w:        w,
		logger:   logger,
		terminal: isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

func (v *progressView) onFiller(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filler = msg
}

func (v *progressView) onProgress(slot workflow.Slot, stats domain.TransferStats) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if stats == (domain.TransferStats{}) {
		v.finish()
		return
	}

	if !v.terminal {
		v.logStats(slot, stats)
		return
	}

	if v.bar == nil {
		v.bar = progressbar.NewOptions64(int64(stats.Total),
			progressbar.OptionSetWriter(v.w),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(progressThrottle),
			progressbar.OptionClearOnFinish(),
		)
	}

	v.bar.Describe(v.describe(slot, stats))
	_ = v.bar.Set64(int64(stats.Transferred))
}

func (v *progressView) describe(slot workflow.Slot, stats domain.TransferStats) string {
	desc := fmt.Sprintf("%s %s / %s, %s, ETA %s",
		slot.ID,
		telemetry.FormatBytes(float64(stats.Transferred)),
		telemetry.FormatBytes(float64(stats.Total)),
		telemetry.FormatSpeed(stats.SpeedBytesPerSec),
		stats.ETADescription,
	)
	if v.filler != "" {
		desc += "  " + v.filler
	}

	return desc
}

func (v *progressView) logStats(slot workflow.Slot, stats domain.TransferStats) {
	step := int(stats.Percent) / logStep
	if step <= v.lastStep && stats.Transferred > 0 {
		return
	}
	v.lastStep = step

	level.Info(v.logger).Log("msg", "transfer progress",
		"slot", slot.ID,
		"percent", fmt.Sprintf("%.0f", stats.Percent),
		"transferred", telemetry.FormatBytes(float64(stats.Transferred)),
		"total", telemetry.FormatBytes(float64(stats.Total)),
		"speed", telemetry.FormatSpeed(stats.SpeedBytesPerSec),
		"eta", stats.ETADescription,
	)
}

func (v *progressView) finish() {
	if v.bar != nil {
		_ = v.bar.Finish()
		v.bar = nil
	}
	v.lastStep = 0
}
