// Package telemetry turns byte counts of a running transfer into percent,
// speed and ETA.
package telemetry

import (
	"math"
	"time"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// ETAUnknown is shown until the first bytes went out.
const ETAUnknown = "Calculating..."

// Telemetry keeps only the start of the current transfer.
type Telemetry struct {
	start   time.Time
	started bool
}

// Start pins the transfer start. Without it the first sample is the start.
func (t *Telemetry) Start(at time.Time) {
	t.start = at
	t.started = true
}

// Reset forgets the current transfer.
func (t *Telemetry) Reset() {
	t.start = time.Time{}
	t.started = false
}

func (t *Telemetry) OnSample(s domain.TransferSample) domain.TransferStats {
	if !t.started {
		t.Start(s.At)
	}

	return Compute(s, s.At.Sub(t.start))
}

// Compute derives stats from a sample taken elapsed after the transfer start.
func Compute(s domain.TransferSample, elapsed time.Duration) domain.TransferStats {
	stats := domain.TransferStats{
		Transferred: s.BytesTransferred,
		Total:       s.BytesTotal,
	}

	if s.BytesTotal > 0 {
		stats.Percent = math.Min(100, 100*float64(s.BytesTransferred)/float64(s.BytesTotal))
	}

	if secs := elapsed.Seconds(); secs > 0 {
		stats.SpeedBytesPerSec = float64(s.BytesTransferred) / secs
	}

	stats.ETA, stats.ETAKnown = estimate(s, stats.SpeedBytesPerSec)
	if stats.ETAKnown {
		stats.ETADescription = FormatETA(stats.ETA)
	} else {
		stats.ETADescription = ETAUnknown
	}

	return stats
}

func estimate(s domain.TransferSample, speed float64) (time.Duration, bool) {
	if speed == 0 || s.BytesTransferred == 0 {
		return 0, false
	}

	var remaining uint64
	if s.BytesTotal > s.BytesTransferred {
		remaining = s.BytesTotal - s.BytesTransferred
	}

	secs := float64(remaining) / speed

	return time.Duration(secs * float64(time.Second)), true
}
