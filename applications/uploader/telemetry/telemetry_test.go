package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

func TestOnSample(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	var tm Telemetry

	first := tm.OnSample(domain.TransferSample{BytesTransferred: 0, BytesTotal: 1024000, At: t0})
	assert.Equal(t, float64(0), first.Percent)
	assert.Equal(t, float64(0), first.SpeedBytesPerSec)
	assert.False(t, first.ETAKnown)
	assert.Equal(t, ETAUnknown, first.ETADescription)

	got := tm.OnSample(domain.TransferSample{BytesTransferred: 512000, BytesTotal: 1024000, At: t0.Add(2 * time.Second)})
	assert.Equal(t, float64(50), got.Percent)
	assert.Equal(t, float64(256000), got.SpeedBytesPerSec)
	assert.True(t, got.ETAKnown)
	assert.Equal(t, 2*time.Second, got.ETA)
	assert.Equal(t, "2s", got.ETADescription)
	assert.Equal(t, uint64(512000), got.Transferred)
	assert.Equal(t, uint64(1024000), got.Total)
}

func TestStartAndReset(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	var tm Telemetry

	tm.Start(t0)
	got := tm.OnSample(domain.TransferSample{BytesTransferred: 1000, BytesTotal: 4000, At: t0.Add(time.Second)})
	assert.Equal(t, float64(1000), got.SpeedBytesPerSec)
	assert.Equal(t, "3s", got.ETADescription)

	tm.Reset()
	got = tm.OnSample(domain.TransferSample{BytesTransferred: 1000, BytesTotal: 4000, At: t0.Add(time.Minute)})
	assert.Equal(t, float64(0), got.SpeedBytesPerSec)
	assert.False(t, got.ETAKnown)
}

func TestComputeGuards(t *testing.T) {
	got := Compute(domain.TransferSample{BytesTransferred: 10, BytesTotal: 0}, time.Second)
	assert.Equal(t, float64(0), got.Percent)

	got = Compute(domain.TransferSample{BytesTransferred: 10, BytesTotal: 10}, 0)
	assert.Equal(t, float64(100), got.Percent)
	assert.Equal(t, float64(0), got.SpeedBytesPerSec)
	assert.False(t, got.ETAKnown)

	got = Compute(domain.TransferSample{BytesTransferred: 10, BytesTotal: 10}, time.Second)
	assert.True(t, got.ETAKnown)
	assert.Equal(t, "0s", got.ETADescription)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{1288490189, "1.2 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5120 GB"},
		{1000, "1000 Bytes"},
		{1234567, "1.18 MB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in), "FormatBytes(%v)", tt.in)
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "250 KB/s", FormatSpeed(256000))
	assert.Equal(t, "0 Bytes/s", FormatSpeed(0))
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "2s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m"},
		{61 * time.Second, "2m"},
		{3599 * time.Second, "60m"},
		{3600 * time.Second, "1h 0m"},
		{2*time.Hour + 90*time.Second, "2h 2m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatETA(tt.in), "FormatETA(%v)", tt.in)
	}
}
