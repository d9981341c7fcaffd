package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var units = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders b in base-1024 units with up to two decimals.
func FormatBytes(b float64) string {
	if b <= 0 {
		return "0 Bytes"
	}

	i := 0
	for b >= 1024 && i < len(units)-1 {
		b /= 1024
		i++
	}

	v := math.Round(b*100) / 100

	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}

func FormatSpeed(bytesPerSec float64) string {
	return FormatBytes(bytesPerSec) + "/s"
}

// FormatETA rounds up to whole seconds under a minute and to whole minutes
// above.
func FormatETA(d time.Duration) string {
	secs := d.Seconds()

	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", int(math.Ceil(secs)))
	case secs < 3600:
		return fmt.Sprintf("%dm", int(math.Ceil(secs/60)))
	default:
		hours := int(math.Floor(secs / 3600))
		minutes := int(math.Ceil(math.Mod(secs, 3600) / 60))
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}
