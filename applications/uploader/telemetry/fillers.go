package telemetry

import (
	"context"
	"math/rand"
	"time"
)

const defaultFillerInterval = 3 * time.Second

// DefaultFillerMessages keep the user company during long transfers.
var DefaultFillerMessages = []string{
	"📦 Packing your data with care...",
	"🚀 Launching files to the cloud...",
	"☁️ Your data is traveling at lightspeed!",
	"🎯 Almost there! Organizing your files...",
	"💪 Working hard on this upload...",
	"🌟 Your patience is appreciated!",
	"🎨 Making your data look pretty...",
	"🔐 Securing your files...",
	"✨ Adding some magic to your data...",
}

// Fillers rotates status strings on a timer. It has no effect on the upload
// it decorates.
type Fillers struct {
	messages []string
	interval time.Duration
	rnd      *rand.Rand
}

func NewFillers(messages []string, interval time.Duration) *Fillers {
	if len(messages) == 0 {
		messages = DefaultFillerMessages
	}
	if interval <= 0 {
		interval = defaultFillerInterval
	}

	return &Fillers{
		messages: messages,
		interval: interval,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run emits the first message right away and a random one every interval
// until ctx is done, then emits "" once. Run blocks; call it in a goroutine.
func (f *Fillers) Run(ctx context.Context, emit func(string)) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	emit(f.messages[0])
	for {
		select {
		case <-ctx.Done():
			emit("")
			return
		case <-ticker.C:
			emit(f.messages[f.rnd.Intn(len(f.messages))])
		}
	}
}
