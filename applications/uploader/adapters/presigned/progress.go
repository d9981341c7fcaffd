package presigned

import (
	"io"
	"sync"
	"time"

	"github.com/donmikel/sheetdrop/applications/uploader/domain"
)

// progressReader reports every chunk the transport pulls from the body.
type progressReader struct {
	r     io.Reader
	sent  uint64
	total uint64
	now   func() time.Time
	out   *emitter
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += uint64(n)
		p.out.send(domain.TransferSample{
			BytesTransferred: p.sent,
			BytesTotal:       p.total,
			At:               p.now(),
		})
	}

	return n, err
}

// emitter guards the samples channel: the transport may still read the body
// after Do returned, so sends after close are dropped.
type emitter struct {
	mu     sync.Mutex
	ch     chan<- domain.TransferSample
	closed bool
}

func newEmitter(ch chan<- domain.TransferSample) *emitter {
	return &emitter{ch: ch}
}

func (e *emitter) send(s domain.TransferSample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ch == nil || e.closed {
		return
	}
	e.ch <- s
}

func (e *emitter) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ch == nil || e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}
