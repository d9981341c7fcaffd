package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

const DefaultVolumeSize = 100 * 1024 * 1024 // 100 Mb

type inMemoryVolume struct {
	dataByKey map[string][]byte
	freeSpace int64
	url       string
	log       log.Logger
	mutex     sync.RWMutex
}

func NewVolume(url string, size int64, logger log.Logger) interfaces.Volume {
	if size <= 0 {
		size = DefaultVolumeSize
	}

	return &inMemoryVolume{
		url:       url,
		log:       logger,
		dataByKey: map[string][]byte{},
		freeSpace: size,
	}
}

func (m *inMemoryVolume) GetVolumeURL() string {
	return m.url
}

// PutObject stores exactly size bytes of body under key, replacing an older
// object with the same key. A short or failed body leaves the old object in
// place.
func (m *inMemoryVolume) PutObject(ctx context.Context, key string, body io.Reader, size int64) error {
	data, err := io.ReadAll(io.LimitReader(body, size))
	if err != nil {
		return fmt.Errorf("can't read object body: %w", err)
	}

	dataLen := int64(len(data))
	if dataLen != size {
		return fmt.Errorf("got %d of %d bytes", dataLen, size)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	available := m.freeSpace + int64(len(m.dataByKey[key]))
	if dataLen > available {
		return domain.ErrNoSpace
	}

	m.dataByKey[key] = data
	m.freeSpace = available - dataLen

	level.Info(m.log).Log("msg", "object stored",
		"key", key,
		"volume", m.url,
		"size", humanize.Bytes(uint64(dataLen)),
		"free_space", humanize.Bytes(uint64(m.freeSpace)),
	)

	return nil
}

func (m *inMemoryVolume) ReadObject(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.dataByKey[key]
	if !ok {
		return nil, fmt.Errorf("key %s on volume %s: %w", key, m.url, domain.ErrNotFound)
	}

	level.Debug(m.log).Log("msg", "object read",
		"key", key,
		"volume", m.url,
	)

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *inMemoryVolume) DeleteObject(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.freeSpace += int64(len(m.dataByKey[key]))
	delete(m.dataByKey, key)

	return nil
}

func (m *inMemoryVolume) GetFreeSpace() (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.freeSpace, nil
}
