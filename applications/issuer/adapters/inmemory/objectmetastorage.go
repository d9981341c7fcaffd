package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

// objectMeta keeps a running upload apart from the completed object it may
// replace, so readers see the old object until the new one completes.
type objectMeta struct {
	completed *domain.ObjectMeta
	pending   *domain.ObjectMeta
}

type inMemoryObjectMetaStorage struct {
	metaData map[string]objectMeta
	mutex    sync.RWMutex
}

func NewObjectMetaStorage() interfaces.ObjectMetaStorage {
	return &inMemoryObjectMetaStorage{
		metaData: map[string]objectMeta{},
	}
}

func (i *inMemoryObjectMetaStorage) StartUpload(ctx context.Context, meta domain.ObjectMeta) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	m := i.metaData[meta.Key]
	if m.pending != nil {
		return fmt.Errorf("object %s is already being uploaded", meta.Key)
	}

	m.pending = &meta
	i.metaData[meta.Key] = m

	return nil
}

// CompleteUpload replaces the completed object with the pending one and
// returns the replaced meta, if any.
func (i *inMemoryObjectMetaStorage) CompleteUpload(ctx context.Context, key string) (*domain.ObjectMeta, error) {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	m, ok := i.metaData[key]
	if !ok || m.pending == nil {
		return nil, fmt.Errorf("upload of key = %s: %w", key, domain.ErrNotFound)
	}

	replaced := m.completed
	m.completed, m.pending = m.pending, nil
	i.metaData[key] = m

	return replaced, nil
}

// AbortUpload drops the pending upload and keeps the completed object.
func (i *inMemoryObjectMetaStorage) AbortUpload(ctx context.Context, key string) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	m, ok := i.metaData[key]
	if !ok {
		return nil
	}

	m.pending = nil
	if m.completed == nil {
		delete(i.metaData, key)
		return nil
	}
	i.metaData[key] = m

	return nil
}

func (i *inMemoryObjectMetaStorage) GetObjectMeta(ctx context.Context, key string) (domain.ObjectMeta, error) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	m, ok := i.metaData[key]
	if !ok || m.completed == nil {
		return domain.ObjectMeta{}, fmt.Errorf("object with key = %s: %w", key, domain.ErrNotFound)
	}

	return *m.completed, nil
}

func (i *inMemoryObjectMetaStorage) CountCompleted(ctx context.Context) (int, error) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	n := 0
	for _, m := range i.metaData {
		if m.completed != nil {
			n++
		}
	}

	return n, nil
}
