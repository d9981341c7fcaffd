package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
)

type volumes []interfaces.Volume

type vm struct {
	urlToVolume map[string]interfaces.Volume
	volumes     volumes
	m           sync.Mutex
	logger      log.Logger
}

func NewVolumeManager(logger log.Logger) interfaces.VolumeManager {
	return &vm{
		urlToVolume: map[string]interfaces.Volume{},
		volumes:     []interfaces.Volume{},
		logger:      logger,
	}
}

// PickVolume returns the volume with the most free space if it can hold size
// bytes.
func (v *vm) PickVolume(ctx context.Context, size int64) (interfaces.Volume, error) {
	v.m.Lock()
	defer v.m.Unlock()

	if len(v.volumes) == 0 {
		return nil, fmt.Errorf("no volumes: %w", domain.ErrNoSpace)
	}

	sort.Sort(v.volumes)

	picked := v.volumes[len(v.volumes)-1]
	free, err := picked.GetFreeSpace()
	if err != nil {
		return nil, fmt.Errorf("can't get free space of %s: %w", picked.GetVolumeURL(), err)
	}
	if free < size {
		return nil, domain.ErrNoSpace
	}

	level.Debug(v.logger).Log("msg", "selected volume",
		"volume", picked.GetVolumeURL(),
		"volumes", v.volumes,
	)

	return picked, nil
}

func (v *vm) GetVolume(ctx context.Context, volumeURL string) (interfaces.Volume, error) {
	v.m.Lock()
	defer v.m.Unlock()

	vol, ok := v.urlToVolume[volumeURL]
	if !ok {
		return nil, fmt.Errorf("volume with URL = %s not found", volumeURL)
	}

	return vol, nil
}

func (v *vm) AddVolume(ctx context.Context, volumeURL string, vol interfaces.Volume) error {
	v.m.Lock()
	defer v.m.Unlock()

	if _, ok := v.urlToVolume[volumeURL]; ok {
		return fmt.Errorf("volume with URL = %s already added", volumeURL)
	}

	v.volumes = append(v.volumes, vol)
	v.urlToVolume[volumeURL] = vol

	return nil
}

func (s volumes) Len() int {
	return len(s)
}

func (s volumes) Less(i, j int) bool {
	si, err := s[i].GetFreeSpace()
	if err != nil {
		return false
	}
	sj, err := s[j].GetFreeSpace()
	if err != nil {
		return false
	}

	return si < sj
}

func (s volumes) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s volumes) String() string {
	result := make([]string, 0, len(s))
	for _, vol := range s {
		result = append(result, vol.GetVolumeURL())
	}

	return strings.Join(result, ", ")
}
