package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/donmikel/sheetdrop/applications/issuer"
	"github.com/donmikel/sheetdrop/applications/issuer/domain"
	"github.com/donmikel/sheetdrop/applications/issuer/interfaces"
	"github.com/donmikel/sheetdrop/applications/issuer/metrics"
)

type service struct {
	objectMetaStorage interfaces.ObjectMetaStorage
	volumeManager     interfaces.VolumeManager
	presigner         interfaces.Presigner
	grants            interfaces.GrantStore
	metrics           *metrics.Metrics
	keyPrefix         string
	now               func() time.Time
	logger            log.Logger
}

type Option func(*service)

func WithKeyPrefix(prefix string) Option {
	return func(s *service) {
		s.keyPrefix = prefix
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// NewService wires the issuer. grants may be nil when the presigner uploads
// directly to a bucket.
func NewService(
	objectMetaStorage interfaces.ObjectMetaStorage,
	volumeManager interfaces.VolumeManager,
	presigner interfaces.Presigner,
	grants interfaces.GrantStore,
	m *metrics.Metrics,
	logger log.Logger,
	opts ...Option,
) issuer.UploadService {
	s := &service{
		objectMetaStorage: objectMetaStorage,
		volumeManager:     volumeManager,
		presigner:         presigner,
		grants:            grants,
		metrics:           m,
		now:               time.Now,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ObjectKey maps a requested file name to its object key. Only the base name
// is kept so a client can't write outside the prefix.
func ObjectKey(prefix, fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("file name %q: %w", fileName, domain.ErrInvalidRequest)
	}

	return prefix + name, nil
}

func (s *service) IssueURL(ctx context.Context, req domain.UploadRequest) (domain.Grant, error) {
	key, err := ObjectKey(s.keyPrefix, req.FileName)
	if err != nil {
		return domain.Grant{}, err
	}

	grant, err := s.presigner.PresignPut(ctx, key, req.FileType)
	if err != nil {
		return domain.Grant{}, fmt.Errorf("can't presign %s: %w", key, err)
	}

	s.metrics.IssuedURLs.Inc()
	level.Info(s.logger).Log("msg", "upload url issued",
		"key", key,
		"file_type", req.FileType,
		"expires_at", grant.ExpiresAt,
	)

	return grant, nil
}

// PutObject stores an object uploaded against a grant. The token is spent
// before the body is read, so a failed transfer needs a fresh URL.
func (s *service) PutObject(ctx context.Context, token string, obj domain.Object) error {
	if s.presigner.Direct() || s.grants == nil {
		return domain.ErrDirectUpload
	}

	key := obj.Meta.Key
	if err := s.grants.Consume(ctx, key, token); err != nil {
		return err
	}
	if obj.Meta.ContentLength < 0 {
		return domain.ErrLengthRequired
	}

	volume, err := s.volumeManager.PickVolume(ctx, obj.Meta.ContentLength)
	if err != nil {
		return err
	}

	meta := obj.Meta
	meta.VolumeURL = volume.GetVolumeURL()
	meta.UploadedAt = s.now()

	if err = s.objectMetaStorage.StartUpload(ctx, meta); err != nil {
		return fmt.Errorf("can't start upload: %w", err)
	}

	n := meta.ContentLength
	if err = volume.PutObject(ctx, key, obj.Body, n); err != nil {
		if abortErr := s.objectMetaStorage.AbortUpload(ctx, key); abortErr != nil {
			level.Error(s.logger).Log("msg", "can't abort upload", "key", key, "err", abortErr)
		}
		if errors.Is(err, domain.ErrNoSpace) {
			return err
		}
		return fmt.Errorf("can't store object: %w", err)
	}

	replaced, err := s.objectMetaStorage.CompleteUpload(ctx, key)
	if err != nil {
		return fmt.Errorf("can't complete upload: %w", err)
	}
	if replaced != nil && replaced.VolumeURL != meta.VolumeURL {
		s.dropReplaced(ctx, *replaced)
	}

	s.metrics.UploadedObjects.Inc()
	s.metrics.UploadedBytes.Add(float64(n))
	level.Info(s.logger).Log("msg", "object uploaded",
		"key", key,
		"volume", meta.VolumeURL,
		"size", humanize.IBytes(uint64(n)),
	)

	return nil
}

// dropReplaced frees the bytes of an overwritten object left on another volume.
func (s *service) dropReplaced(ctx context.Context, old domain.ObjectMeta) {
	volume, err := s.volumeManager.GetVolume(ctx, old.VolumeURL)
	if err == nil {
		err = volume.DeleteObject(ctx, old.Key)
	}
	if err != nil {
		level.Error(s.logger).Log("msg", "can't delete replaced object",
			"key", old.Key,
			"volume", old.VolumeURL,
			"err", err,
		)
	}
}

func (s *service) GetObject(ctx context.Context, key string) (domain.Object, error) {
	meta, err := s.objectMetaStorage.GetObjectMeta(ctx, key)
	if err != nil {
		return domain.Object{}, err
	}

	volume, err := s.volumeManager.GetVolume(ctx, meta.VolumeURL)
	if err != nil {
		return domain.Object{}, fmt.Errorf("can't get volume: %w", err)
	}

	body, err := volume.ReadObject(ctx, key)
	if err != nil {
		return domain.Object{}, fmt.Errorf("can't read object: %w", err)
	}

	return domain.Object{Meta: meta, Body: body}, nil
}

func (s *service) TriggerSync(ctx context.Context) (domain.SyncRun, error) {
	n, err := s.objectMetaStorage.CountCompleted(ctx)
	if err != nil {
		return domain.SyncRun{}, fmt.Errorf("can't count objects: %w", err)
	}

	run := domain.SyncRun{
		ID:      uuid.NewString(),
		Objects: n,
		At:      s.now(),
	}

	s.metrics.SyncRuns.Inc()
	level.Info(s.logger).Log("msg", "sync triggered",
		"run", run.ID,
		"objects", run.Objects,
	)

	return run, nil
}
