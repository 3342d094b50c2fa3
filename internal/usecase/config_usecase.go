package usecase

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"driveattach/internal/domain/entity"
	"driveattach/internal/domain/repository"
	"driveattach/pkg/errors"
	"driveattach/pkg/logger"
)

const (
	configCacheKey = "drive_attachment_config"
	configCacheTTL = 5 * time.Minute
)

type cachedConfig struct {
	cfg      *entity.DriveConfig
	storedAt time.Time
}

// ConfigUseCase reads the singleton Drive configuration through a short-lived
// cache. Configuration changes may be served stale for up to the TTL; every
// write path below invalidates explicitly.
type ConfigUseCase struct {
	repo  repository.DriveConfigRepository
	cache *lru.Cache[string, cachedConfig]
	ttl   time.Duration
	now   func() time.Time
}

func NewConfigUseCase(repo repository.DriveConfigRepository) *ConfigUseCase {
	cache, _ := lru.New[string, cachedConfig](1)
	return &ConfigUseCase{
		repo:  repo,
		cache: cache,
		ttl:   configCacheTTL,
		now:   time.Now,
	}
}

func (uc *ConfigUseCase) Get(ctx context.Context) (*entity.DriveConfig, error) {
	if cached, ok := uc.cache.Get(configCacheKey); ok {
		if uc.now().Sub(cached.storedAt) < uc.ttl {
			return cached.cfg, nil
		}
		uc.cache.Remove(configCacheKey)
	}

	cfg, err := uc.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		// First read ever: persist a default record.
		cfg = &entity.DriveConfig{SharingPermission: entity.SharingDefault}
		if err := uc.repo.Save(ctx, cfg); err != nil {
			return nil, err
		}
		logger.Info("Created default Drive attachment configuration")
	}

	uc.cache.Add(configCacheKey, cachedConfig{cfg: cfg, storedAt: uc.now()})
	return cfg, nil
}

func (uc *ConfigUseCase) Save(ctx context.Context, cfg *entity.DriveConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.BadRequest(err.Error(), err)
	}

	if err := uc.repo.Save(ctx, cfg); err != nil {
		return err
	}

	uc.Invalidate()
	return nil
}

// Update merges individual fields into the stored record and drops the cache.
func (uc *ConfigUseCase) Update(ctx context.Context, fields map[string]interface{}) error {
	if err := uc.repo.Update(ctx, fields); err != nil {
		return err
	}

	uc.Invalidate()
	return nil
}

func (uc *ConfigUseCase) Invalidate() {
	uc.cache.Remove(configCacheKey)
}

type DriveSettings struct {
	Enabled           bool                     `json:"enabled"`
	HasAuthorization  bool                     `json:"has_authorization"`
	FolderPrefix      string                   `json:"folder_prefix"`
	SharingPermission entity.SharingPermission `json:"sharing_permission"`
	ParentFolderID    string                   `json:"parent_folder_id"`
}

// Settings returns the configuration view exposed to the admin frontend.
// Secrets stay out of it.
func (uc *ConfigUseCase) Settings(ctx context.Context) (*DriveSettings, error) {
	cfg, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &DriveSettings{
		Enabled:           cfg.Enabled,
		HasAuthorization:  cfg.HasAuthorization(),
		FolderPrefix:      cfg.FolderNamePrefix,
		SharingPermission: cfg.SharingPermission,
		ParentFolderID:    cfg.ParentFolderID,
	}, nil
}
