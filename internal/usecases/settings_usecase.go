package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/domain/repositories"
	"equi-cloud.backend/pkg/identity"
	"equi-cloud.backend/pkg/logger"
	"equi-cloud.backend/pkg/metrics"
)

var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// SettingsUsecase owns the settings record lifecycle, including the
// transparent migration of records stored under the retired legacy key.
// It is stateless; every request resolves keys from scratch.
type SettingsUsecase struct {
	repo          repositories.SettingsRepository
	maxBackupSize int
}

// NewSettingsUsecase creates a new settings usecase
func NewSettingsUsecase(repo repositories.SettingsRepository, maxBackupSize int) *SettingsUsecase {
	return &SettingsUsecase{
		repo:          repo,
		maxBackupSize: maxBackupSize,
	}
}

// Fetch reads the user's settings, preferring the current key and migrating
// a legacy record when that is all that exists. When ifNoneMatch equals the
// stored entity tag the blob is not read at all.
func (u *SettingsUsecase) Fetch(ctx context.Context, userID, ifNoneMatch string) (*entities.FetchResult, error) {
	currentKey := identity.CurrentKey(userID)

	if ifNoneMatch != "" {
		meta, err := u.repo.GetMeta(ctx, currentKey)
		switch {
		case err == nil && meta.ETag() == ifNoneMatch:
			metrics.SettingsOps.WithLabelValues("get", "not_modified").Inc()
			return &entities.FetchResult{Record: meta, NotModified: true}, nil
		case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
			metrics.SettingsOps.WithLabelValues("get", "error").Inc()
			return nil, err
		}
	}

	record, err := u.repo.Get(ctx, currentKey)
	if err == nil {
		metrics.SettingsOps.WithLabelValues("get", "ok").Inc()
		return &entities.FetchResult{Record: record}, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		metrics.SettingsOps.WithLabelValues("get", "error").Inc()
		return nil, err
	}

	record, err = u.migrateLegacy(ctx, userID, currentKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			metrics.SettingsOps.WithLabelValues("get", "not_found").Inc()
		} else {
			metrics.SettingsOps.WithLabelValues("get", "error").Inc()
		}
		return nil, err
	}
	metrics.SettingsOps.WithLabelValues("get", "ok").Inc()
	return &entities.FetchResult{Record: record}, nil
}

// migrateLegacy copies a legacy-keyed record to the current key and removes
// the legacy one. Copy-before-delete: a crash in between leaves both records,
// which a later read resolves by preferring the current key and retrying the
// legacy delete.
func (u *SettingsUsecase) migrateLegacy(ctx context.Context, userID, currentKey string) (*entities.SettingsRecord, error) {
	legacyKey := identity.LegacyKey(userID)

	legacyRecord, err := u.repo.Get(ctx, legacyKey)
	if err != nil {
		return nil, err
	}

	createdAt := legacyRecord.CreatedAt
	if createdAt == 0 {
		createdAt = legacyRecord.UpdatedAt
	}
	migrated := &entities.SettingsRecord{
		StorageKey: currentKey,
		Blob:       legacyRecord.Blob,
		CreatedAt:  createdAt,
		UpdatedAt:  nowMillis(),
	}

	if err := u.repo.PutRecord(ctx, migrated); err != nil {
		// Serve the legacy record untouched; the next read retries.
		logger.Warn(ctx, "failed to migrate legacy settings record",
			zap.String("legacy_key", legacyKey), zap.Error(err))
		return legacyRecord, nil
	}

	if _, err := u.repo.Delete(ctx, legacyKey); err != nil {
		// The migrated record is already in place; the orphan is cleaned up
		// on the next write or delete.
		logger.Warn(ctx, "failed to delete legacy settings record after migration",
			zap.String("legacy_key", legacyKey), zap.Error(err))
	}

	metrics.LegacyMigrations.Inc()
	logger.Info(ctx, "migrated settings record to current key scheme",
		zap.String("storage_key", currentKey))
	return migrated, nil
}

// Head returns record timestamps from whichever key holds a record, without
// migrating. Metadata probes should not mutate storage.
func (u *SettingsUsecase) Head(ctx context.Context, userID string) (*entities.SettingsRecord, error) {
	meta, err := u.repo.GetMeta(ctx, identity.CurrentKey(userID))
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	return u.repo.GetMeta(ctx, identity.LegacyKey(userID))
}

// Store writes the blob under the current key and clears any leftover legacy
// record so stale copies never outlive a successful update.
func (u *SettingsUsecase) Store(ctx context.Context, userID string, blob []byte) (*entities.SettingsRecord, error) {
	if len(blob) > u.maxBackupSize {
		metrics.SettingsOps.WithLabelValues("put", "too_large").Inc()
		return nil, domainerrors.PayloadTooLarge(
			fmt.Sprintf("Settings exceed %dMB limit", u.maxBackupSize/1024/1024))
	}

	record, err := u.repo.Put(ctx, identity.CurrentKey(userID), blob)
	if err != nil {
		metrics.SettingsOps.WithLabelValues("put", "error").Inc()
		return nil, err
	}

	u.cleanupLegacy(ctx, userID)
	metrics.SettingsOps.WithLabelValues("put", "ok").Inc()
	return record, nil
}

// Delete removes the user's record from both key generations. ErrNotFound
// only when neither held a record.
func (u *SettingsUsecase) Delete(ctx context.Context, userID string) error {
	existedCurrent, err := u.repo.Delete(ctx, identity.CurrentKey(userID))
	if err != nil {
		metrics.SettingsOps.WithLabelValues("delete", "error").Inc()
		return err
	}
	existedLegacy, err := u.repo.Delete(ctx, identity.LegacyKey(userID))
	if err != nil {
		metrics.SettingsOps.WithLabelValues("delete", "error").Inc()
		return err
	}

	if !existedCurrent && !existedLegacy {
		metrics.SettingsOps.WithLabelValues("delete", "not_found").Inc()
		return domainerrors.ErrNotFound
	}
	metrics.SettingsOps.WithLabelValues("delete", "ok").Inc()
	return nil
}

func (u *SettingsUsecase) cleanupLegacy(ctx context.Context, userID string) {
	legacyKey := identity.LegacyKey(userID)
	if _, err := u.repo.Delete(ctx, legacyKey); err != nil {
		logger.Warn(ctx, "failed to clean up legacy settings record",
			zap.String("legacy_key", legacyKey), zap.Error(err))
	}
}
