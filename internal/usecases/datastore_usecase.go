package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/domain/repositories"
	"equi-cloud.backend/pkg/identity"
	"equi-cloud.backend/pkg/logger"
)

const (
	maxDataKeyLen   = 256
	dataStorePrefix = "dataStore/"
)

// DataStoreLimits carries the size gates applied to datastore writes.
type DataStoreLimits struct {
	MaxKeySizeBytes          int
	MaxDatastoreKeySizeBytes int
	MaxTotalSizeBytes        int
	DatastoreEnabled         bool
}

// DataStoreUsecase owns the per-user keyed datastore: validated named keys,
// versioned values, a manifest, and manifest-driven delta sync.
type DataStoreUsecase struct {
	repo   repositories.DataStoreRepository
	limits DataStoreLimits
}

// NewDataStoreUsecase creates a new datastore usecase
func NewDataStoreUsecase(repo repositories.DataStoreRepository, limits DataStoreLimits) *DataStoreUsecase {
	return &DataStoreUsecase{repo: repo, limits: limits}
}

// ValidateKey checks a datastore key name. Keys travel in URLs and Redis key
// names, so the character set is deliberately narrow.
func ValidateKey(key string) error {
	if key == "" {
		return domainerrors.BadRequest("Key cannot be empty")
	}
	if len(key) > maxDataKeyLen {
		return domainerrors.BadRequest(fmt.Sprintf("Key name exceeds %d characters", maxDataKeyLen))
	}
	for i := 0; i < len(key); i++ {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '_', b == '-', b == '.', b == '/':
		default:
			return domainerrors.BadRequest("Key contains invalid characters (allowed: alphanumeric, _, -, ., /)")
		}
	}
	return nil
}

func (u *DataStoreUsecase) checkKeyAccess(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if !u.limits.DatastoreEnabled && strings.HasPrefix(key, dataStorePrefix) {
		return domainerrors.Forbidden("DataStore sync is disabled")
	}
	return nil
}

func (u *DataStoreUsecase) sizeLimitFor(key string) int {
	if strings.HasPrefix(key, dataStorePrefix) {
		return u.limits.MaxDatastoreKeySizeBytes
	}
	return u.limits.MaxKeySizeBytes
}

// Get returns the entry at key, or a not-modified result when ifNoneMatch
// equals the stored checksum.
func (u *DataStoreUsecase) Get(ctx context.Context, userID, key, ifNoneMatch string) (*entities.DataEntry, bool, error) {
	if err := u.checkKeyAccess(key); err != nil {
		return nil, false, err
	}

	entry, err := u.repo.Get(ctx, identity.UserHash(userID), key)
	if err != nil {
		return nil, false, err
	}
	if ifNoneMatch != "" && ifNoneMatch == entry.Checksum {
		return entry, true, nil
	}
	return entry, false, nil
}

// Put stores the value at key, enforcing the per-key size limit and the
// user's total storage quota.
func (u *DataStoreUsecase) Put(ctx context.Context, userID, key string, value []byte) (*entities.DataEntry, error) {
	if err := u.checkKeyAccess(key); err != nil {
		return nil, err
	}

	if limit := u.sizeLimitFor(key); len(value) > limit {
		return nil, domainerrors.PayloadTooLarge(fmt.Sprintf("Value exceeds %dMB limit", limit/1024/1024))
	}

	namespace := identity.UserHash(userID)
	if err := u.checkQuota(ctx, namespace, key, int64(len(value))); err != nil {
		return nil, err
	}

	return u.repo.Put(ctx, namespace, key, value, identity.Checksum(value))
}

// checkQuota verifies total stored size stays within the backup quota after
// replacing key's current value with newSize bytes.
func (u *DataStoreUsecase) checkQuota(ctx context.Context, namespace, key string, newSize int64) error {
	entries, err := u.repo.Manifest(ctx, namespace)
	if err != nil {
		return err
	}

	var total int64
	for _, e := range entries {
		if e.Key == key {
			continue
		}
		total += e.SizeBytes
	}
	if total+newSize > int64(u.limits.MaxTotalSizeBytes) {
		return domainerrors.PayloadTooLarge("Total storage limit exceeded")
	}
	return nil
}

// Delete removes the entry at key. Idempotent.
func (u *DataStoreUsecase) Delete(ctx context.Context, userID, key string) error {
	if err := u.checkKeyAccess(key); err != nil {
		return err
	}
	return u.repo.Delete(ctx, identity.UserHash(userID), key)
}

// DeleteAll removes every entry the user has stored and reports whether any
// existed.
func (u *DataStoreUsecase) DeleteAll(ctx context.Context, userID string) (bool, error) {
	return u.repo.DeleteAll(ctx, identity.UserHash(userID))
}

// visibleEntries hides dataStore/ entries while that feature is disabled.
func (u *DataStoreUsecase) visibleEntries(entries []entities.ManifestEntry) []entities.ManifestEntry {
	if u.limits.DatastoreEnabled {
		return entries
	}
	filtered := entries[:0]
	for _, e := range entries {
		if !strings.HasPrefix(e.Key, dataStorePrefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Manifest lists the user's entries. Entries under the dataStore/ prefix are
// hidden while that feature is disabled.
func (u *DataStoreUsecase) Manifest(ctx context.Context, userID string) (*entities.Manifest, error) {
	entries, err := u.repo.Manifest(ctx, identity.UserHash(userID))
	if err != nil {
		return nil, err
	}
	entries = u.visibleEntries(entries)

	manifest := &entities.Manifest{Entries: entries}
	for _, e := range entries {
		manifest.TotalSize += e.SizeBytes
	}
	if manifest.Entries == nil {
		manifest.Entries = []entities.ManifestEntry{}
	}
	return manifest, nil
}

// Sync reconciles the client's manifest with the server's. The server sends
// down entries the client lacks or holds stale, and accepts uploads that pass
// checksum validation, are not dominated by a newer server version, and fit
// the quota. Failures are reported per key, never for the sync as a whole.
func (u *DataStoreUsecase) Sync(ctx context.Context, userID string, req *entities.SyncRequest) (*entities.SyncResponse, error) {
	namespace := identity.UserHash(userID)

	stored, err := u.repo.Manifest(ctx, namespace)
	if err != nil {
		return nil, err
	}
	// Quota is charged against everything stored, including entries hidden
	// from the manifest while dataStore sync is disabled.
	var storedSize int64
	for _, e := range stored {
		storedSize += e.SizeBytes
	}
	visible := u.visibleEntries(stored)

	serverByKey := make(map[string]entities.ManifestEntry, len(visible))
	for _, e := range visible {
		serverByKey[e.Key] = e
	}
	clientByKey := make(map[string]entities.ClientManifestEntry, len(req.ClientManifest))
	for _, e := range req.ClientManifest {
		clientByKey[e.Key] = e
	}

	resp := &entities.SyncResponse{
		Downloads: []entities.DownloadEntry{},
		Uploaded:  []entities.UploadResult{},
		Errors:    []entities.SyncError{},
	}

	// Downloads: server entries the client is missing or holds stale.
	for _, server := range visible {
		client, ok := clientByKey[server.Key]
		if ok && client.Version >= server.Version && client.Checksum == server.Checksum {
			continue
		}
		entry, err := u.repo.Get(ctx, namespace, server.Key)
		if err != nil {
			logger.Error(ctx, "failed to read data key for sync download",
				zap.String("key", server.Key), zap.Error(err))
			resp.Errors = append(resp.Errors, entities.SyncError{Key: server.Key, Error: "Failed to download"})
			continue
		}
		resp.Downloads = append(resp.Downloads, entities.DownloadEntry{
			Key:      entry.Key,
			Value:    entry.Value,
			Version:  entry.Version,
			Checksum: entry.Checksum,
		})
	}

	runningSize := storedSize
	for _, upload := range req.Uploads {
		if err := u.checkKeyAccess(upload.Key); err != nil {
			resp.Errors = append(resp.Errors, entities.SyncError{Key: upload.Key, Error: err.Error()})
			continue
		}
		if limit := u.sizeLimitFor(upload.Key); len(upload.Value) > limit {
			resp.Errors = append(resp.Errors, entities.SyncError{Key: upload.Key, Error: "Value exceeds size limit"})
			continue
		}
		if identity.Checksum(upload.Value) != upload.Checksum {
			resp.Errors = append(resp.Errors, entities.SyncError{Key: upload.Key, Error: "Checksum mismatch"})
			continue
		}

		// Skip uploads the server already dominates.
		if server, ok := serverByKey[upload.Key]; ok {
			client, hasClient := clientByKey[upload.Key]
			if !hasClient || client.Version <= server.Version {
				continue
			}
		}

		existingSize := serverByKey[upload.Key].SizeBytes
		newRunning := runningSize - existingSize + int64(len(upload.Value))
		if newRunning > int64(u.limits.MaxTotalSizeBytes) {
			resp.Errors = append(resp.Errors, entities.SyncError{Key: upload.Key, Error: "Total storage limit exceeded"})
			continue
		}
		runningSize = newRunning

		entry, err := u.repo.Put(ctx, namespace, upload.Key, upload.Value, upload.Checksum)
		if err != nil {
			logger.Error(ctx, "failed to save data key during sync",
				zap.String("key", upload.Key), zap.Error(err))
			resp.Errors = append(resp.Errors, entities.SyncError{Key: upload.Key, Error: "Failed to save"})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, entities.UploadResult{
			Key:      entry.Key,
			Version:  entry.Version,
			Checksum: entry.Checksum,
		})
	}

	// Refresh the manifest so the client sees the post-sync state. If the
	// backend drops out mid-sync, fall back to the pre-sync view.
	finalManifest, err := u.Manifest(ctx, userID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrBackendUnavailable) {
			return nil, err
		}
		finalManifest = &entities.Manifest{Entries: visible}
	}
	resp.ServerManifest = finalManifest.Entries
	if resp.ServerManifest == nil {
		resp.ServerManifest = []entities.ManifestEntry{}
	}
	return resp, nil
}
