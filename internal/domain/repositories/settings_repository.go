package repositories

import (
	"context"

	"equi-cloud.backend/internal/domain/entities"
)

// SettingsRepository defines storage operations for settings records. Every
// method takes an already-resolved storage key; key derivation and legacy
// migration live above this layer.
type SettingsRepository interface {
	// Get returns the record at key, or domain ErrNotFound.
	Get(ctx context.Context, key string) (*entities.SettingsRecord, error)
	// GetMeta returns the record's timestamps without transferring the blob.
	GetMeta(ctx context.Context, key string) (*entities.SettingsRecord, error)
	// Put upserts the blob at key, preserving created_at across overwrites
	// and refreshing updated_at. Returns the stored record.
	Put(ctx context.Context, key string, blob []byte) (*entities.SettingsRecord, error)
	// PutRecord writes a fully specified record, timestamps included. Used
	// when materializing a migrated record under its new key.
	PutRecord(ctx context.Context, record *entities.SettingsRecord) error
	// Delete removes the record at key and reports whether one existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// DataStoreRepository defines storage operations for the per-user keyed
// datastore. namespace identifies the owning user.
type DataStoreRepository interface {
	Get(ctx context.Context, namespace, key string) (*entities.DataEntry, error)
	Put(ctx context.Context, namespace, key string, value []byte, checksum string) (*entities.DataEntry, error)
	Delete(ctx context.Context, namespace, key string) error
	// Manifest lists every entry in the namespace, values omitted.
	Manifest(ctx context.Context, namespace string) ([]entities.ManifestEntry, error)
	// DeleteAll removes every entry in the namespace and reports whether
	// any existed.
	DeleteAll(ctx context.Context, namespace string) (bool, error)
}
