package repositories

import (
	"context"

	"github.com/redis/go-redis/v9"

	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/pkg/compress"
)

const (
	fieldValue    = "value"
	fieldChecksum = "checksum"
	fieldVersion  = "version"
	fieldSize     = "size"
)

// DataStoreRepository implements the per-user keyed datastore on Redis.
// Each entry is a hash at data:<namespace>:<key>; an index set at
// datakeys:<namespace> tracks which keys exist so manifests need no SCAN.
type DataStoreRepository struct {
	client *redis.Client
	codec  *compress.Codec
}

// NewDataStoreRepository creates a new datastore repository
func NewDataStoreRepository(client *redis.Client, codec *compress.Codec) *DataStoreRepository {
	return &DataStoreRepository{client: client, codec: codec}
}

func entryKey(namespace, key string) string {
	return "data:" + namespace + ":" + key
}

func indexKey(namespace string) string {
	return "datakeys:" + namespace
}

// Get returns the entry at key in the user's namespace
func (r *DataStoreRepository) Get(ctx context.Context, namespace, key string) (*entities.DataEntry, error) {
	fields, err := r.client.HGetAll(ctx, entryKey(namespace, key)).Result()
	if err != nil {
		return nil, backendError("get data key", err)
	}
	if len(fields) == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return r.toEntry(key, fields), nil
}

// Put writes the entry, bumping its version in the same transaction
func (r *DataStoreRepository) Put(ctx context.Context, namespace, key string, value []byte, checksum string) (*entities.DataEntry, error) {
	now := nowMillis()
	stored := r.codec.Compress(value)
	ek := entryKey(namespace, key)

	var versionCmd *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		versionCmd = pipe.HIncrBy(ctx, ek, fieldVersion, 1)
		pipe.HSet(ctx, ek,
			fieldValue, stored,
			fieldChecksum, checksum,
			fieldSize, int64(len(value)),
			fieldUpdatedAt, now,
		)
		pipe.SAdd(ctx, indexKey(namespace), key)
		return nil
	})
	if err != nil {
		return nil, backendError("put data key", err)
	}

	return &entities.DataEntry{
		Key:       key,
		Value:     value,
		Checksum:  checksum,
		Version:   versionCmd.Val(),
		SizeBytes: int64(len(value)),
		UpdatedAt: now,
	}, nil
}

// Delete removes the entry and its index membership. Idempotent.
func (r *DataStoreRepository) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, entryKey(namespace, key))
		pipe.SRem(ctx, indexKey(namespace), key)
		return nil
	})
	if err != nil {
		return backendError("delete data key", err)
	}
	return nil
}

// Manifest lists every entry in the namespace without transferring values
func (r *DataStoreRepository) Manifest(ctx context.Context, namespace string) ([]entities.ManifestEntry, error) {
	keys, err := r.client.SMembers(ctx, indexKey(namespace)).Result()
	if err != nil {
		return nil, backendError("list data keys", err)
	}

	entries := make([]entities.ManifestEntry, 0, len(keys))
	for _, key := range keys {
		vals, err := r.client.HMGet(ctx, entryKey(namespace, key), fieldVersion, fieldChecksum, fieldSize, fieldUpdatedAt).Result()
		if err != nil {
			return nil, backendError("read data key metadata", err)
		}
		if vals[0] == nil {
			// Index entry without a backing hash; a delete raced us.
			continue
		}
		entry := entities.ManifestEntry{Key: key}
		if s, ok := vals[0].(string); ok {
			entry.Version = parseInt64(s)
		}
		if s, ok := vals[1].(string); ok {
			entry.Checksum = s
		}
		if s, ok := vals[2].(string); ok {
			entry.SizeBytes = parseInt64(s)
		}
		if s, ok := vals[3].(string); ok {
			entry.UpdatedAt = parseInt64(s)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteAll removes every entry in the namespace plus the index itself.
// Reports whether the namespace held anything.
func (r *DataStoreRepository) DeleteAll(ctx context.Context, namespace string) (bool, error) {
	keys, err := r.client.SMembers(ctx, indexKey(namespace)).Result()
	if err != nil {
		return false, backendError("list data keys", err)
	}

	del := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		del = append(del, entryKey(namespace, key))
	}
	del = append(del, indexKey(namespace))

	if err := r.client.Del(ctx, del...).Err(); err != nil {
		return false, backendError("delete data keys", err)
	}
	return len(keys) > 0, nil
}

func (r *DataStoreRepository) toEntry(key string, fields map[string]string) *entities.DataEntry {
	return &entities.DataEntry{
		Key:       key,
		Value:     r.codec.Decompress([]byte(fields[fieldValue])),
		Checksum:  fields[fieldChecksum],
		Version:   parseInt64(fields[fieldVersion]),
		SizeBytes: parseInt64(fields[fieldSize]),
		UpdatedAt: parseInt64(fields[fieldUpdatedAt]),
	}
}
