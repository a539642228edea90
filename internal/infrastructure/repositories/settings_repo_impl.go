package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/pkg/compress"
)

const (
	fieldBlob      = "blob"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// SettingsRepository implements settings storage on Redis. Each record is a
// hash at its storage key; per-key MULTI/EXEC is the only atomicity relied on.
type SettingsRepository struct {
	client *redis.Client
	codec  *compress.Codec
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(client *redis.Client, codec *compress.Codec) *SettingsRepository {
	return &SettingsRepository{client: client, codec: codec}
}

// Get returns the record stored at key
func (r *SettingsRepository) Get(ctx context.Context, key string) (*entities.SettingsRecord, error) {
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, backendError("get settings", err)
	}
	if len(fields) == 0 {
		return nil, domainerrors.ErrNotFound
	}

	record := &entities.SettingsRecord{
		StorageKey: key,
		Blob:       r.codec.Decompress([]byte(fields[fieldBlob])),
		CreatedAt:  parseInt64(fields[fieldCreatedAt]),
		UpdatedAt:  parseInt64(fields[fieldUpdatedAt]),
	}
	return record, nil
}

// GetMeta returns the record's timestamps without reading the blob
func (r *SettingsRepository) GetMeta(ctx context.Context, key string) (*entities.SettingsRecord, error) {
	vals, err := r.client.HMGet(ctx, key, fieldCreatedAt, fieldUpdatedAt).Result()
	if err != nil {
		return nil, backendError("get settings metadata", err)
	}
	if vals[0] == nil && vals[1] == nil {
		return nil, domainerrors.ErrNotFound
	}

	record := &entities.SettingsRecord{StorageKey: key}
	if s, ok := vals[0].(string); ok {
		record.CreatedAt = parseInt64(s)
	}
	if s, ok := vals[1].(string); ok {
		record.UpdatedAt = parseInt64(s)
	}
	return record, nil
}

// Put upserts the blob at key. HSetNX inside the transaction keeps the
// original created_at on overwrites without a separate existence check.
func (r *SettingsRepository) Put(ctx context.Context, key string, blob []byte) (*entities.SettingsRecord, error) {
	now := nowMillis()
	stored := r.codec.Compress(blob)

	var createdCmd *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, key, fieldCreatedAt, now)
		pipe.HSet(ctx, key, fieldBlob, stored, fieldUpdatedAt, now)
		createdCmd = pipe.HGet(ctx, key, fieldCreatedAt)
		return nil
	})
	if err != nil {
		return nil, backendError("put settings", err)
	}

	return &entities.SettingsRecord{
		StorageKey: key,
		Blob:       blob,
		CreatedAt:  parseInt64(createdCmd.Val()),
		UpdatedAt:  now,
	}, nil
}

// PutRecord writes a record with explicit timestamps, used when a legacy
// record is materialized under its current key.
func (r *SettingsRepository) PutRecord(ctx context.Context, record *entities.SettingsRecord) error {
	stored := r.codec.Compress(record.Blob)
	err := r.client.HSet(ctx, record.StorageKey,
		fieldBlob, stored,
		fieldCreatedAt, record.CreatedAt,
		fieldUpdatedAt, record.UpdatedAt,
	).Err()
	if err != nil {
		return backendError("put settings record", err)
	}
	return nil
}

// Delete removes the record at key and reports whether one existed
func (r *SettingsRepository) Delete(ctx context.Context, key string) (bool, error) {
	removed, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, backendError("delete settings", err)
	}
	return removed > 0, nil
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func backendError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domainerrors.ErrBackendUnavailable, err)
}
