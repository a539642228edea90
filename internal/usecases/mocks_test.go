package usecases_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"equi-cloud.backend/internal/domain/entities"
)

// Mock SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (*entities.SettingsRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettingsRecord), args.Error(1)
}

func (m *MockSettingsRepository) GetMeta(ctx context.Context, key string) (*entities.SettingsRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettingsRecord), args.Error(1)
}

func (m *MockSettingsRepository) Put(ctx context.Context, key string, blob []byte) (*entities.SettingsRecord, error) {
	args := m.Called(ctx, key, blob)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettingsRecord), args.Error(1)
}

func (m *MockSettingsRepository) PutRecord(ctx context.Context, record *entities.SettingsRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSettingsRepository) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// Mock DataStoreRepository
type MockDataStoreRepository struct {
	mock.Mock
}

func (m *MockDataStoreRepository) Get(ctx context.Context, namespace, key string) (*entities.DataEntry, error) {
	args := m.Called(ctx, namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DataEntry), args.Error(1)
}

func (m *MockDataStoreRepository) Put(ctx context.Context, namespace, key string, value []byte, checksum string) (*entities.DataEntry, error) {
	args := m.Called(ctx, namespace, key, value, checksum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DataEntry), args.Error(1)
}

func (m *MockDataStoreRepository) Delete(ctx context.Context, namespace, key string) error {
	args := m.Called(ctx, namespace, key)
	return args.Error(0)
}

func (m *MockDataStoreRepository) Manifest(ctx context.Context, namespace string) ([]entities.ManifestEntry, error) {
	args := m.Called(ctx, namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ManifestEntry), args.Error(1)
}

func (m *MockDataStoreRepository) DeleteAll(ctx context.Context, namespace string) (bool, error) {
	args := m.Called(ctx, namespace)
	return args.Bool(0), args.Error(1)
}
