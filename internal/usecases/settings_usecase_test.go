package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"equi-cloud.backend/internal/domain/entities"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/usecases"
	"equi-cloud.backend/pkg/identity"
)

const testUserID = "123456789012345678"

func newSettingsUsecaseForTest(repo *MockSettingsRepository) *usecases.SettingsUsecase {
	return usecases.NewSettingsUsecase(repo, 1024)
}

func TestSettingsUsecase_Fetch_CurrentKey(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	record := &entities.SettingsRecord{
		StorageKey: identity.CurrentKey(testUserID),
		Blob:       []byte("payload"),
		CreatedAt:  1000,
		UpdatedAt:  2000,
	}
	repo.On("Get", context.Background(), identity.CurrentKey(testUserID)).Return(record, nil).Once()

	result, err := uc.Fetch(context.Background(), testUserID, "")
	assert.NoError(t, err)
	assert.False(t, result.NotModified)
	assert.Equal(t, []byte("payload"), result.Record.Blob)
	assert.Equal(t, "2000", result.Record.ETag())
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Get", mock.Anything, identity.LegacyKey(testUserID))
}

func TestSettingsUsecase_Fetch_ETagMatchSkipsBlobRead(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	meta := &entities.SettingsRecord{
		StorageKey: identity.CurrentKey(testUserID),
		CreatedAt:  1000,
		UpdatedAt:  2000,
	}
	repo.On("GetMeta", context.Background(), identity.CurrentKey(testUserID)).Return(meta, nil).Once()

	result, err := uc.Fetch(context.Background(), testUserID, "2000")
	assert.NoError(t, err)
	assert.True(t, result.NotModified)
	assert.Equal(t, "2000", result.Record.ETag())
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSettingsUsecase_Fetch_ETagMismatchReadsBlob(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	currentKey := identity.CurrentKey(testUserID)
	meta := &entities.SettingsRecord{StorageKey: currentKey, CreatedAt: 1000, UpdatedAt: 2000}
	record := &entities.SettingsRecord{StorageKey: currentKey, Blob: []byte("x"), CreatedAt: 1000, UpdatedAt: 2000}
	repo.On("GetMeta", context.Background(), currentKey).Return(meta, nil).Once()
	repo.On("Get", context.Background(), currentKey).Return(record, nil).Once()

	result, err := uc.Fetch(context.Background(), testUserID, "1999")
	assert.NoError(t, err)
	assert.False(t, result.NotModified)
	assert.Equal(t, []byte("x"), result.Record.Blob)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Fetch_MigratesLegacyRecord(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	currentKey := identity.CurrentKey(testUserID)
	legacyKey := identity.LegacyKey(testUserID)
	legacy := &entities.SettingsRecord{
		StorageKey: legacyKey,
		Blob:       []byte("legacy payload"),
		CreatedAt:  500,
		UpdatedAt:  700,
	}

	before := time.Now().UnixMilli()
	repo.On("Get", context.Background(), currentKey).Return(nil, domainerrors.ErrNotFound).Once()
	repo.On("Get", context.Background(), legacyKey).Return(legacy, nil).Once()
	repo.On("PutRecord", context.Background(), mock.MatchedBy(func(r *entities.SettingsRecord) bool {
		return r.StorageKey == currentKey &&
			string(r.Blob) == "legacy payload" &&
			r.CreatedAt == 500 &&
			r.UpdatedAt >= before
	})).Return(nil).Once()
	repo.On("Delete", context.Background(), legacyKey).Return(true, nil).Once()

	result, err := uc.Fetch(context.Background(), testUserID, "")
	assert.NoError(t, err)
	assert.Equal(t, []byte("legacy payload"), result.Record.Blob)
	assert.Equal(t, int64(500), result.Record.CreatedAt)
	assert.GreaterOrEqual(t, result.Record.UpdatedAt, before)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Fetch_MigrationBackfillsMissingCreatedAt(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	currentKey := identity.CurrentKey(testUserID)
	legacyKey := identity.LegacyKey(testUserID)
	legacy := &entities.SettingsRecord{StorageKey: legacyKey, Blob: []byte("b"), UpdatedAt: 700}

	repo.On("Get", context.Background(), currentKey).Return(nil, domainerrors.ErrNotFound).Once()
	repo.On("Get", context.Background(), legacyKey).Return(legacy, nil).Once()
	repo.On("PutRecord", context.Background(), mock.MatchedBy(func(r *entities.SettingsRecord) bool {
		return r.CreatedAt == 700
	})).Return(nil).Once()
	repo.On("Delete", context.Background(), legacyKey).Return(true, nil).Once()

	_, err := uc.Fetch(context.Background(), testUserID, "")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Fetch_MigrationWriteFailureServesLegacy(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	currentKey := identity.CurrentKey(testUserID)
	legacyKey := identity.LegacyKey(testUserID)
	legacy := &entities.SettingsRecord{StorageKey: legacyKey, Blob: []byte("still here"), CreatedAt: 500, UpdatedAt: 700}

	repo.On("Get", context.Background(), currentKey).Return(nil, domainerrors.ErrNotFound).Once()
	repo.On("Get", context.Background(), legacyKey).Return(legacy, nil).Once()
	repo.On("PutRecord", context.Background(), mock.Anything).Return(domainerrors.ErrBackendUnavailable).Once()

	result, err := uc.Fetch(context.Background(), testUserID, "")
	assert.NoError(t, err)
	assert.Equal(t, []byte("still here"), result.Record.Blob)
	assert.Equal(t, int64(700), result.Record.UpdatedAt)
	repo.AssertExpectations(t)
	// Legacy record must survive a failed migration
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSettingsUsecase_Fetch_NotFound(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	repo.On("Get", context.Background(), identity.CurrentKey(testUserID)).Return(nil, domainerrors.ErrNotFound).Once()
	repo.On("Get", context.Background(), identity.LegacyKey(testUserID)).Return(nil, domainerrors.ErrNotFound).Once()

	_, err := uc.Fetch(context.Background(), testUserID, "")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Head_FallsBackToLegacyWithoutMigrating(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	legacyKey := identity.LegacyKey(testUserID)
	meta := &entities.SettingsRecord{StorageKey: legacyKey, CreatedAt: 500, UpdatedAt: 700}
	repo.On("GetMeta", context.Background(), identity.CurrentKey(testUserID)).Return(nil, domainerrors.ErrNotFound).Once()
	repo.On("GetMeta", context.Background(), legacyKey).Return(meta, nil).Once()

	record, err := uc.Head(context.Background(), testUserID)
	assert.NoError(t, err)
	assert.Equal(t, "700", record.ETag())
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "PutRecord", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSettingsUsecase_Store_WritesCurrentAndCleansLegacy(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	currentKey := identity.CurrentKey(testUserID)
	stored := &entities.SettingsRecord{StorageKey: currentKey, Blob: []byte("new"), CreatedAt: 1, UpdatedAt: 2}
	repo.On("Put", context.Background(), currentKey, []byte("new")).Return(stored, nil).Once()
	repo.On("Delete", context.Background(), identity.LegacyKey(testUserID)).Return(false, nil).Once()

	record, err := uc.Store(context.Background(), testUserID, []byte("new"))
	assert.NoError(t, err)
	assert.Equal(t, stored, record)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Store_SizeLimit(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	// Exactly at the limit is accepted
	atLimit := make([]byte, 1024)
	stored := &entities.SettingsRecord{StorageKey: identity.CurrentKey(testUserID), UpdatedAt: 2}
	repo.On("Put", context.Background(), identity.CurrentKey(testUserID), atLimit).Return(stored, nil).Once()
	repo.On("Delete", context.Background(), identity.LegacyKey(testUserID)).Return(false, nil).Once()

	_, err := uc.Store(context.Background(), testUserID, atLimit)
	assert.NoError(t, err)

	_, err = uc.Store(context.Background(), testUserID, make([]byte, 1025))
	assert.ErrorIs(t, err, domainerrors.ErrPayloadTooLarge)
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Delete_RemovesBothKeys(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	repo.On("Delete", context.Background(), identity.CurrentKey(testUserID)).Return(true, nil).Once()
	repo.On("Delete", context.Background(), identity.LegacyKey(testUserID)).Return(true, nil).Once()

	assert.NoError(t, uc.Delete(context.Background(), testUserID))
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Delete_LegacyOnly(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	repo.On("Delete", context.Background(), identity.CurrentKey(testUserID)).Return(false, nil).Once()
	repo.On("Delete", context.Background(), identity.LegacyKey(testUserID)).Return(true, nil).Once()

	assert.NoError(t, uc.Delete(context.Background(), testUserID))
	repo.AssertExpectations(t)
}

func TestSettingsUsecase_Delete_NotFoundWhenNeitherExists(t *testing.T) {
	repo := new(MockSettingsRepository)
	uc := newSettingsUsecaseForTest(repo)

	repo.On("Delete", context.Background(), identity.CurrentKey(testUserID)).Return(false, nil).Once()
	repo.On("Delete", context.Background(), identity.LegacyKey(testUserID)).Return(false, nil).Once()

	err := uc.Delete(context.Background(), testUserID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	repo.AssertExpectations(t)
}
