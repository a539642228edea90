package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equi-cloud.backend/internal/domain/entities"
	"equi-cloud.backend/internal/interfaces/http/middleware"
	"equi-cloud.backend/internal/usecases"
	"equi-cloud.backend/pkg/identity"
)

func accountTestRouter(settingsRepo *settingsRepoStub, dataRepo *dataStoreRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAccountHandler(
		usecases.NewSettingsUsecase(settingsRepo, 1024),
		usecases.NewDataStoreUsecase(dataRepo, defaultTestLimits()),
		"equicloud",
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
	})
	r.GET("/v1", handler.Info)
	r.DELETE("/v1", handler.DeleteAccount)
	return r
}

func TestAccountHandler_Info(t *testing.T) {
	r := accountTestRouter(newSettingsRepoStub(), newDataStoreRepoStub())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), testUserID)
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	settingsRepo := newSettingsRepoStub()
	dataRepo := newDataStoreRepoStub()

	currentKey := identity.CurrentKey(testUserID)
	settingsRepo.records[currentKey] = &entities.SettingsRecord{StorageKey: currentKey, Blob: []byte("s")}
	ns := identity.UserHash(testUserID)
	dataRepo.entries[ns] = map[string]*entities.DataEntry{
		"k": {Key: "k", Value: []byte("v"), Version: 1},
	}

	r := accountTestRouter(settingsRepo, dataRepo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, settingsRepo.records)
	assert.Empty(t, dataRepo.entries[ns])
}

func TestAccountHandler_DeleteAccountWithNothingStored(t *testing.T) {
	r := accountTestRouter(newSettingsRepoStub(), newDataStoreRepoStub())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountHandler_DeleteAccountWithOnlyDataKeys(t *testing.T) {
	dataRepo := newDataStoreRepoStub()
	ns := identity.UserHash(testUserID)
	dataRepo.entries[ns] = map[string]*entities.DataEntry{
		"k": {Key: "k", Value: []byte("v"), Version: 1},
	}

	r := accountTestRouter(newSettingsRepoStub(), dataRepo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, dataRepo.entries[ns])
}
