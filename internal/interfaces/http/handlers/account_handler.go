package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/internal/interfaces/http/middleware"
	"equi-cloud.backend/internal/interfaces/http/response"
	"equi-cloud.backend/internal/usecases"
)

// AccountHandler handles account-scoped endpoints that span both the
// settings record and the keyed datastore.
type AccountHandler struct {
	settingsUsecase  *usecases.SettingsUsecase
	dataStoreUsecase *usecases.DataStoreUsecase
	serviceName      string
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(settingsUsecase *usecases.SettingsUsecase, dataStoreUsecase *usecases.DataStoreUsecase, serviceName string) *AccountHandler {
	return &AccountHandler{
		settingsUsecase:  settingsUsecase,
		dataStoreUsecase: dataStoreUsecase,
		serviceName:      serviceName,
	}
}

// Info reports that the caller's token is valid
// GET /v1
func (h *AccountHandler) Info(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.serviceName,
		"userId":    userID,
		"timestamp": time.Now().UnixMilli(),
	})
}

// DeleteAccount removes everything stored for the caller: the settings
// record under both key generations and every datastore key.
// DELETE /v1
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	settingsErr := h.settingsUsecase.Delete(c.Request.Context(), userID)
	if settingsErr != nil && !errors.Is(settingsErr, domainerrors.ErrNotFound) {
		response.Error(c, settingsErr)
		return
	}

	dataExisted, err := h.dataStoreUsecase.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if errors.Is(settingsErr, domainerrors.ErrNotFound) && !dataExisted {
		response.Error(c, domainerrors.NotFound("No stored data for this account"))
		return
	}
	c.Status(http.StatusNoContent)
}
